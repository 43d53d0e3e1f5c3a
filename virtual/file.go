package virtual

import (
	"io/fs"
)

// virtualFileInfo reports a file under its virtual name. Rendered pages
// also override the size with the length of the rendered output.
type virtualFileInfo struct {
	fs.FileInfo

	name string
	size int64 // -1 keeps the underlying size
}

func (fi virtualFileInfo) Name() string { return fi.name }

func (fi virtualFileInfo) Size() int64 {
	if fi.size < 0 {
		return fi.FileInfo.Size()
	}
	return fi.size
}

// virtualDirEntry adapts virtualFileInfo to fs.DirEntry. The info is taken
// when the directory is read, so the size of a rendered page is not known.
type virtualDirEntry struct {
	virtualFileInfo
}

func (di virtualDirEntry) Type() fs.FileMode {
	return di.Mode().Type()
}

func (di virtualDirEntry) Info() (fs.FileInfo, error) {
	return di.virtualFileInfo, nil
}
