package virtual

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// virtualDir presents the rendered view of a directory.
type virtualDir struct {
	fs.File

	vfs     *FS
	path    string
	entries []fs.DirEntry // nil until the first ReadDir
	read    bool
}

// ReadDir reads the contents of the directory and returns
// a slice of up to n DirEntry values in directory order.
// Subsequent calls on the same file will yield further DirEntry values.
//
// If n > 0, ReadDir returns at most n DirEntry structures.
// In this case, if ReadDir returns an empty slice, it will return
// a non-nil error explaining why.
// At the end of a directory, the error is io.EOF.
//
// If n <= 0, ReadDir returns all the DirEntry values from the directory
// in a single slice. In this case, if ReadDir succeeds (reads all the way
// to the end of the directory), it returns the slice and a nil error.
func (d *virtualDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.read {
		rdf, ok := d.File.(fs.ReadDirFile)
		if !ok {
			return nil, &fs.PathError{Op: "readdir", Path: d.path, Err: errors.New("not implemented")}
		}
		entries, err := rdf.ReadDir(-1)
		if err != nil {
			return nil, err
		}
		d.entries = d.vfs.mapEntries(d.path, entries)
		d.read = true
	}
	if n <= 0 {
		e := d.entries
		d.entries = nil
		return e, nil
	}
	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	if n > len(d.entries) {
		n = len(d.entries)
	}
	e := d.entries[:n]
	d.entries = d.entries[n:]
	return e, nil
}

// mapEntries converts the underlying entries of dir into the entries of the view.
// Markdown files appear as their rendered HTML pages, and non-template files
// only appear under passthrough rules.
func (vfs *FS) mapEntries(dir string, entries []fs.DirEntry) []fs.DirEntry {
	seen := make(map[string]bool, len(entries))
	result := make([]fs.DirEntry, 0, len(entries))
	add := func(e fs.DirEntry) {
		if !seen[e.Name()] {
			seen[e.Name()] = true
			result = append(result, e)
		}
	}
	for _, entry := range entries {
		name := path.Join(dir, entry.Name())
		if vfs.isHidden(name) {
			continue
		}
		switch {
		case entry.IsDir():
			add(entry)
		case path.Ext(name) == ".html":
			add(entry)
		case path.Ext(name) == ".md":
			fi, err := entry.Info()
			if err != nil {
				vfs.log.Warn("cannot stat markdown file", zap.String("file", name), zap.Error(err))
				continue
			}
			add(virtualDirEntry{virtualFileInfo{
				FileInfo: fi,
				name:     strings.TrimSuffix(entry.Name(), ".md") + ".html",
				size:     -1,
			}})
			if vfs.cfg.IsPassthrough(name) {
				add(entry)
			}
		case vfs.cfg.IsPassthrough(name):
			add(entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// File holds data about a page endpoint.
type File struct {
	FrontMatter FrontMatter
	Filename    string
}

// dir returns a sorted slice of files and is used in templates.
func (vfs *FS) dir(folderpath string) []File {
	folderpath = "./" + strings.TrimPrefix(folderpath, "/")
	folderpath = path.Clean(folderpath)
	entries, err := fs.ReadDir(vfs, folderpath)
	if err != nil {
		vfs.log.Warn("dir", zap.String("folder", folderpath), zap.Error(err))
		return nil
	}
	f := make([]File, 0, len(entries))
	for _, entry := range entries {
		if !isListed(entry.Name()) {
			continue
		}
		fm := FrontMatter{
			Title: strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())),
		}
		fi, err := entry.Info()
		if err == nil {
			fm.Date = fi.ModTime().Local()
		}
		if !entry.IsDir() && path.Ext(entry.Name()) == ".html" {
			base := path.Join(folderpath, strings.TrimSuffix(entry.Name(), ".html"))
			err = vfs.readFrontMatter(base+".md", &fm)
			if errors.Is(err, fs.ErrNotExist) {
				err = vfs.readFrontMatter(base+".html", &fm)
			}
			if err != nil {
				vfs.log.Warn("readDir", zap.String("file", entry.Name()), zap.Error(err))
			}
		}
		f = append(f, File{FrontMatter: fm, Filename: entry.Name()})
	}
	return f
}

// sortByTime sorts the files by the time in reverse order
func sortByTime(f []File) []File {
	sort.Slice(f, func(i, j int) bool { return f[j].FrontMatter.Date.Before(f[i].FrontMatter.Date) })
	return f
}

// sortByName sorts the files by the name in reverse order
func sortByName(f []File) []File {
	sort.Slice(f, func(i, j int) bool { return f[j].Filename < f[i].Filename })
	return f
}

// reverse reverses the order of the file list.
func reverse(f []File) []File {
	j := len(f) - 1
	for i := 0; i < len(f)/2; i++ {
		f[i], f[j] = f[j], f[i]
		j--
	}
	return f
}

// filter trims out non-matching files based on name.
func filter(f []File, pat ...string) []File {
	var r []File
	for i := range f {
		if match(f[i].Filename, pat...) {
			r = append(r, f[i])
		}
	}
	return r
}

// match uses path.Match to test for a match.
func match(s string, pat ...string) bool {
	for i := range pat {
		b, _ := path.Match(pat[i], s)
		if b {
			return true
		}
	}
	return false
}

// next returns the next file in the list.
func next(f []File, current string) *File {
	for i := range f {
		if f[i].Filename == current {
			if i > 0 {
				return &f[i-1]
			}
			return nil
		}
	}
	return nil
}

// prev returns the previous file in the list.
func prev(f []File, current string) *File {
	for i := range f {
		if f[i].Filename == current {
			if i < len(f)-1 {
				return &f[i+1]
			}
			return nil
		}
	}
	return nil
}
