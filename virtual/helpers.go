package virtual

import (
	"strings"
)

// configFile holds the preview server settings.
const configFile = "quire.cfg"

// isHidden returns true if the given file is considered
// hidden from outside view.
func (vfs *FS) isHidden(name string) bool {
	if name == "." {
		return false
	}
	if name == configFile || containsSpecialFile(name) {
		return true
	}
	for _, dir := range []string{vfs.cfg.Dirs.Includes, vfs.cfg.Dirs.Data} {
		if name == dir || strings.HasPrefix(name, dir+"/") {
			return true
		}
	}
	return false
}

// containsSpecialFile reports whether name contains a path element starting with a period.
// The name is assumed to be a delimited by forward slashes, as guaranteed by the fs.FS interface.
func containsSpecialFile(name string) bool {
	parts := strings.Split(name, "/")
	for _, part := range parts {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// isListed reports whether the dir helper should include a file.
func isListed(name string) bool {
	switch name {
	case "index.html", "404.html", "500.html":
		return false
	}
	return true
}
