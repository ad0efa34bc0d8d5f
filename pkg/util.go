package tread

import "path/filepath"

// canonicalizePath interprets path relative to cwd when it is not absolute,
// and returns it in cleaned absolute form.
func canonicalizePath(cwd, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	return filepath.Clean(path)
}

func dirnameOf(fname string) string {
	dir := filepath.Dir(fname)
	if dir == "" {
		return "."
	}

	return dir
}
