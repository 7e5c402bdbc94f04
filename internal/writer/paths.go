package writer

import (
	"path"
	"strings"
)

// OutputPath maps a slash-separated source path to its output path relative
// to the output root: "a/b/c.md" becomes "a/b/c.html". With pretty set it
// becomes "a/b/c/index.html"; index files stay "index.html" in their directory.
func OutputPath(rel string, pretty bool) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	stem := strings.TrimSuffix(rel, path.Ext(rel))

	if !pretty || path.Base(stem) == "index" {
		return stem + ".html"
	}
	return path.Join(stem, "index.html")
}

// Permalink is the site-relative URL of an output path: "a/b/c.html" is
// "/a/b/c.html", "a/b/c/index.html" is "/a/b/c/" and "index.html" is "/".
func Permalink(outputPath string) string {
	p := "/" + strings.TrimPrefix(outputPath, "/")
	if path.Base(p) == "index.html" {
		dir := path.Dir(p)
		if dir == "/" {
			return "/"
		}
		return dir + "/"
	}
	return p
}
