package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelURL(t *testing.T) {
	sub := parseBase("https://example.org/sub/")
	root := parseBase("https://example.org")
	none := parseBase("")

	assert.Equal(t, "/sub/css/a.css", relURL(sub, "/css/a.css"))
	assert.Equal(t, "/sub/", relURL(sub, "/"))
	assert.Equal(t, "/sub/blog/", relURL(sub, "/blog/"))
	assert.Equal(t, "css/a.css", relURL(sub, "css/a.css"))
	assert.Equal(t, "https://cdn.example.com/x.js", relURL(sub, "https://cdn.example.com/x.js"))
	assert.Equal(t, "/css/a.css", relURL(root, "/css/a.css"))
	assert.Equal(t, "/css/a.css", relURL(none, "/css/a.css"))
}

func TestAbsURL(t *testing.T) {
	sub := parseBase("https://example.org/sub")
	root := parseBase("https://example.org")
	none := parseBase("")

	assert.Equal(t, "https://example.org/sub/css/a.css", absURL(sub, "/css/a.css"))
	assert.Equal(t, "https://example.org/sub/css/a.css", absURL(sub, "css/a.css"))
	assert.Equal(t, "https://example.org/", absURL(root, "/"))
	assert.Equal(t, "https://example.org/blog/", absURL(root, "/blog/"))
	assert.Equal(t, "/x", absURL(none, "x"))
	assert.Equal(t, "http://other.org/", absURL(sub, "http://other.org/"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate(10, "short"))
	assert.Equal(t, "A long s…", truncate(9, "A long summary"))
	assert.Equal(t, "日本…", truncate(5, "日本語テキスト"))
	assert.Equal(t, "", truncate(0, "anything"))
}
