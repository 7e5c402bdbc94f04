package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func TestLoadFS_LoadsRecognizedFilesSortedByPath(t *testing.T) {
	fsys := fstest.MapFS{
		"index.md":             file("---\nlayout: default\ntitle: Home\n---\n# Welcome\n"),
		"blog/2024/hello.md":   file("---\nlayout: post\ndate: 2024-03-01\n---\nHi\n"),
		"about.markdown":       file("---\nlayout: default\n---\nAbout\n"),
		"notes.txt":            file("not content"),
		"_drafts/wip.md":       file("---\nlayout: default\n---\n"),
		".git/HEAD.md":         file("ref"),
		"blog/_partial.md":     file("no front matter"),
		"blog/2024/.hidden.md": file("hidden"),
	}

	docs, err := NewLoader(Options{DefaultLang: "en"}).LoadFS(context.Background(), fsys, "content")
	require.NoError(t, err)

	var paths []string
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"about.markdown", "blog/2024/hello.md", "index.md"}, paths)

	hello := docs[1]
	assert.Equal(t, "post", hello.Layout)
	assert.Equal(t, "Hello", hello.Title)
	assert.Equal(t, "blog", hello.Type)
	assert.Equal(t, "en", hello.Lang)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), hello.Date)
	assert.Equal(t, filepath.Join("content", "blog", "2024", "hello.md"), hello.SourcePath)
	assert.Equal(t, "Hi", strings.TrimSpace(string(hello.Body)))

	assert.Equal(t, "Home", docs[2].Title)
	assert.Equal(t, "page", docs[2].Type)
}

func TestLoadFS_MissingLayoutIsLoadError(t *testing.T) {
	cases := map[string]string{
		"no front-matter":  "# Just markdown\n",
		"no layout key":    "---\ntitle: Orphan\n---\nbody\n",
		"empty layout":     "---\nlayout: \"  \"\n---\nbody\n",
		"non-string value": "---\nlayout: 42\n---\nbody\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"a/b.md": file(src)}
			_, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "a/b.md", loadErr.Path)
			assert.ErrorIs(t, err, ErrMissingLayout)
		})
	}
}

func TestLoadFS_MalformedFrontMatterIsLoadError(t *testing.T) {
	fsys := fstest.MapFS{"bad.md": file("---\nlayout: [unclosed\n---\nbody\n")}
	_, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "bad.md", loadErr.Path)
	assert.ErrorIs(t, err, ErrMalformedFrontMatter)
}

func TestLoadFS_BadDateIsLoadError(t *testing.T) {
	fsys := fstest.MapFS{"post.md": file("---\nlayout: post\ndate: next tuesday\n---\n")}
	_, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")
	assert.ErrorIs(t, err, ErrMalformedFrontMatter)
}

func TestLoadFS_ContinueOnErrorCollectsFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": file("---\nlayout: default\n---\nok\n"),
		"b.md": file("no layout here"),
		"c.md": file("---\ntitle: also broken\n---\n"),
	}
	docs, err := NewLoader(Options{ContinueOnError: true}).LoadFS(context.Background(), fsys, "")

	require.Len(t, docs, 1)
	assert.Equal(t, "a.md", docs[0].Path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingLayout)
	assert.Contains(t, err.Error(), "b.md")
	assert.Contains(t, err.Error(), "c.md")
}

func TestLoadFS_Drafts(t *testing.T) {
	fsys := fstest.MapFS{
		"live.md":  file("---\nlayout: default\n---\n"),
		"draft.md": file("---\nlayout: default\ndraft: true\n---\n"),
	}

	docs, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = NewLoader(Options{IncludeDrafts: true}).LoadFS(context.Background(), fsys, "")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLoadFS_TOMLAndJSONFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{
		"toml.md": file("+++\nlayout = \"default\"\ntitle = \"From TOML\"\n+++\nbody\n"),
		"json.md": file(";;;\n{\"layout\": \"default\", \"tags\": [\"a\", \"b\"]}\n;;;\nbody\n"),
	}
	docs, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, []any{"a", "b"}, docs[0].FrontMatter["tags"])
	assert.Equal(t, "From TOML", docs[1].Title)
}

func TestLoadFS_NestedFrontMatterIsNormalized(t *testing.T) {
	fsys := fstest.MapFS{"a.md": file("---\nlayout: default\nhero:\n  image: cover.png\n---\n")}
	docs, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")
	require.NoError(t, err)

	hero, ok := docs[0].FrontMatter["hero"].(map[string]any)
	require.True(t, ok, "nested maps should use string keys, got %T", docs[0].FrontMatter["hero"])
	assert.Equal(t, "cover.png", hero["image"])
}

func TestLoadFS_EmptyDirectory(t *testing.T) {
	docs, err := NewLoader(Options{}).LoadFS(context.Background(), fstest.MapFS{}, "")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadFS_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(Options{}).LoadFS(ctx, fstest.MapFS{"a.md": file("---\nlayout: x\n---\n")}, "")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide.md"), []byte("---\nlayout: default\n---\n# Guide\n"), 0o644))

	docs, err := NewLoader(Options{}).LoadDir(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "docs/guide.md", docs[0].Path)
	assert.Equal(t, filepath.Join(root, "docs", "guide.md"), docs[0].SourcePath)

	_, err = NewLoader(Options{}).LoadDir(context.Background(), filepath.Join(root, "missing"))
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, ErrContentDir)
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "My First Post", TitleFromPath("notes/my-first_post.md"))
	assert.Equal(t, "Index", TitleFromPath("index.md"))
}

func TestRecognized(t *testing.T) {
	assert.True(t, Recognized("a/b.md"))
	assert.True(t, Recognized("a/B.MARKDOWN"))
	assert.False(t, Recognized("a/b.html"))
	assert.False(t, Recognized("md"))
}

func TestLoadFS_PagesCollection(t *testing.T) {
	fsys := fstest.MapFS{
		"_pages/about.md":       file("---\nlayout: default\n---\nAbout\n"),
		"_pages/team/people.md": file("---\nlayout: default\n---\n"),
		"_pages/_private.md":    file("---\nlayout: default\n---\n"),
		"_drafts/wip.md":        file("---\nlayout: default\n---\n"),
		"blog/_pages/nested.md": file("---\nlayout: default\n---\n"),
	}

	docs, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	about := docs[0]
	assert.Equal(t, "_pages/about.md", about.Path)
	assert.Equal(t, "pages", about.Type)
	assert.Equal(t, "about.md", about.RoutePath())
	assert.Equal(t, "About", about.Title)

	assert.Equal(t, "team/people.md", docs[1].RoutePath())
	assert.Equal(t, "pages", docs[1].Type)
}

func TestLoadFS_RouteDefaultsToPath(t *testing.T) {
	fsys := fstest.MapFS{"blog/post.md": file("---\nlayout: default\n---\n")}
	docs, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "blog/post.md", docs[0].RoutePath())
}

func TestParseFrontMatter_ByteOrderMark(t *testing.T) {
	matter, body, err := ParseFrontMatter([]byte("\xef\xbb\xbf---\nlayout: default\n---\nHi\n"))
	require.NoError(t, err)
	assert.Equal(t, "default", matter["layout"])
	assert.Equal(t, "Hi", strings.TrimSpace(string(body)))
}

func TestLoadFS_UnclosedFrontMatterIsMalformed(t *testing.T) {
	cases := map[string]string{
		"yaml": "---\nlayout: default\n# Title\n",
		"toml": "+++\nlayout = \"default\"\nbody\n",
		"bom":  "\xef\xbb\xbf---\nlayout: default\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"a.md": file(src)}
			_, err := NewLoader(Options{}).LoadFS(context.Background(), fsys, "")

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "a.md", loadErr.Path)
			assert.ErrorIs(t, err, ErrMalformedFrontMatter)
			assert.NotErrorIs(t, err, ErrMissingLayout)
		})
	}
}
