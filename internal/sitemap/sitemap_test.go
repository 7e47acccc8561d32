package sitemap

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/content"
	"git.home.luguber.info/inful/mdsite/internal/paths"
)

func scanPosts(t *testing.T) *content.Collection {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"posts/a.md":     "---\ntitle: A\n---\n",
		"posts/b.md":     "---\ntitle: B\n---\n",
		"posts/draft.md": "---\ntitle: D\ndraft: true\n---\n",
	}
	for rel, body := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	r, err := paths.NewResolver("https://example.tld", "/", "")
	require.NoError(t, err)
	c, err := content.Scan(root, "posts", r, content.ScanOptions{})
	require.NoError(t, err)
	return c
}

type parsedURLSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

func locs(t *testing.T, out []byte) []string {
	t.Helper()
	var set parsedURLSet
	require.NoError(t, xml.Unmarshal(out, &set))
	var got []string
	for _, u := range set.URLs {
		got = append(got, u.Loc)
	}
	return got
}

func TestGenerate_MissingTypeCommentAndPublishedItems(t *testing.T) {
	out, err := Generate([]*content.Collection{scanPosts(t)}, []string{"pages"}, Options{})
	require.NoError(t, err)

	s := string(out)
	require.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Contains(t, s, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	require.Contains(t, s, "<!-- Unable to read directory pages -->")
	require.Equal(t, []string{
		"https://example.tld/posts/a.html",
		"https://example.tld/posts/b.html",
	}, locs(t, out))
	require.NotContains(t, s, "draft.html")
}

func TestGenerate_IncludeListings(t *testing.T) {
	out, err := Generate([]*content.Collection{scanPosts(t)}, nil, Options{IncludeListings: true})
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.tld/posts.html",
		"https://example.tld/posts/a.html",
		"https://example.tld/posts/b.html",
	}, locs(t, out))
	require.NotContains(t, string(out), "<!--")
}

func TestGenerate_MissingTypeWithDoubleHyphen(t *testing.T) {
	out, err := Generate([]*content.Collection{scanPosts(t)}, []string{"old--posts", "a---b"}, Options{})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "<!-- Unable to read directory old- -posts -->")
	require.Contains(t, s, "<!-- Unable to read directory a- - -b -->")
	require.Len(t, locs(t, out), 2)
}

func TestCommentSafe(t *testing.T) {
	for in, want := range map[string]string{
		"posts":  "posts",
		"a--b":   "a- -b",
		"a----b": "a- - - -b",
		"-x-":    "-x-",
	} {
		got := commentSafe(in)
		require.Equal(t, want, got, in)
		require.NotContains(t, got, "--")
	}
}

func TestGenerate_Empty(t *testing.T) {
	out, err := Generate(nil, nil, Options{})
	require.NoError(t, err)
	require.Empty(t, locs(t, out))
	require.Contains(t, string(out), "</urlset>")
}
