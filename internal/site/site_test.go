package site

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
)

var fixture = map[string]string{
	"posts/2024-05-06-launch.md": `---
title: Launch
seotitle: We launched
image:
  src: launch.png
---
# Ignored heading

We are live. See [about](../pages/about.html) and [missing](nowhere.html).
`,
	"posts/2024/nested.md": "---\ntitle: Nested\n---\nNested body.\n",
	"posts/wip.md":         "---\ntitle: WIP\ndraft: true\n---\n[dead](dead.html)\n",
	"pages/about.md":       "---\ntitle: About\ndescription: All about us\n---\nAbout body.\n",
	"pages/home.md":        "Welcome home.\n",
}

func newTestSite(t *testing.T, types string, opts ...Option) *Site {
	t.Helper()
	root := t.TempDir()
	for rel, body := range fixture {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	cfg, err := config.Parse([]byte("site:\n  host: https://example.tld\n  default_view: pages/home\n  types: " + types + "\n"))
	require.NoError(t, err)
	cfg.Content.Root = root

	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	_, err := New(nil)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = New(&config.Config{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestNew_MissingTemplate(t *testing.T) {
	cfg, err := config.Parse([]byte("site:\n  host: https://example.tld\n  default_view: pages/home\n  types: pages\n"))
	require.NoError(t, err)
	cfg.Template = filepath.Join(t.TempDir(), "nope.html")
	_, err = New(cfg)
	require.True(t, errors.IsNotFound(err))
}

func TestLoad_SkipsMissingTypes(t *testing.T) {
	s := newTestSite(t, "posts, gallery, pages")
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"gallery"}, snap.Missing)
	require.Len(t, snap.Collections, 2)
	require.Equal(t, "posts", snap.Collections[0].Type())
	require.Equal(t, "pages", snap.Collections[1].Type())
	require.Equal(t, 3, snap.Collections[0].Len())
}

func TestLoad_MalformedPropagates(t *testing.T) {
	s := newTestSite(t, "posts")
	bad := filepath.Join(s.Config().Content.Root, "posts", "bad.md")
	require.NoError(t, os.WriteFile(bad, []byte("---\ntitle: [x\n---\n"), 0o644))

	_, err := s.Load(context.Background())
	require.True(t, errors.IsMalformed(err))

	s.Config().Content.SkipMalformed = true
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Collections[0].Diagnostics(), 1)
}

func TestRenderPage(t *testing.T) {
	s := newTestSite(t, "posts, pages")

	for _, name := range []string{"posts/2024-05-06-launch", "/posts/2024-05-06-launch.html?utm=1", "../posts/2024-05-06-launch.html"} {
		t.Run(name, func(t *testing.T) {
			p, err := s.RenderPage(name)
			require.NoError(t, err)
			require.Equal(t, "https://example.tld/posts/2024-05-06-launch.html", p.URL)
			require.NotEmpty(t, p.ETag)
			require.Contains(t, p.HTML, "<title>We launched</title>")
			require.Contains(t, p.HTML, `<meta property="og:title" content="We launched"/>`)
			require.Contains(t, p.HTML, `<meta name="description" content="We are live. See about and missing."/>`)
			require.Contains(t, p.HTML, `<meta property="og:image" content="https://example.tld/posts/launch.png"/>`)
			require.Contains(t, p.HTML, `<link rel="canonical" href="https://example.tld/posts/2024-05-06-launch.html"/>`)
			require.Contains(t, p.HTML, `<div id="cms"><h1>Launch</h1>`)
			require.Contains(t, p.HTML, `<h1 id="ignored-heading">Ignored heading</h1>`)
		})
	}
}

func TestRenderPage_FallbackTitleAndNotFound(t *testing.T) {
	s := newTestSite(t, "pages")

	p, err := s.RenderPage("pages/home")
	require.NoError(t, err)
	require.Contains(t, p.HTML, "<title>pages/home</title>")
	require.Contains(t, p.HTML, "<h1>pages/home</h1>")

	_, err = s.RenderPage("pages/nope")
	require.True(t, errors.IsNotFound(err))
	ce, _ := errors.AsClassified(err)
	require.Equal(t, "Requested page not found", ce.Message())

	_, err = s.RenderPage("")
	require.True(t, errors.IsNotFound(err))
}

func TestRenderPage_UsesInjectedRenderer(t *testing.T) {
	s := newTestSite(t, "pages", WithRenderer(markdown.RendererFunc(func(string) (string, error) {
		return "<p>stub</p>", nil
	})))
	p, err := s.RenderPage("pages/about")
	require.NoError(t, err)
	require.Contains(t, p.HTML, "<h1>About</h1><p>stub</p>")
	require.Contains(t, p.HTML, `content="All about us"`)
}

func TestRenderListing(t *testing.T) {
	s := newTestSite(t, "posts, pages, gallery")

	p, err := s.RenderListing(context.Background(), "posts")
	require.NoError(t, err)
	require.Equal(t, "https://example.tld/posts.html", p.URL)
	require.Contains(t, p.HTML, "<title>Posts</title>")
	require.Contains(t, p.HTML, "<h1>Posts</h1>")
	require.Contains(t, p.HTML, "https://example.tld/posts/2024/nested.html")
	require.NotContains(t, p.HTML, "WIP")

	_, err = s.RenderListing(context.Background(), "gallery")
	require.True(t, errors.IsNotFound(err))
	_, err = s.RenderListing(context.Background(), "unknown")
	require.True(t, errors.IsNotFound(err))
}

func TestListingTitle(t *testing.T) {
	require.Equal(t, "Posts", ListingTitle("posts"))
	require.Equal(t, "Blog Posts", ListingTitle("blog-posts"))
	require.Equal(t, "Team Members", ListingTitle("team_members"))
}

func TestSitemap(t *testing.T) {
	s := newTestSite(t, "posts, gallery")
	out, err := s.Sitemap(context.Background())
	require.NoError(t, err)

	xml := string(out)
	require.Contains(t, xml, "<!-- Unable to read directory gallery -->")
	require.Contains(t, xml, "<loc>https://example.tld/posts/2024-05-06-launch.html</loc>")
	require.Contains(t, xml, "<loc>https://example.tld/posts/2024/nested.html</loc>")
	require.NotContains(t, xml, "wip.html")
	require.NotContains(t, xml, "<loc>https://example.tld/posts.html</loc>")
}

func TestIndex(t *testing.T) {
	s := newTestSite(t, "posts, gallery, pages")
	idx, err := s.Index(context.Background())
	require.NoError(t, err)
	require.NotContains(t, idx, "gallery")
	require.Len(t, idx["posts"], 2)
	require.Len(t, idx["pages"], 2)

	out, err := idx.JSON()
	require.NoError(t, err)
	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, "/pages/about.md", decoded["pages"][0]["path"])
}

func TestHomeURL(t *testing.T) {
	s := newTestSite(t, "pages")
	require.Equal(t, "https://example.tld/pages/home.html", s.HomeURL())
	require.True(t, s.HasType("pages"))
	require.False(t, s.HasType("posts"))
}

func TestCheckLinks(t *testing.T) {
	s := newTestSite(t, "posts, pages")
	broken, err := s.CheckLinks(context.Background())
	require.NoError(t, err)
	require.Equal(t, []BrokenLink{{
		Source:      "/posts/2024-05-06-launch.md",
		Destination: "nowhere.html",
		Kind:        markdown.LinkKindInline,
	}}, broken)
}

func TestMetricsRecorded(t *testing.T) {
	reg := prom.NewRegistry()
	s := newTestSite(t, "posts, gallery", WithRecorder(metrics.NewPrometheusRecorder(reg)))
	_, err := s.Sitemap(context.Background())
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	joined := strings.Join(names, ",")
	require.Contains(t, joined, "mdsite_items_loaded_total")
	require.Contains(t, joined, "mdsite_missing_type_directories_total")
	require.Contains(t, joined, "mdsite_render_duration_seconds")
}

func TestSanitizePage(t *testing.T) {
	tests := map[string]string{
		"posts/a":             "posts/a",
		"posts/a.html":        "posts/a",
		"/posts/a.html?x=1&y": "posts/a",
		"../../etc/passwd":    "etc/passwd",
		"":                    "",
	}
	for in, want := range tests {
		require.Equal(t, want, SanitizePage(in), in)
	}
}
