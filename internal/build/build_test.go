package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

type countingRecorder struct {
	metrics.NoopRecorder
	success atomic.Int32
	failed  atomic.Int32
}

func (r *countingRecorder) IncBuildOutcome(o metrics.BuildOutcome) {
	if o == metrics.BuildSuccess {
		r.success.Add(1)
		return
	}
	r.failed.Add(1)
}

func writeContent(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func newTestBuilder(t *testing.T, rec metrics.Recorder) (*Builder, string) {
	t.Helper()
	root := t.TempDir()
	writeContent(t, root, "posts/2024-02-03-one.md", "---\ntitle: One\n---\nFirst.\n")
	writeContent(t, root, "posts/2024/two.md", "---\ntitle: Two\n---\nSecond.\n")
	writeContent(t, root, "posts/draft.md", "---\ntitle: Draft\ndraft: true\n---\nHidden.\n")
	writeContent(t, root, "pages/home.md", "Home.\n")

	cfg, err := config.Parse([]byte("site:\n  host: https://example.tld\n  default_view: pages/home\n  types: posts, pages, gallery\n"))
	require.NoError(t, err)
	cfg.Content.Root = root
	s, err := site.New(cfg)
	require.NoError(t, err)
	return NewBuilder(s, rec, nil), root
}

func TestRun_WritesSite(t *testing.T) {
	rec := &countingRecorder{}
	b, _ := newTestBuilder(t, rec)
	out := filepath.Join(t.TempDir(), "public")

	res, err := b.Run(context.Background(), Request{OutputDir: out})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, 3, res.Pages)
	require.Equal(t, 2, res.Listings)
	require.Equal(t, []string{"gallery"}, res.Missing)
	require.EqualValues(t, 1, rec.success.Load())

	for _, f := range []string{
		"posts/2024-02-03-one.html",
		"posts/2024/two.html",
		"pages/home.html",
		"posts.html",
		"pages.html",
		"sitemap.xml",
		"meta.json",
	} {
		require.FileExists(t, filepath.Join(out, filepath.FromSlash(f)))
	}
	require.NoFileExists(t, filepath.Join(out, "posts", "draft.html"))

	data, err := os.ReadFile(filepath.Join(out, "meta.json"))
	require.NoError(t, err)
	var idx map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &idx))
	require.Len(t, idx["posts"], 2)
}

func TestRun_Clean(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	out := t.TempDir()
	stale := filepath.Join(out, "stale.html")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := b.Run(context.Background(), Request{OutputDir: out})
	require.NoError(t, err)
	require.FileExists(t, stale)

	_, err = b.Run(context.Background(), Request{OutputDir: out, Clean: true})
	require.NoError(t, err)
	require.NoFileExists(t, stale)
	require.FileExists(t, filepath.Join(out, "sitemap.xml"))
}

func TestRun_RejectsUnsafeOutput(t *testing.T) {
	rec := &countingRecorder{}
	b, root := newTestBuilder(t, rec)

	for _, dir := range []string{"", root, filepath.Dir(root)} {
		res, err := b.Run(context.Background(), Request{OutputDir: dir, Clean: true})
		require.Error(t, err, dir)
		require.True(t, errors.HasCategory(err, errors.CategoryValidation), dir)
		require.Equal(t, StatusFailed, res.Status)
	}
	require.FileExists(t, filepath.Join(root, "pages", "home.md"))
	require.EqualValues(t, 3, rec.failed.Load())
}

func TestRun_CancelledContext(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Run(ctx, Request{OutputDir: t.TempDir()})
	require.Error(t, err)
}

func TestRequestFromConfig(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	b.site.Config().Output.Clean = true
	req := b.RequestFromConfig()
	require.True(t, req.Clean)
	require.Equal(t, b.site.Config().Output.Directory, req.OutputDir)
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	b, root := newTestBuilder(t, nil)
	out := t.TempDir()

	w, err := NewWatcher(b, Request{OutputDir: out}, 20*time.Millisecond)
	require.NoError(t, err)
	var builds atomic.Int32
	w.OnBuild = func(_ *Result, err error) {
		if err == nil {
			builds.Add(1)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop()) }()

	writeContent(t, root, "posts/fresh.md", "---\ntitle: Fresh\n---\nNew.\n")

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "posts", "fresh.html"))
		return builds.Load() > 0 && err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresOutputTree(t *testing.T) {
	b, root := newTestBuilder(t, nil)
	w, err := NewWatcher(b, Request{OutputDir: filepath.Join(root, "public")}, time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.True(t, w.ignored(filepath.Join(w.root, "public")))
	require.True(t, w.ignored(filepath.Join(w.root, "public", "posts.html")))
	require.True(t, w.ignored(filepath.Join(w.root, ".git")))
	require.False(t, w.ignored(filepath.Join(w.root, "posts")))
	require.False(t, w.ignored(w.root))
}

func TestScheduler_RunsImmediately(t *testing.T) {
	rec := &countingRecorder{}
	b, _ := newTestBuilder(t, rec)
	out := t.TempDir()

	s, err := NewScheduler(context.Background(), b, Request{OutputDir: out}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, s.JobID())
	s.Start()

	require.Eventually(t, func() bool { return rec.success.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, s.Stop())
	require.FileExists(t, filepath.Join(out, "sitemap.xml"))
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	_, err := NewScheduler(context.Background(), b, Request{OutputDir: t.TempDir()}, 0)
	require.Error(t, err)
}
