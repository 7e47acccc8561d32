package content

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/inful/mdfp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/meta"
)

const assetDoc = `---
Title: Hello
image:
  src: cover.png
link:
  href: other.html
  src: ignored.png
cdn:
  src: https://cdn.example.tld/x.png
rooted:
  href: /about.html
captioned:
  src: pics/a.jpg
  alt: A picture
---
Body para.
`

func TestLoad_AssetsAndGuaranteedKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2023-01-05-hello.md", assetDoc)

	it, err := Load(root, "posts/2023-01-05-hello.md", testResolver(t))
	require.NoError(t, err)

	require.Equal(t, "/posts/2023-01-05-hello.md", it.Path())
	require.Equal(t, "https://example.tld/posts/2023-01-05-hello.html", it.URL())
	require.Equal(t, "https://example.tld/posts", it.Dir())

	m := it.Meta()
	require.Equal(t, meta.String("Hello"), m["title"])
	require.NotContains(t, m, "Title")

	img, ok := m.Asset("image")
	require.True(t, ok)
	require.Equal(t, "https://example.tld/posts/cover.png", img.Src)
	require.Equal(t, "cover.png", img.Alt)

	link, _ := m.Asset("link")
	require.Equal(t, "https://example.tld/posts/other.html", link.Href)
	require.Equal(t, "ignored.png", link.Src, "src is left alone when href is present")
	require.Empty(t, link.Alt)

	cdn, _ := m.Asset("cdn")
	require.Equal(t, "https://cdn.example.tld/x.png", cdn.Src)
	require.Equal(t, "x.png", cdn.Alt)

	rooted, _ := m.Asset("rooted")
	require.Equal(t, "/about.html", rooted.Href)

	captioned, _ := m.Asset("captioned")
	require.Equal(t, "https://example.tld/posts/pics/a.jpg", captioned.Src)
	require.Equal(t, "A picture", captioned.Alt)

	require.Equal(t, meta.Date("2023-01-05"), m[KeyDate])
	require.Equal(t, meta.Bool(false), m[KeyDraft])
	require.Equal(t, meta.String("Body para."), m[KeyExcerpt])
	require.False(t, it.IsDraft())
	require.Equal(t, "Hello", it.SEOTitle("fallback"))
	require.Equal(t, "Body para.", it.Description())
}

func TestLoad_DateFromModificationTime(t *testing.T) {
	root := t.TempDir()
	full := writeFile(t, root, "pages/about.md", "---\ntitle: About\n---\nText.\n")
	mtime := time.Date(2021, time.March, 4, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(full, mtime, mtime))

	it, err := Load(root, "pages/about.md", testResolver(t))
	require.NoError(t, err)
	require.Equal(t, meta.Date("2021-03-04"), it.Meta()[KeyDate])
}

func TestLoad_PathDateBeatsModificationTime(t *testing.T) {
	root := t.TempDir()
	full := writeFile(t, root, "posts/2019-07-14-bastille.md", "Text.\n")
	mtime := time.Date(2001, time.January, 1, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(full, mtime, mtime))

	it, err := Load(root, "posts/2019-07-14-bastille.md", testResolver(t))
	require.NoError(t, err)
	require.Equal(t, meta.Date("2019-07-14"), it.Meta()[KeyDate])
}

func TestLoad_ExplicitValuesKept(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2019-07-14-x.md", `---
date: 2020-02-03
draft: "true"
excerpt: Hand written.
description: Described.
---
First paragraph.
`)

	it, err := Load(root, "posts/2019-07-14-x.md", testResolver(t))
	require.NoError(t, err)
	m := it.Meta()
	require.Equal(t, meta.Date("2020-02-03"), m[KeyDate])
	require.Equal(t, meta.Bool(true), m[KeyDraft])
	require.True(t, it.IsDraft())
	require.Equal(t, meta.String("Hand written."), m[KeyExcerpt])
	require.Equal(t, "Described.", it.Description())
}

func TestLoad_StringDateNormalized(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/a.md", "---\ndate: \"2020/05/06\"\n---\n")

	it, err := Load(root, "posts/a.md", testResolver(t))
	require.NoError(t, err)
	require.Equal(t, meta.Date("2020-05-06"), it.Meta()[KeyDate])
	require.Equal(t, meta.String(""), it.Meta()[KeyExcerpt])
}

func TestLoad_NullDateInferred(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2021-07-08-null.md", "---\ndate:\ntitle: x\n---\nBody.\n")
	blank := writeFile(t, root, "posts/blank.md", "---\ndate: \"\"\ntitle: y\n---\nBody.\n")
	mtime := time.Date(2019, time.February, 3, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(blank, mtime, mtime))

	it, err := Load(root, "posts/2021-07-08-null.md", testResolver(t))
	require.NoError(t, err)
	require.Equal(t, meta.Date("2021-07-08"), it.Meta()[KeyDate])

	it, err = Load(root, "posts/blank.md", testResolver(t))
	require.NoError(t, err)
	require.Equal(t, meta.Date("2019-02-03"), it.Meta()[KeyDate])
}

func TestLoad_AuthoredEmptyAssetFields(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/a.md", `---
decorative:
  src: pic.png
  alt: ""
link:
  href: ""
  src: y.png
---
`)

	it, err := Load(root, "posts/a.md", testResolver(t))
	require.NoError(t, err)

	img, ok := it.Meta().Asset("decorative")
	require.True(t, ok)
	require.Equal(t, "https://example.tld/posts/pic.png", img.Src)
	require.Empty(t, img.Alt)

	link, ok := it.Meta().Asset("link")
	require.True(t, ok)
	require.Equal(t, "https://example.tld/posts/", link.Href)
	require.Equal(t, "y.png", link.Src, "src is left alone when href is authored")
	require.Empty(t, link.Alt)
}

func TestLoad_Errors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/bad.md", "---\ntitle: [unclosed\n---\nbody\n")
	writeFile(t, root, "posts/open.md", "---\ntitle: x\nbody without closing\n")

	_, err := Load(root, "posts/missing.md", testResolver(t))
	require.Error(t, err)
	require.True(t, errors.IsNotFound(err))

	for _, rel := range []string{"posts/bad.md", "posts/open.md"} {
		_, err = Load(root, rel, testResolver(t))
		require.Error(t, err, rel)
		require.True(t, errors.IsMalformed(err), rel)
		ce, ok := errors.AsClassified(err)
		require.True(t, ok)
		p, _ := ce.Context().GetString("path")
		require.Equal(t, "/"+rel, p)
	}
}

func TestLoad_CannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/a.md", "x\n")

	it, err := Load(root, "../../posts/a.md", testResolver(t))
	require.NoError(t, err)
	require.Equal(t, "/posts/a.md", it.Path())
}

func TestLoad_Fingerprint(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/a.md", "---\ntitle: A\n---\nBody\n")
	writeFile(t, root, "posts/b.md", "---\ntitle: B\n---\nBody\n")

	a, err := Load(root, "posts/a.md", testResolver(t))
	require.NoError(t, err)
	b, err := Load(root, "posts/b.md", testResolver(t))
	require.NoError(t, err)

	require.Equal(t, mdfp.CalculateFingerprintFromParts("title: A", "Body\n"), a.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestDateFromPath(t *testing.T) {
	tests := []struct {
		path string
		want meta.Date
		ok   bool
	}{
		{"/posts/2023-01-05-hello.md", "2023-01-05", true},
		{"/news/2019/07/14/x.md", "2019-07-14", true},
		{"/posts/2020-13-45-bad-2021-02-03.md", "2021-02-03", true},
		{"/posts/2020-01-02/2021-03-04.md", "2020-01-02", true},
		{"/posts/hello.md", "", false},
		{"/posts/2020-1-2.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := DateFromPath(tt.path)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_DateProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 25
	properties := gopter.NewProperties(params)

	properties.Property("path date wins over modification time", prop.ForAll(
		func(year, month, day, mtimeDays int) bool {
			root := t.TempDir()
			rel := fmt.Sprintf("posts/%04d-%02d-%02d-entry.md", year, month, day)
			full := writeFile(t, root, rel, "Body.\n")
			mtime := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.Local).AddDate(0, 0, mtimeDays)
			if err := os.Chtimes(full, mtime, mtime); err != nil {
				return false
			}
			it, err := Load(root, rel, testResolver(t))
			if err != nil {
				return false
			}
			return it.Meta()[KeyDate] == meta.Date(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
		},
		gen.IntRange(1970, 2099),
		gen.IntRange(1, 12),
		gen.IntRange(1, 28),
		gen.IntRange(0, 9000),
	))

	properties.Property("modification date used without path date", prop.ForAll(
		func(mtimeDays int) bool {
			root := t.TempDir()
			full := writeFile(t, root, "pages/entry.md", "Body.\n")
			mtime := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.Local).AddDate(0, 0, mtimeDays)
			if err := os.Chtimes(full, mtime, mtime); err != nil {
				return false
			}
			it, err := Load(root, "pages/entry.md", testResolver(t))
			if err != nil {
				return false
			}
			return it.Meta()[KeyDate] == meta.NewDate(mtime)
		},
		gen.IntRange(0, 9000),
	))

	properties.Property("no uppercase key survives", prop.ForAll(
		func(key string) bool {
			root := t.TempDir()
			writeFile(t, root, "pages/k.md", "---\n"+key+": v\n---\n")
			it, err := Load(root, "pages/k.md", testResolver(t))
			if err != nil {
				return false
			}
			for _, k := range it.Meta().Keys() {
				if strings.ToLower(k) != k {
					return false
				}
			}
			return it.Meta().Has(strings.ToLower(key))
		},
		gen.RegexMatch(`^[A-Za-z][A-Za-z0-9_]{0,12}$`),
	))

	properties.TestingRun(t)
}
