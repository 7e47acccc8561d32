package content

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/mdsite/internal/excerpt"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdsite/internal/meta"
	"git.home.luguber.info/inful/mdsite/internal/paths"
)

// Guaranteed metadata keys.
const (
	KeyDate    = "date"
	KeyDraft   = "draft"
	KeyExcerpt = "excerpt"
)

var pathDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{4}/\d{2}/\d{2}`)

// Item is one loaded content file. It is immutable once Load returns.
type Item struct {
	path        string
	url         string
	dir         string
	meta        meta.Metadata
	body        string
	modified    time.Time
	fingerprint string
}

// Load reads root/relPath and builds an Item.
//
// relPath is slash separated and relative to the content root; the item path
// is relPath with a leading slash. A missing file yields a CategoryNotFound
// error and an unparseable front matter block a CategoryMalformed error, both
// carrying the path in their context.
func Load(root, relPath string, resolver *paths.Resolver) (*Item, error) {
	itemPath := "/" + strings.TrimPrefix(path.Clean("/"+relPath), "/")
	file := filepath.Join(root, filepath.FromSlash(itemPath))

	info, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("content file not found").
				WithCause(err).
				WithContext("path", itemPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat content file").
			WithContext("path", itemPath).
			Build()
	}
	if info.IsDir() {
		return nil, errors.NotFoundError("content path is a directory").WithContext("path", itemPath).Build()
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read content file").
			WithContext("path", itemPath).
			Build()
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", itemPath)
		}
		return nil, errors.WrapError(err, errors.CategoryMalformed, "failed to parse content file").
			WithContext("path", itemPath).
			Build()
	}

	url, dir := resolver.Resolve(itemPath)
	it := &Item{
		path:     itemPath,
		url:      url,
		dir:      dir,
		meta:     doc.Meta,
		body:     doc.Body,
		modified: info.ModTime(),
		fingerprint: mdfp.CalculateFingerprintFromParts(
			strings.TrimSuffix(string(doc.Frontmatter), "\n"), doc.Body),
	}
	it.resolveAssets()
	it.ensureDate()
	it.ensureDraft()
	it.ensureExcerpt()
	return it, nil
}

// resolveAssets rewrites relative href or src fields of every nested mapping
// against the item directory. An authored href takes priority, even when
// empty; only one of the two is touched per mapping. A src mapping with no alt
// key gets the source file name; an authored alt: "" is kept.
func (it *Item) resolveAssets() {
	for _, key := range it.meta.Keys() {
		a, ok := it.meta[key].(*meta.Asset)
		if !ok {
			continue
		}
		switch {
		case a.HasHref || a.Href != "":
			a.Href = paths.ResolveRelative(a.Href, it.dir)
		case a.Src != "":
			if !a.HasAlt && a.Alt == "" {
				a.Alt = a.Filename()
			}
			a.Src = paths.ResolveRelative(a.Src, it.dir)
		}
	}
}

func (it *Item) ensureDate() {
	if v, ok := it.meta[KeyDate]; ok && !isBlank(v) {
		if s, isString := v.(meta.String); isString {
			if d, parsed := meta.ParseDate(string(s)); parsed {
				it.meta[KeyDate] = d
			}
		}
		return
	}
	if d, ok := DateFromPath(it.path); ok {
		it.meta[KeyDate] = d
		return
	}
	it.meta[KeyDate] = meta.NewDate(it.modified)
}

// isBlank reports an authored but empty value, such as a YAML null.
func isBlank(v meta.Value) bool {
	s, ok := v.(meta.String)
	return ok && strings.TrimSpace(string(s)) == ""
}

func (it *Item) ensureDraft() {
	v, ok := it.meta[KeyDraft]
	if !ok {
		it.meta[KeyDraft] = meta.Bool(false)
		return
	}
	it.meta[KeyDraft] = meta.Bool(meta.Truthy(v))
}

func (it *Item) ensureExcerpt() {
	if _, ok := it.meta[KeyExcerpt]; ok {
		return
	}
	it.meta[KeyExcerpt] = meta.String(excerpt.Extract(it.body))
}

// DateFromPath returns the first valid YYYY-MM-DD or YYYY/MM/DD date embedded
// in p. Shapes that are not real calendar dates are skipped.
func DateFromPath(p string) (meta.Date, bool) {
	for _, m := range pathDateRe.FindAllString(p, -1) {
		if d, ok := meta.ParseDate(strings.ReplaceAll(m, "/", "-")); ok {
			return d, true
		}
	}
	return "", false
}

// Path is the content-root-relative path with a leading slash.
func (it *Item) Path() string { return it.path }

// URL is the public page URL.
func (it *Item) URL() string { return it.url }

// Dir is the URL directory relative assets were resolved against.
func (it *Item) Dir() string { return it.dir }

// Meta returns the item metadata. Callers must not modify it.
func (it *Item) Meta() meta.Metadata { return it.meta }

// Body is the raw Markdown body after front matter removal.
func (it *Item) Body() string { return it.body }

// Modified is the file modification time at load.
func (it *Item) Modified() time.Time { return it.modified }

// Fingerprint is a content hash over front matter and body, suitable as an ETag.
func (it *Item) Fingerprint() string { return it.fingerprint }

// IsDraft reports the normalized draft flag.
func (it *Item) IsDraft() bool { return meta.Truthy(it.meta[KeyDraft]) }

// SEOTitle returns seotitle, then title, then fallback.
func (it *Item) SEOTitle(fallback string) string {
	return it.meta.GetString([]string{"seotitle", "title"}, fallback)
}

// Title returns the title key or fallback.
func (it *Item) Title(fallback string) string {
	return it.meta.GetString([]string{"title"}, fallback)
}

// Description returns description, falling back to the excerpt.
func (it *Item) Description() string {
	return it.meta.FirstString("description", KeyExcerpt)
}

// Image returns the image asset when it carries a src.
func (it *Item) Image() (*meta.Asset, bool) {
	a, ok := it.meta.Asset("image")
	if !ok || a.Src == "" {
		return nil, false
	}
	return a, true
}
