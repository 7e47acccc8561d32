package content

import (
	"bytes"
	"html/template"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/paths"
)

// ScanOptions tunes Scan.
type ScanOptions struct {
	// SkipMalformed records a diagnostic for a malformed file and keeps going
	// instead of failing the whole scan.
	SkipMalformed bool
	Logger        *slog.Logger
}

// Diagnostic is a non-fatal problem noticed while scanning.
type Diagnostic struct {
	Path    string
	Message string
}

// Collection is every item of one content type, ordered by path.
type Collection struct {
	contentType string
	url         string
	items       []*Item
	byPath      map[string]*Item
	diagnostics []Diagnostic
}

// Scan loads root/contentType: its direct content files plus the content files
// of each direct subdirectory. Deeper nesting is ignored.
//
// A missing type directory yields a CategoryNotFound error; callers that treat
// a missing type as empty use errors.IsNotFound.
func Scan(root, contentType string, resolver *paths.Resolver, opts ScanOptions) (*Collection, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	typeDir := filepath.Join(root, filepath.FromSlash(contentType))
	entries, err := os.ReadDir(typeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("content type directory not found").
				WithCause(err).
				WithContext("type", contentType).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read content type directory").
			WithContext("type", contentType).
			Build()
	}

	ext := resolver.Extension()
	var rels []string
	for _, e := range entries {
		if e.IsDir() {
			sub, subErr := os.ReadDir(filepath.Join(typeDir, e.Name()))
			if subErr != nil {
				return nil, errors.WrapError(subErr, errors.CategoryFileSystem, "failed to read content subdirectory").
					WithContext("path", path.Join("/", contentType, e.Name())).
					Build()
			}
			for _, s := range sub {
				if !s.IsDir() && strings.HasSuffix(s.Name(), ext) {
					rels = append(rels, path.Join(contentType, e.Name(), s.Name()))
				}
			}
			continue
		}
		if strings.HasSuffix(e.Name(), ext) {
			rels = append(rels, path.Join(contentType, e.Name()))
		}
	}
	sort.Strings(rels)

	c := &Collection{
		contentType: contentType,
		url:         resolver.ListingURL(contentType),
		byPath:      make(map[string]*Item, len(rels)),
	}
	for _, rel := range rels {
		it, loadErr := Load(root, rel, resolver)
		if loadErr != nil {
			if opts.SkipMalformed && errors.IsMalformed(loadErr) {
				c.diagnostics = append(c.diagnostics, Diagnostic{Path: "/" + rel, Message: loadErr.Error()})
				logger.Warn("Skipping malformed content file",
					logfields.ContentType(contentType),
					logfields.Path("/"+rel),
					logfields.Error(loadErr))
				continue
			}
			return nil, loadErr
		}
		c.items = append(c.items, it)
		c.byPath[it.Path()] = it
	}

	logger.Debug("Scanned content type",
		logfields.ContentType(contentType),
		logfields.Items(len(c.items)))
	return c, nil
}

// Type is the content type name.
func (c *Collection) Type() string { return c.contentType }

// URL is the listing page URL of the type.
func (c *Collection) URL() string { return c.url }

// Items returns every item including drafts.
func (c *Collection) Items() []*Item { return c.items }

// Published returns the non-draft items in order.
func (c *Collection) Published() []*Item {
	out := make([]*Item, 0, len(c.items))
	for _, it := range c.items {
		if !it.IsDraft() {
			out = append(out, it)
		}
	}
	return out
}

// Len is the number of items including drafts.
func (c *Collection) Len() int { return len(c.items) }

// Diagnostics lists files skipped during the scan.
func (c *Collection) Diagnostics() []Diagnostic { return c.diagnostics }

// GetByPath returns the item whose path is exactly p.
func (c *Collection) GetByPath(p string) (*Item, bool) {
	it, ok := c.byPath[p]
	return it, ok
}

var listingTemplate = template.Must(template.New("listing").Parse(
	`<div class="cms-listing cms-listing-{{.Type}}">
{{- range .Entries}}
<article class="cms-listing-entry">
{{- if .ImageSrc}}
<a href="{{.URL}}"><img src="{{.ImageSrc}}" alt="{{.ImageAlt}}"></a>
{{- end}}
<h2><a href="{{.URL}}">{{.Title}}</a></h2>
{{- if .Summary}}
<p>{{.Summary}}</p>
{{- end}}
</article>
{{- end}}
</div>
`))

type listingEntry struct {
	URL      string
	Title    string
	Summary  string
	ImageSrc string
	ImageAlt string
}

// ListingHTML renders a listing fragment of the collection in item order.
// Drafts are left out unless includeDrafts is set.
func (c *Collection) ListingHTML(includeDrafts bool) string {
	items := c.items
	if !includeDrafts {
		items = c.Published()
	}

	entries := make([]listingEntry, 0, len(items))
	for _, it := range items {
		e := listingEntry{
			URL:     it.URL(),
			Title:   it.Meta().FirstString("title", "seotitle"),
			Summary: it.Meta().FirstString(KeyExcerpt, "description"),
		}
		if e.Title == "" {
			e.Title = strings.TrimSuffix(path.Base(it.Path()), path.Ext(it.Path()))
		}
		if img, ok := it.Image(); ok {
			e.ImageSrc = img.Src
			e.ImageAlt = img.Alt
		}
		entries = append(entries, e)
	}

	var buf bytes.Buffer
	// Execution only fails on writer errors, which bytes.Buffer never returns.
	_ = listingTemplate.Execute(&buf, struct {
		Type    string
		Entries []listingEntry
	}{Type: c.contentType, Entries: entries})
	return buf.String()
}
