package site

import (
	"context"
	"html"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/mdsite/internal/content"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/metaindex"
	"git.home.luguber.info/inful/mdsite/internal/sitemap"
)

// Render kinds used for metrics and logging.
const (
	KindPage    = "page"
	KindListing = "listing"
	KindSitemap = "sitemap"
	KindIndex   = "index"
)

var queryRe = regexp.MustCompile(`\?.*$`)

// Page is a rendered HTML document.
type Page struct {
	HTML string
	// URL is the canonical URL of the page.
	URL string
	// ETag identifies the source content; empty for listings.
	ETag string
}

// SanitizePage normalizes a requested page name the way crawler links are
// written: "../" sequences, a query string and ".html" are removed, as is a
// leading slash. "posts/a.html?x=1" becomes "posts/a".
func SanitizePage(page string) string {
	page = strings.ReplaceAll(page, "../", "")
	page = queryRe.ReplaceAllString(page, "")
	page = strings.ReplaceAll(page, ".html", "")
	return strings.TrimPrefix(page, "/")
}

// RenderPage renders one content file as a full HTML page for crawlers.
//
// The head carries seotitle (falling back to title, then the page name), a
// description from description or excerpt, og:image from image.src and the
// canonical URL. The body is an <h1> title followed by the rendered Markdown.
// A page with no backing file is a CategoryNotFound error.
func (s *Site) RenderPage(page string) (*Page, error) {
	start := time.Now()
	p, err := s.renderPage(page)
	s.recorder.ObserveRenderDuration(KindPage, time.Since(start), err == nil)
	return p, err
}

func (s *Site) renderPage(page string) (*Page, error) {
	name := SanitizePage(page)
	if name == "" {
		return nil, errors.NotFoundError("Requested page not found").WithContext("page", page).Build()
	}

	it, err := content.Load(s.cfg.Content.Root, name+s.cfg.Content.Extension, s.resolver)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFoundError("Requested page not found").
				WithCause(err).
				WithContext("page", name).
				Build()
		}
		return nil, err
	}

	tpl, err := s.skeleton.New()
	if err != nil {
		return nil, err
	}
	tpl.SetCanonical(it.URL())
	tpl.SetTitle(it.SEOTitle(name))
	if desc := it.Description(); desc != "" {
		tpl.SetDescription(desc)
	}
	if img, ok := it.Image(); ok {
		tpl.SetMetaContent("og:image", img.Src, "property")
	}

	body, err := s.renderer.Render(it.Body())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to render page body").
			WithContext("path", it.Path()).
			Build()
	}
	if err := tpl.SetBody("<h1>" + html.EscapeString(it.Title(name)) + "</h1>" + body); err != nil {
		return nil, err
	}
	out, err := tpl.Render()
	if err != nil {
		return nil, err
	}
	return &Page{HTML: out, URL: it.URL(), ETag: it.Fingerprint()}, nil
}

// ListingTitle turns a type name such as "blog-posts" into "Blog Posts".
func ListingTitle(contentType string) string {
	words := strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(contentType)
	return cases.Title(language.English).String(words)
}

// RenderListing renders the listing page of a configured content type.
func (s *Site) RenderListing(ctx context.Context, contentType string) (*Page, error) {
	start := time.Now()
	p, err := s.renderListing(ctx, contentType)
	s.recorder.ObserveRenderDuration(KindListing, time.Since(start), err == nil)
	return p, err
}

func (s *Site) renderListing(ctx context.Context, contentType string) (*Page, error) {
	if !s.HasType(contentType) {
		return nil, errors.NotFoundError("Requested page not found").WithContext("type", contentType).Build()
	}
	snap, err := s.Load(ctx, contentType)
	if err != nil {
		return nil, err
	}
	if len(snap.Collections) == 0 {
		return nil, errors.NotFoundError("Requested page not found").WithContext("type", contentType).Build()
	}
	c := snap.Collections[0]

	title := ListingTitle(contentType)
	tpl, err := s.skeleton.New()
	if err != nil {
		return nil, err
	}
	tpl.SetCanonical(c.URL())
	tpl.SetTitle(title)
	if err := tpl.SetBody("<h1>" + html.EscapeString(title) + "</h1>" + c.ListingHTML(false)); err != nil {
		return nil, err
	}
	out, err := tpl.Render()
	if err != nil {
		return nil, err
	}
	return &Page{HTML: out, URL: c.URL()}, nil
}

// Sitemap loads every configured type and renders the XML sitemap. Missing
// type directories become comments.
func (s *Site) Sitemap(ctx context.Context) ([]byte, error) {
	start := time.Now()
	out, err := s.sitemap(ctx)
	s.recorder.ObserveRenderDuration(KindSitemap, time.Since(start), err == nil)
	return out, err
}

func (s *Site) sitemap(ctx context.Context) ([]byte, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return sitemap.Generate(snap.Collections, snap.Missing, sitemap.Options{
		IncludeListings: s.cfg.Sitemap.IncludeListings,
	})
}

// Index loads every configured type and builds the JSON content index.
// Missing type directories are left out.
func (s *Site) Index(ctx context.Context) (metaindex.Index, error) {
	start := time.Now()
	snap, err := s.Load(ctx)
	s.recorder.ObserveRenderDuration(KindIndex, time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	return metaindex.Build(snap.Collections), nil
}
