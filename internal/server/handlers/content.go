package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/server/middleware"
	"git.home.luguber.info/inful/mdsite/internal/server/responses"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

const notFoundMessage = "Requested page not found"

// ContentHandlers serve rendered site content.
type ContentHandlers struct {
	site         *site.Site
	errorAdapter *errors.HTTPErrorAdapter
	logger       *slog.Logger
	debug        bool
}

// NewContentHandlers creates content handlers for s.
func NewContentHandlers(s *site.Site, adapter *errors.HTTPErrorAdapter, logger *slog.Logger) *ContentHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(logger)
	}
	return &ContentHandlers{
		site:         s,
		errorAdapter: adapter,
		logger:       logger,
		debug:        s.Config().Site.Debug,
	}
}

// HandleHome redirects to the default view. A "page" query parameter renders
// that page in place, which is the form crawlers are pointed at.
func (h *ContentHandlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	if page := r.URL.Query().Get("page"); page != "" {
		h.servePage(w, r, page)
		return
	}
	middleware.SetRouteKind(r, "redirect")
	cfg := h.site.Config()
	if err := responses.Redirect(w, responses.HTML, h.site.HomeURL(), cfg.RedirectCode()); err != nil {
		h.errorAdapter.Log(r, err)
	}
}

// HandleContent serves "/<name>.html": the listing when name is a configured
// type, otherwise the page backed by "<name>.md".
func (h *ContentHandlers) HandleContent(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".html")
	if !ok || name == "" {
		h.HandleNotFound(w, r)
		return
	}
	if h.site.HasType(name) {
		h.serveListing(w, r, name)
		return
	}
	h.servePage(w, r, name)
}

// HandleSitemap serves sitemap.xml.
func (h *ContentHandlers) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	middleware.SetRouteKind(r, site.KindSitemap)
	out, err := h.site.Sitemap(r.Context())
	if err != nil {
		h.writeError(w, r, responses.XML, err)
		return
	}
	if err := responses.OK(w, responses.XML, out); err != nil {
		h.errorAdapter.Log(r, err)
	}
}

// HandleIndex serves the JSON metadata index.
func (h *ContentHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	middleware.SetRouteKind(r, site.KindIndex)
	idx, err := h.site.Index(r.Context())
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if err := responses.OK(w, responses.JSON, idx); err != nil {
		h.errorAdapter.Log(r, err)
	}
}

// HandleNotFound answers any unmatched route.
func (h *ContentHandlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, responses.HTML, errors.NotFoundError(notFoundMessage).WithContext("path", r.URL.Path).Build())
}

func (h *ContentHandlers) servePage(w http.ResponseWriter, r *http.Request, name string) {
	middleware.SetRouteKind(r, site.KindPage)
	page, err := h.site.RenderPage(name)
	if err != nil {
		h.writeError(w, r, responses.HTML, err)
		return
	}
	if page.ETag != "" {
		etag := `"` + page.ETag + `"`
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	if err := responses.OK(w, responses.HTML, page.HTML); err != nil {
		h.errorAdapter.Log(r, err)
	}
}

func (h *ContentHandlers) serveListing(w http.ResponseWriter, r *http.Request, contentType string) {
	middleware.SetRouteKind(r, site.KindListing)
	page, err := h.site.RenderListing(r.Context(), contentType)
	if err != nil {
		h.writeError(w, r, responses.HTML, err)
		return
	}
	if err := responses.OK(w, responses.HTML, page.HTML); err != nil {
		h.errorAdapter.Log(r, err)
	}
}

// writeError renders err as an error page in ctx's content type. Outside
// debug mode only not-found messages reach the client.
func (h *ContentHandlers) writeError(w http.ResponseWriter, r *http.Request, ctx responses.Context, err error) {
	code := h.errorAdapter.StatusCodeFor(err)
	h.errorAdapter.Log(r, err)
	if werr := responses.Error(w, ctx, code, errorMessage(err, code, h.debug)); werr != nil {
		h.logger.Error("failed writing error response", slog.Any("error", werr))
	}
}

func errorMessage(err error, code int, debug bool) string {
	switch {
	case errors.IsNotFound(err):
		return notFoundMessage
	case debug:
		return err.Error()
	default:
		return http.StatusText(code)
	}
}

// ConfigErrorHandler answers every request with a 500 error page. It stands
// in for the site when configuration fails before any content is loaded.
func ConfigErrorHandler(err error, adapter *errors.HTTPErrorAdapter, debug bool) http.Handler {
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(nil)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adapter.Log(r, err)
		msg := "Site configuration error"
		if debug {
			msg = err.Error()
		}
		_ = responses.Error(w, responses.HTML, http.StatusInternalServerError, msg)
	})
}
