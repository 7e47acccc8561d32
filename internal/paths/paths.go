// Package paths maps root-relative content paths to public URLs and resolves
// relative asset references against them.
package paths

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// DefaultExtension is the source markup extension replaced by ".html".
const DefaultExtension = ".md"

// Resolver turns root-relative paths into URLs under Host + WebPath.
type Resolver struct {
	host      string
	webPath   string
	extension string
}

// NewResolver validates host and webPath and returns a Resolver.
// An empty extension means DefaultExtension.
func NewResolver(host, webPath, extension string) (*Resolver, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errors.ConfigError("site host is not configured").WithContext("field", "site.host").Build()
	}
	if strings.TrimSpace(webPath) == "" {
		return nil, errors.ConfigError("site web path is not configured").WithContext("field", "site.web_path").Build()
	}
	if extension == "" {
		extension = DefaultExtension
	}
	return &Resolver{
		host:      strings.TrimSuffix(host, "/"),
		webPath:   "/" + strings.Trim(webPath, "/"),
		extension: extension,
	}, nil
}

// Extension returns the source markup extension.
func (r *Resolver) Extension() string { return r.extension }

// Resolve returns the public URL of a root-relative source path and the URL
// directory that relative asset references are resolved against.
func (r *Resolver) Resolve(rootRelativePath string) (url, dir string) {
	p := strings.TrimPrefix(rootRelativePath, "/")
	if strings.HasSuffix(p, r.extension) {
		p = strings.TrimSuffix(p, r.extension) + ".html"
	}
	url = r.URL(p)
	return url, url[:strings.LastIndex(url, "/")]
}

// URL joins a web-root-relative path onto host and web path.
func (r *Resolver) URL(webRelative string) string {
	return r.host + path.Join(r.webPath, strings.TrimPrefix(webRelative, "/"))
}

// ListingURL is the URL of the listing page of a content type.
func (r *Resolver) ListingURL(contentType string) string {
	return r.URL(contentType + ".html")
}

// HomeURL is the URL of the default view.
func (r *Resolver) HomeURL(defaultView string) string {
	return r.URL(defaultView + ".html")
}

// IsAbsolute reports whether ref carries a scheme or starts at the web root.
func IsAbsolute(ref string) bool {
	return strings.Contains(ref, "://") || strings.HasPrefix(ref, "/")
}

// ResolveRelative joins ref onto baseDir unless it is already absolute.
func ResolveRelative(ref, baseDir string) string {
	if IsAbsolute(ref) {
		return ref
	}
	return strings.TrimSuffix(baseDir, "/") + "/" + ref
}
