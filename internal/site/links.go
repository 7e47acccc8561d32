package site

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/paths"
)

// BrokenLink is a relative link in a published item that points at nothing
// under the content root.
type BrokenLink struct {
	// Source is the item path the link appears in.
	Source string
	// Destination is the link as written.
	Destination string
	Kind        markdown.LinkKind
}

// CheckLinks reports relative links and images of published items that do
// not resolve to a file under the content root. A link to "x.html" is
// satisfied by the content file "x" + extension.
func (s *Site) CheckLinks(ctx context.Context) ([]BrokenLink, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	var broken []BrokenLink
	for _, c := range snap.Collections {
		for _, it := range c.Published() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			itemDir := path.Dir(it.Path())
			for _, l := range markdown.ExtractLinks([]byte(it.Body())) {
				target, ok := localTarget(l.Destination, itemDir, s.resolver)
				if !ok || s.exists(target) {
					continue
				}
				broken = append(broken, BrokenLink{Source: it.Path(), Destination: l.Destination, Kind: l.Kind})
			}
		}
	}
	return broken, nil
}

// localTarget maps a link destination onto a root-relative path. Links with
// a scheme, fragment-only links and links outside the site are skipped.
func localTarget(dest, itemDir string, resolver *paths.Resolver) (string, bool) {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	if strings.HasPrefix(u.Path, "/") {
		site := strings.TrimSuffix(resolver.URL(""), "/")
		siteURL, perr := url.Parse(site)
		if perr != nil {
			return "", false
		}
		prefix := strings.TrimSuffix(siteURL.Path, "/")
		if prefix != "" && !strings.HasPrefix(u.Path, prefix+"/") {
			return "", false
		}
		return path.Clean(strings.TrimPrefix(u.Path, prefix)), true
	}
	return path.Join(itemDir, u.Path), true
}

func (s *Site) exists(target string) bool {
	candidates := []string{target}
	if strings.HasSuffix(target, ".html") {
		candidates = append(candidates, strings.TrimSuffix(target, ".html")+s.cfg.Content.Extension)
	}
	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(s.cfg.Content.Root, filepath.FromSlash(c))); err == nil {
			return true
		}
	}
	return false
}
