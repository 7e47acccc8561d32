// Package templater injects page metadata and content into an HTML skeleton.
package templater

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

//go:embed assets/default.html
var defaultSkeleton []byte

// Skeleton is a reusable HTML template source. Each page gets a fresh Template.
type Skeleton struct {
	source []byte
	name   string
}

// DefaultSkeleton returns the built-in minimal skeleton.
func DefaultSkeleton() *Skeleton {
	return &Skeleton{source: defaultSkeleton, name: "default"}
}

// LoadSkeleton reads the skeleton file at path. An empty path selects the
// built-in skeleton.
func LoadSkeleton(path string) (*Skeleton, error) {
	if path == "" {
		return DefaultSkeleton(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("template file not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read template file").
			WithContext("path", path).
			Build()
	}
	return &Skeleton{source: data, name: path}, nil
}

// New parses a fresh Template from the skeleton.
func (s *Skeleton) New() (*Template, error) {
	doc, err := html.Parse(bytes.NewReader(s.source))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to parse HTML template").
			WithContext("template", s.name).
			Build()
	}
	t := &Template{doc: doc}
	t.head = findElement(doc, func(n *html.Node) bool { return n.DataAtom == atom.Head })
	t.body = findElement(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	return t, nil
}

// Template is one page being assembled. It is not safe for concurrent use.
type Template struct {
	doc  *html.Node
	head *html.Node
	body *html.Node
}

// SetTitle sets <title> and og:title.
func (t *Template) SetTitle(title string) {
	el := findElement(t.head, func(n *html.Node) bool { return n.DataAtom == atom.Title })
	if el == nil {
		el = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		t.head.AppendChild(el)
	}
	for c := el.FirstChild; c != nil; c = el.FirstChild {
		el.RemoveChild(c)
	}
	el.AppendChild(&html.Node{Type: html.TextNode, Data: title})

	t.SetMetaContent("og:title", title, "property")
}

// SetDescription sets the description meta (by name) and og:description.
func (t *Template) SetDescription(desc string) {
	t.SetMetaContent("description", desc, "name")
	t.SetMetaContent("og:description", desc, "property")
}

// SetCanonical sets the canonical link.
func (t *Template) SetCanonical(href string) {
	el := findElement(t.head, func(n *html.Node) bool {
		return n.DataAtom == atom.Link && getAttr(n, "rel") == "canonical"
	})
	if el == nil {
		t.head.AppendChild(&html.Node{
			Type: html.ElementNode, Data: "link", DataAtom: atom.Link,
			Attr: []html.Attribute{{Key: "rel", Val: "canonical"}, {Key: "href", Val: href}},
		})
		return
	}
	setAttr(el, "href", href)
}

// SetMetaContent sets the content of the <meta> whose attr equals key,
// creating it when absent. attr is usually "property" or "name".
func (t *Template) SetMetaContent(key, content, attr string) {
	if attr == "" {
		attr = "property"
	}
	el := findElement(t.head, func(n *html.Node) bool {
		return n.DataAtom == atom.Meta && getAttr(n, attr) == key
	})
	if el == nil {
		t.head.AppendChild(&html.Node{
			Type: html.ElementNode, Data: "meta", DataAtom: atom.Meta,
			Attr: []html.Attribute{{Key: attr, Val: key}, {Key: "content", Val: content}},
		})
		return
	}
	setAttr(el, "content", content)
}

// SetBody appends an HTML fragment to <div id="cms">, or to <body> when the
// skeleton has no such element.
func (t *Template) SetBody(fragment string) error {
	target := findElement(t.body, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && getAttr(n, "id") == "cms"
	})
	if target == nil {
		target = t.body
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), target)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to parse body fragment").Build()
	}
	for _, n := range nodes {
		target.AppendChild(n)
	}
	return nil
}

// Render serializes the document.
func (t *Template) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, t.doc); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to render HTML template").Build()
	}
	return buf.String(), nil
}

func findElement(root *html.Node, match func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.ElementNode && match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
