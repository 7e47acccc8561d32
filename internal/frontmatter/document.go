package frontmatter

import (
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/meta"
)

// Document is one content file split into typed metadata and a raw body.
type Document struct {
	// Frontmatter is the raw YAML block without delimiters.
	Frontmatter    []byte
	HadFrontmatter bool
	Meta           meta.Metadata
	Body           string
}

// Parse splits content and decodes its front matter.
//
// Keys are folded to lowercase. YAML timestamps become meta.Date values.
// A block that is present but not a parseable YAML mapping yields a
// CategoryMalformed error.
func Parse(content []byte) (*Document, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryMalformed, "failed to split front matter").Build()
	}

	raw, err := decode(fm)
	if err != nil {
		return nil, err
	}

	return &Document{
		Frontmatter:    append([]byte(nil), fm...),
		HadFrontmatter: had,
		Meta:           FoldKeys(raw),
		Body:           string(body),
	}, nil
}

// FoldKeys rewrites every key containing an uppercase character to its
// lowercase form. Keys are processed in sorted order: an authored lowercase key
// keeps its value, otherwise the last uppercase variant processed wins.
// This is deliberately not a plain sorted overwrite, under which "Title"
// would replace an authored "title".
func FoldKeys(raw map[string]meta.Value) meta.Metadata {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(meta.Metadata, len(raw))
	for _, k := range keys {
		if strings.ToLower(k) == k {
			out[k] = raw[k]
		}
	}
	for _, k := range keys {
		lower := strings.ToLower(k)
		if lower == k {
			continue
		}
		if _, authored := raw[lower]; authored {
			continue
		}
		out[lower] = raw[k]
	}
	return out
}

func decode(fm []byte) (map[string]meta.Value, error) {
	out := map[string]meta.Value{}
	if len(strings.TrimSpace(string(fm))) == 0 {
		return out, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(fm, &doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryMalformed, "failed to parse front matter").Build()
	}
	if len(doc.Content) == 0 {
		return out, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.MalformedError("front matter is not a mapping").
			WithContext("kind", kindName(root.Kind)).
			Build()
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		v, err := valueFromNode(root.Content[i+1])
		if err != nil {
			return nil, err
		}
		out[root.Content[i].Value] = v
	}
	return out, nil
}

func valueFromNode(n *yaml.Node) (meta.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil {
			return meta.String(""), nil
		}
		return valueFromNode(n.Alias)
	case yaml.SequenceNode:
		list := make(meta.List, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := valueFromNode(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		return assetFromNode(n)
	case yaml.ScalarNode:
		return scalarFromNode(n)
	default:
		return meta.String(n.Value), nil
	}
}

func scalarFromNode(n *yaml.Node) (meta.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return meta.String(""), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, malformedNode(err, n)
		}
		return meta.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, malformedNode(err, n)
		}
		return meta.Number(f), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, malformedNode(err, n)
		}
		return meta.NewDate(t), nil
	default:
		return meta.String(n.Value), nil
	}
}

func assetFromNode(n *yaml.Node) (meta.Value, error) {
	a := &meta.Asset{Extra: meta.Metadata{}}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		vn := n.Content[i+1]
		if vn.Kind == yaml.ScalarNode && vn.ShortTag() == "!!str" {
			switch key {
			case "href":
				a.Href = vn.Value
				a.HasHref = true
				continue
			case "src":
				a.Src = vn.Value
				continue
			case "alt":
				a.Alt = vn.Value
				a.HasAlt = true
				continue
			case "title":
				a.Title = vn.Value
				continue
			}
		}
		v, err := valueFromNode(vn)
		if err != nil {
			return nil, err
		}
		a.Extra[key] = v
	}
	return a, nil
}

func malformedNode(err error, n *yaml.Node) error {
	return errors.WrapError(err, errors.CategoryMalformed, "invalid front matter value").
		WithContext("line", n.Line).
		WithContext("value", n.Value).
		Build()
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
