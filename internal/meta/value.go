// Package meta holds the typed metadata of a content item and the lookup
// helpers every renderer uses to read it.
//
// A front matter value is one of String, Date, Bool, Number, List or *Asset.
// Consumers switch on the concrete type instead of guessing at runtime.
package meta

import (
	"encoding/json"
	"maps"
	"path"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for every Date value.
const DateLayout = "2006-01-02"

// Value is a single metadata value.
type Value interface {
	// String renders the value as plain text.
	String() string
	isValue()
}

// String is a plain text value.
type String string

// Date is an ISO-8601 calendar date (YYYY-MM-DD).
type Date string

// Bool is a boolean flag such as draft.
type Bool bool

// Number is any numeric scalar.
type Number float64

// List is a sequence value such as tags.
type List []Value

// Asset is a nested mapping. Mappings carrying href describe a link, mappings
// carrying src describe an embedded resource; any other keys land in Extra.
type Asset struct {
	Href  string
	Src   string
	Alt   string
	Title string
	Extra Metadata

	// HasHref and HasAlt record that the key was authored, even as "".
	HasHref bool
	HasAlt  bool
}

func (String) isValue() {}
func (Date) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (List) isValue()   {}
func (*Asset) isValue() {}

func (s String) String() string { return string(s) }
func (d Date) String() string   { return string(d) }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }

func (l List) String() string {
	parts := make([]string, 0, len(l))
	for _, v := range l {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ", ")
}

// String returns the link target, else the embed source.
func (a *Asset) String() string {
	if a.Href != "" {
		return a.Href
	}
	return a.Src
}

// NewDate formats t as a Date, dropping the time of day.
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04",
	"2006/01/02",
}

// ParseDate normalizes a date or timestamp string to a Date.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), true
		}
	}
	return "", false
}

// Truthy coerces v to a boolean. Strings use strconv.ParseBool rules.
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case Bool:
		return bool(vv)
	case String:
		b, err := strconv.ParseBool(strings.TrimSpace(string(vv)))
		return err == nil && b
	case Number:
		return vv != 0
	default:
		return false
	}
}

// Clone returns a deep copy of the asset.
func (a *Asset) Clone() *Asset {
	c := *a
	c.Extra = a.Extra.Clone()
	return &c
}

// Filename returns the last path element of src, used as a fallback alt text.
func (a *Asset) Filename() string {
	if a.Src == "" {
		return ""
	}
	return path.Base(a.Src)
}

func (a *Asset) fields() map[string]any {
	out := make(map[string]any, len(a.Extra)+4)
	maps.Copy(out, toAnyMap(a.Extra))
	for k, v := range map[string]string{"src": a.Src, "title": a.Title} {
		if v != "" {
			out[k] = v
		}
	}
	if a.Href != "" || a.HasHref {
		out["href"] = a.Href
	}
	if a.Alt != "" || a.HasAlt {
		out["alt"] = a.Alt
	}
	return out
}

func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }
func (d Date) MarshalJSON() ([]byte, error)   { return json.Marshal(string(d)) }
func (b Bool) MarshalJSON() ([]byte, error)   { return json.Marshal(bool(b)) }
func (n Number) MarshalJSON() ([]byte, error) { return json.Marshal(float64(n)) }

func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(l))
}

func (a *Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.fields())
}

func toAnyMap(m Metadata) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
