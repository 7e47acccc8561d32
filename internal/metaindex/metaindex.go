// Package metaindex builds the JSON index of published content.
package metaindex

import (
	"encoding/json"

	"git.home.luguber.info/inful/mdsite/internal/content"
	"git.home.luguber.info/inful/mdsite/internal/meta"
)

// Entry describes one published item.
type Entry struct {
	URL  string        `json:"url"`
	Path string        `json:"path"`
	Meta meta.Metadata `json:"meta"`
}

// Index maps a content type to its published entries in collection order.
type Index map[string][]Entry

// Build indexes the non-draft items of every collection. A collection with
// no published items still gets an empty list.
func Build(collections []*content.Collection) Index {
	idx := make(Index, len(collections))
	for _, c := range collections {
		entries := make([]Entry, 0, c.Len())
		for _, it := range c.Published() {
			entries = append(entries, Entry{URL: it.URL(), Path: it.Path(), Meta: it.Meta().Clone()})
		}
		idx[c.Type()] = entries
	}
	return idx
}

// JSON encodes the index. Object keys come out sorted.
func (idx Index) JSON() ([]byte, error) {
	return json.Marshal(idx)
}
