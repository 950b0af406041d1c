// Package citation defines the domain types for embedded Zotero citations.
package citation

import (
	"strconv"
	"strings"
)

// Status classifies a cited item against the library snapshot.
type Status string

const (
	StatusValid    Status = "valid"    // at least one URI resolves in the library
	StatusOrphaned Status = "orphaned" // no URI resolves
)

// Item represents a single cited work inside a citation field.
type Item struct {
	// URIs currently attached to the item, in payload order. An item may
	// carry several spellings (legacy plus current).
	URIs []string `json:"uris"`

	// ItemKey is the Zotero item key parsed from the first URI that ends
	// in /items/<key>, empty when no URI carries one.
	ItemKey string `json:"item_key,omitempty"`

	// Metadata used for matching.
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"` // family names, in order
	Year    int      `json:"year,omitempty"`    // 0 when unknown
	DOI     string   `json:"doi,omitempty"`     // as found in the payload
	ISBN    string   `json:"isbn,omitempty"`    // as found in the payload
}

// Field represents one Zotero citation field occurrence in the document.
type Field struct {
	Index int    `json:"index"` // position in document order, 0-based
	Items []Item `json:"items"`
}

// AuthorString returns the item's author surnames joined for display.
func (it Item) AuthorString() string {
	return strings.Join(it.Authors, " ")
}

// SearchString combines title, authors and year into one matching string.
func (it Item) SearchString() string {
	parts := make([]string, 0, 3)
	if it.Title != "" {
		parts = append(parts, it.Title)
	}
	if as := it.AuthorString(); as != "" {
		parts = append(parts, as)
	}
	if it.Year != 0 {
		parts = append(parts, strconv.Itoa(it.Year))
	}
	return strings.Join(parts, " ")
}
