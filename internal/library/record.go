// Package library loads a read-only snapshot of a local Zotero library.
package library

import "fmt"

// Record represents one bibliographic item materialized from the library.
type Record struct {
	// Key is the stable Zotero item key, unique within the snapshot.
	Key string `json:"key"`

	// URIForms lists every URI spelling that should resolve to this item:
	// user, local-user and group variants, http and https.
	URIForms []string `json:"uri_forms,omitempty"`

	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"` // family names, in order
	Year    int      `json:"year,omitempty"`
	DOI     string   `json:"doi,omitempty"`
	ISBN    string   `json:"isbn,omitempty"`

	libraryID int64
}

// Snapshot is the materialized library taken once per run.
type Snapshot struct {
	Records []Record

	// Account identity used to synthesize canonical item URIs.
	UserID       string // zotero.org user ID, empty for purely local profiles
	LocalUserKey string // local profile key, used when UserID is empty
}

// BaseURI returns the library-scope prefix for synthesized item URIs,
// chosen from the account identity: web user ID first, then the local
// profile key, then the bare local form.
func (s *Snapshot) BaseURI() string {
	switch {
	case s.UserID != "":
		return fmt.Sprintf("http://zotero.org/users/%s", s.UserID)
	case s.LocalUserKey != "":
		return fmt.Sprintf("http://zotero.org/users/local/%s", s.LocalUserKey)
	default:
		return "http://zotero.org/users/local"
	}
}

// ItemURI returns the canonical URI for an item key under the given
// library-scope prefix.
func ItemURI(prefix, key string) string {
	return fmt.Sprintf("%s/items/%s", prefix, key)
}
