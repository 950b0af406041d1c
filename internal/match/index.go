package match

import (
	"github.com/matsen/relink/internal/library"
)

// Index is the queryable snapshot of the library, immutable once built.
// All normalization happens here so the fuzzy tiers never re-parse records.
type Index struct {
	records []library.Record
	norms   []recordNorm

	byURI  map[string]int
	byKey  map[string]int
	byDOI  map[string]int
	byISBN map[string]int
}

// recordNorm holds the pre-normalized matching forms of one record.
type recordNorm struct {
	titleTokens []string
	authors     []string
}

// NewIndex builds the lookup structures over the given records. Record
// order is preserved; where URI, DOI or ISBN spellings collide across
// records, the first record wins.
func NewIndex(records []library.Record) *Index {
	idx := &Index{
		records: records,
		norms:   make([]recordNorm, len(records)),
		byURI:   make(map[string]int),
		byKey:   make(map[string]int),
		byDOI:   make(map[string]int),
		byISBN:  make(map[string]int),
	}

	for i, rec := range records {
		idx.norms[i] = recordNorm{
			titleTokens: normalizeTokens(rec.Title),
			authors:     normalizeAll(rec.Authors),
		}

		if _, ok := idx.byKey[rec.Key]; !ok {
			idx.byKey[rec.Key] = i
		}
		for _, uri := range rec.URIForms {
			if _, ok := idx.byURI[uri]; !ok {
				idx.byURI[uri] = i
			}
		}
		if doi := NormalizeDOI(rec.DOI); doi != "" {
			if _, ok := idx.byDOI[doi]; !ok {
				idx.byDOI[doi] = i
			}
		}
		if isbn := NormalizeISBN(rec.ISBN); isbn != "" {
			if _, ok := idx.byISBN[isbn]; !ok {
				idx.byISBN[isbn] = i
			}
		}
	}
	return idx
}

func normalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = normalizeWord(n)
	}
	return out
}

// Len returns the number of records in the index.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Record returns the record at position i in insertion order.
func (idx *Index) Record(i int) *library.Record {
	return &idx.records[i]
}

// LookupURI resolves a URI spelling to its record.
func (idx *Index) LookupURI(uri string) (*library.Record, bool) {
	if i, ok := idx.byURI[uri]; ok {
		return &idx.records[i], true
	}
	return nil, false
}

// LookupKey resolves a library item key to its record.
func (idx *Index) LookupKey(key string) (*library.Record, bool) {
	if i, ok := idx.byKey[key]; ok {
		return &idx.records[i], true
	}
	return nil, false
}

// LookupDOI resolves a normalized DOI to its record.
func (idx *Index) LookupDOI(doi string) (*library.Record, bool) {
	if i, ok := idx.byDOI[doi]; ok {
		return &idx.records[i], true
	}
	return nil, false
}

// LookupISBN resolves a normalized ISBN to its record.
func (idx *Index) LookupISBN(isbn string) (*library.Record, bool) {
	if i, ok := idx.byISBN[isbn]; ok {
		return &idx.records[i], true
	}
	return nil, false
}
