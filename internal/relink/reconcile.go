// Package relink sequences citation reconciliation: extract fields from
// the document, classify items against the library, match orphans, and
// rewrite resolved URIs.
package relink

import (
	"fmt"

	"github.com/matsen/relink/internal/citation"
	"github.com/matsen/relink/internal/docx"
	"github.com/matsen/relink/internal/library"
	"github.com/matsen/relink/internal/match"
)

// Options configures one reconciliation run.
type Options struct {
	// Threshold is the composite fuzzy-match acceptance score, inclusive.
	Threshold int

	// URIPrefix is the library-scope prefix for synthesized canonical
	// URIs, e.g. "http://zotero.org/users/12345".
	URIPrefix string
}

// ItemOutcome is the per-item result, in document order.
type ItemOutcome struct {
	FieldIndex   int             `json:"field_id"`
	ItemIndex    int             `json:"item_index"`
	OriginalURIs []string        `json:"original_uris"`
	Status       citation.Status `json:"status"`

	// Match is set for orphaned items only.
	Match *match.Result `json:"match,omitempty"`

	// NewURI is the canonical URI substituted on rewrite, set when the
	// item matched.
	NewURI string `json:"new_uri,omitempty"`

	// UnlocatedURIs lists stale URIs of a matched item that could not be
	// found as contiguous text in the document (Word sometimes splits a
	// URI across runs). They are reported instead of rewritten.
	UnlocatedURIs []string `json:"unlocated_uris,omitempty"`

	item     citation.Item
	matched  *library.Record
	uriSpans []docx.Span
}

// Item returns the parsed citation item behind this outcome.
func (o *ItemOutcome) Item() citation.Item { return o.item }

// MatchedRecord returns the resolved library record, nil when unmatched.
func (o *ItemOutcome) MatchedRecord() *library.Record { return o.matched }

// FieldError records a field whose payload failed to parse. Soft: the
// field is reported and the run continues.
type FieldError struct {
	FieldIndex int    `json:"field_id"`
	Err        string `json:"error"`
}

// Result is the full outcome of a reconciliation run.
type Result struct {
	TotalFields int `json:"total_fields"`
	TotalItems  int `json:"total_items"`

	Orphaned  int `json:"orphaned"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`

	Outcomes    []ItemOutcome `json:"items"`
	ParseErrors []FieldError  `json:"parse_errors,omitempty"`
}

// Analyze runs extract → classify → match over the document body. The
// returned outcomes follow document order. Parse failures of individual
// fields are accumulated, never fatal; a document without citation fields
// surfaces docx.ErrNoFields.
func Analyze(body string, idx *match.Index, opts Options) (*Result, error) {
	fields, err := docx.ExtractFields(body)
	if err != nil {
		return nil, err
	}

	res := &Result{TotalFields: len(fields)}
	for f := range fields {
		occ := &fields[f]
		if occ.ParseErr != nil {
			res.ParseErrors = append(res.ParseErrors, FieldError{
				FieldIndex: f,
				Err:        occ.ParseErr.Error(),
			})
			continue
		}

		for i, item := range occ.Citation.Items {
			res.TotalItems++
			out := ItemOutcome{
				FieldIndex:   occ.Citation.Index,
				ItemIndex:    i,
				OriginalURIs: item.URIs,
				item:         item,
			}
			for j := range item.URIs {
				out.uriSpans = append(out.uriSpans, occ.URISpan(i, j))
			}

			if resolves(item, idx) {
				out.Status = citation.StatusValid
				res.Outcomes = append(res.Outcomes, out)
				continue
			}

			out.Status = citation.StatusOrphaned
			res.Orphaned++

			m := match.Resolve(item, idx, opts.Threshold)
			out.Match = &m
			if m.Method != match.MethodNone {
				rec, ok := idx.LookupKey(m.Key)
				if !ok {
					return nil, fmt.Errorf("matched key %s missing from index", m.Key)
				}
				out.matched = rec
				out.NewURI = library.ItemURI(opts.URIPrefix, rec.Key)
				for j, uri := range item.URIs {
					if uri == "" || uri == out.NewURI {
						continue
					}
					if out.uriSpans[j].IsZero() {
						out.UnlocatedURIs = append(out.UnlocatedURIs, uri)
					}
				}
				res.Matched++
			} else {
				res.Unmatched++
			}
			res.Outcomes = append(res.Outcomes, out)
		}
	}
	return res, nil
}

// resolves reports whether any of the item's URIs still points at a
// library record, either by exact URI form or by trailing item key.
func resolves(item citation.Item, idx *match.Index) bool {
	if len(item.URIs) == 0 {
		return false
	}
	for _, uri := range item.URIs {
		if _, ok := idx.LookupURI(uri); ok {
			return true
		}
	}
	if item.ItemKey != "" {
		if _, ok := idx.LookupKey(item.ItemKey); ok {
			return true
		}
	}
	return false
}

// Replacements builds the span substitutions for every matched orphan.
// Each locatable stale URI of a matched item is independently replaced
// with the item's canonical URI; unmatched orphans keep their stale URIs,
// and unlocated URIs are skipped rather than failing the rewrite.
func (r *Result) Replacements() []docx.Replacement {
	var reps []docx.Replacement
	for _, out := range r.Outcomes {
		if out.Status != citation.StatusOrphaned || out.NewURI == "" {
			continue
		}
		for j, uri := range out.OriginalURIs {
			if uri == "" || uri == out.NewURI || out.uriSpans[j].IsZero() {
				continue
			}
			reps = append(reps, docx.Replacement{
				Span:   out.uriSpans[j],
				OldURI: uri,
				NewURI: out.NewURI,
			})
		}
	}
	return reps
}

// UnlocatedCount returns the number of matched stale URIs that could not
// be located in the document text.
func (r *Result) UnlocatedCount() int {
	n := 0
	for i := range r.Outcomes {
		n += len(r.Outcomes[i].UnlocatedURIs)
	}
	return n
}

// Fix analyzes the document and writes a copy to outPath with every
// locatable stale URI of a matched orphan replaced. The output is always
// written, matches or not; it is assembled in memory and written once, and
// on any error nothing is written. Returns the result and the number of
// URI replacements made.
func Fix(doc *docx.Document, idx *match.Index, opts Options, outPath string) (*Result, int, error) {
	res, err := Analyze(doc.Body(), idx, opts)
	if err != nil {
		return nil, 0, err
	}

	reps := res.Replacements()
	body, err := docx.RewriteBody(doc.Body(), reps)
	if err != nil {
		return nil, 0, err
	}
	if err := doc.Write(outPath, body); err != nil {
		return nil, 0, err
	}
	return res, len(reps), nil
}
