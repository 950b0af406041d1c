// Package report renders human-readable views of a reconciliation result.
package report

import (
	"fmt"
	"strings"

	"github.com/matsen/relink/internal/citation"
	"github.com/matsen/relink/internal/relink"
)

const ruleWidth = 78

// Render produces the full text report for one run.
func Render(res *relink.Result, threshold int) string {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)
	thin := strings.Repeat("-", ruleWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "ZOTERO CITATION RELINK REPORT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Citation fields in document: %d\n", res.TotalFields)
	fmt.Fprintf(&b, "Citation items:              %d\n", res.TotalItems)
	fmt.Fprintf(&b, "Orphaned items:              %d\n", res.Orphaned)
	if n := len(res.ParseErrors); n > 0 {
		fmt.Fprintf(&b, "Unparseable fields:          %d\n", n)
	}
	fmt.Fprintln(&b)

	for _, pe := range res.ParseErrors {
		fmt.Fprintf(&b, "[PARSE ERROR] field %d: %s\n", pe.FieldIndex, pe.Err)
	}
	if len(res.ParseErrors) > 0 {
		fmt.Fprintln(&b)
	}

	if res.Orphaned == 0 {
		fmt.Fprintln(&b, "[OK] No orphaned citations found. All citations are linked to the library.")
		return b.String()
	}

	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, "ORPHANED CITATIONS AND POTENTIAL MATCHES")
	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b)

	for i := range res.Outcomes {
		out := &res.Outcomes[i]
		if out.Status != citation.StatusOrphaned {
			continue
		}
		item := out.Item()

		fmt.Fprintf(&b, "[%d.%d] ORPHANED CITATION:\n", out.FieldIndex+1, out.ItemIndex+1)
		fmt.Fprintf(&b, "    Title:   %s\n", orNone(item.Title, "(no title)"))
		fmt.Fprintf(&b, "    Authors: %s\n", orNone(item.AuthorString(), "(no authors)"))
		fmt.Fprintf(&b, "    Year:    %s\n", orNone(yearString(item.Year), "(no year)"))
		if item.DOI != "" {
			fmt.Fprintf(&b, "    DOI:     %s\n", item.DOI)
		}
		fmt.Fprintln(&b)

		if rec := out.MatchedRecord(); rec != nil {
			fmt.Fprintf(&b, "    [MATCH] FOUND (%s, score: %d%%):\n", out.Match.Method, out.Match.Score)
			fmt.Fprintf(&b, "      Library Key: %s\n", rec.Key)
			fmt.Fprintf(&b, "      Title:       %s\n", orNone(rec.Title, "(no title)"))
			fmt.Fprintf(&b, "      Authors:     %s\n", orNone(strings.Join(rec.Authors, " "), "(no authors)"))
			fmt.Fprintf(&b, "      Year:        %s\n", orNone(yearString(rec.Year), "(no year)"))
		} else {
			fmt.Fprintf(&b, "    [NONE] NO MATCH FOUND (threshold: %d%%)\n", threshold)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, "SUMMARY")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Matches found:     %d\n", res.Matched)
	fmt.Fprintf(&b, "No matches found:  %d\n", res.Unmatched)

	if res.Matched > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "To relink these citations:")
		fmt.Fprintln(&b, "1. Run 'relink fix' to generate a document with updated links")
		fmt.Fprintln(&b, "2. Or update citations manually in Word using the Zotero plugin")
	}
	return b.String()
}

func orNone(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return fmt.Sprintf("%d", y)
}
