package report

import (
	"fmt"
	"strings"

	"github.com/matsen/relink/internal/citation"
	"github.com/matsen/relink/internal/relink"
)

// RenderGuide produces the manual relinking guide: step-by-step
// instructions for fixing each orphan in Word with the Zotero plugin.
func RenderGuide(res *relink.Result) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&b, "MANUAL RELINKING GUIDE")
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "For each orphaned citation below, follow these steps in Word:")
	fmt.Fprintln(&b, "1. Click on the citation in your document")
	fmt.Fprintln(&b, "2. Click 'Add/Edit Citation' in the Zotero toolbar")
	fmt.Fprintln(&b, "3. Delete the orphaned item (click X on the bubble)")
	fmt.Fprintln(&b, "4. Search for and add the matching item from your library")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, strings.Repeat("-", 60))
	fmt.Fprintln(&b)

	for i := range res.Outcomes {
		out := &res.Outcomes[i]
		if out.Status != citation.StatusOrphaned {
			continue
		}
		item := out.Item()

		fmt.Fprintf(&b, "ORPHANED: %s\n", orNone(item.Title, "(no title)"))
		fmt.Fprintf(&b, "  Authors: %s\n", item.AuthorString())
		fmt.Fprintf(&b, "  Year: %s\n", yearString(item.Year))

		if rec := out.MatchedRecord(); rec != nil {
			fmt.Fprintf(&b, "  -> SEARCH FOR: %q\n", rec.Title)
			fmt.Fprintf(&b, "    Library Key: %s\n", rec.Key)
		} else {
			fmt.Fprintln(&b, "  -> NO AUTOMATIC MATCH - Search manually")
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
