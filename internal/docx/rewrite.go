package docx

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrRewriteInconsistency means a replacement's span no longer holds the
// expected original content. The whole rewrite aborts rather than emit a
// corrupted document.
var ErrRewriteInconsistency = errors.New("rewrite inconsistency")

// Replacement substitutes one URI occurrence inside its recorded span.
type Replacement struct {
	Span   Span
	OldURI string // decoded original URI expected at Span
	NewURI string // decoded replacement; re-encoded on write
}

// RewriteBody applies all replacements to the raw body and returns the new
// text. Every span is verified against its expected original content
// before any byte is produced; with no replacements the body is returned
// unchanged, byte for byte.
func RewriteBody(body string, reps []Replacement) (string, error) {
	if len(reps) == 0 {
		return body, nil
	}

	sorted := make([]Replacement, len(reps))
	copy(sorted, reps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	for i, r := range sorted {
		if r.Span.IsZero() || r.Span.Start < 0 || r.Span.End > len(body) || r.Span.Start >= r.Span.End {
			return "", fmt.Errorf("%w: unlocated span for %q", ErrRewriteInconsistency, r.OldURI)
		}
		if i > 0 && r.Span.Start < sorted[i-1].Span.End {
			return "", fmt.Errorf("%w: overlapping spans at byte %d", ErrRewriteInconsistency, r.Span.Start)
		}
		if decodeEntities(body[r.Span.Start:r.Span.End]) != r.OldURI {
			return "", fmt.Errorf("%w: span at byte %d does not contain %q", ErrRewriteInconsistency, r.Span.Start, r.OldURI)
		}
	}

	var b strings.Builder
	b.Grow(len(body))
	last := 0
	for _, r := range sorted {
		b.WriteString(body[last:r.Span.Start])
		b.WriteString(encodeEntities(r.NewURI))
		last = r.Span.End
	}
	b.WriteString(body[last:])
	return b.String(), nil
}
