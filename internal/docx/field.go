package docx

import (
	"fmt"
	"strings"

	"github.com/matsen/relink/internal/citation"
)

// Span is a half-open byte range into the raw document body.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsZero reports whether the span was never located.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// FieldOccurrence is one Zotero citation field found in the body, with
// enough positional information to rewrite its URIs in place.
type FieldOccurrence struct {
	// Citation is the parsed payload, nil when ParseErr is set.
	Citation *citation.Field

	// ParseErr records a payload that failed to decode. The field is
	// reported, not dropped, and extraction continues.
	ParseErr error

	// Span bounds the field's instruction text in the raw body, from the
	// first instrText content byte to the last. Every rewrite for this
	// field falls inside it.
	Span Span

	// uriSpans[i][j] is the raw span of Citation.Items[i].URIs[j], zero
	// when the URI could not be located as a contiguous raw region (for
	// example when Word split it across runs).
	uriSpans [][]Span
}

// URISpan returns the raw span of item i's j-th URI.
func (f *FieldOccurrence) URISpan(i, j int) Span {
	if i < len(f.uriSpans) && j < len(f.uriSpans[i]) {
		return f.uriSpans[i][j]
	}
	return Span{}
}

// textPart is the content range of one w:instrText element.
type textPart struct {
	start, end int
}

// ExtractFields scans the raw body for Zotero complex fields. Word wraps
// a field as fldChar begin / instrText runs / fldChar end; the instruction
// text may be split across several runs and is entity-decoded before the
// payload is parsed. Returns ErrNoFields when the document contains no
// Zotero citation fields at all.
func ExtractFields(body string) ([]FieldOccurrence, error) {
	var fields []FieldOccurrence
	var parts []textPart
	depth := 0
	cursor := 0

	for cursor < len(body) {
		tagStart, kind := nextFieldTag(body, cursor)
		if tagStart < 0 {
			break
		}
		tagClose := strings.IndexByte(body[tagStart:], '>')
		if tagClose < 0 {
			return nil, fmt.Errorf("unterminated tag at byte %d", tagStart)
		}
		tagEnd := tagStart + tagClose + 1

		switch kind {
		case "fldChar":
			switch fldCharType(body[tagStart:tagEnd]) {
			case "begin":
				depth++
				if depth == 1 {
					parts = parts[:0]
				}
			case "end":
				if depth > 0 {
					depth--
					if depth == 0 && len(parts) > 0 {
						if occ, ok := buildField(body, parts, len(fields)); ok {
							fields = append(fields, occ)
						}
					}
				}
			}
			cursor = tagEnd

		case "instrText":
			if strings.HasSuffix(body[tagStart:tagEnd], "/>") {
				cursor = tagEnd
				continue
			}
			contentEnd := strings.Index(body[tagEnd:], "</w:instrText>")
			if contentEnd < 0 {
				return nil, fmt.Errorf("unterminated w:instrText at byte %d", tagStart)
			}
			if depth > 0 {
				parts = append(parts, textPart{start: tagEnd, end: tagEnd + contentEnd})
			}
			cursor = tagEnd + contentEnd + len("</w:instrText>")
		}
	}

	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	return fields, nil
}

// nextFieldTag finds the next fldChar or instrText opening tag at or after
// cursor. Returns (-1, "") when neither occurs.
func nextFieldTag(body string, cursor int) (int, string) {
	fc := indexTag(body, cursor, "<w:fldChar")
	it := indexTag(body, cursor, "<w:instrText")
	switch {
	case fc < 0 && it < 0:
		return -1, ""
	case it < 0 || (fc >= 0 && fc < it):
		return fc, "fldChar"
	default:
		return it, "instrText"
	}
}

// indexTag finds prefix at or after cursor, requiring a tag-name boundary
// so "<w:instrText" never matches inside a longer element name.
func indexTag(body string, cursor int, prefix string) int {
	for from := cursor; from < len(body); {
		i := strings.Index(body[from:], prefix)
		if i < 0 {
			return -1
		}
		pos := from + i
		next := pos + len(prefix)
		if next >= len(body) {
			return -1
		}
		switch body[next] {
		case ' ', '\t', '\r', '\n', '/', '>':
			return pos
		}
		from = next
	}
	return -1
}

// fldCharType pulls the w:fldCharType attribute value out of a fldChar tag.
func fldCharType(tag string) string {
	const attr = `w:fldCharType="`
	i := strings.Index(tag, attr)
	if i < 0 {
		return ""
	}
	rest := tag[i+len(attr):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return ""
	}
	return rest[:j]
}

// buildField decodes a completed field's instruction text and parses the
// citation payload. Returns ok=false for fields that are not Zotero
// citations at all.
func buildField(body string, parts []textPart, index int) (FieldOccurrence, bool) {
	var code strings.Builder
	var starts, ends []int
	for _, p := range parts {
		decoded, s, e := decodeEntitiesMapped(body[p.start:p.end], p.start)
		code.WriteString(decoded)
		starts = append(starts, s...)
		ends = append(ends, e...)
	}
	text := code.String()

	if !strings.Contains(text, citation.FieldMarker) {
		return FieldOccurrence{}, false
	}

	occ := FieldOccurrence{
		Span: Span{Start: parts[0].start, End: parts[len(parts)-1].end},
	}

	parsed, err := citation.ParseFieldCode(text, index)
	if err != nil {
		occ.ParseErr = err
		return occ, true
	}
	occ.Citation = parsed
	occ.uriSpans = locateURISpans(body, text, starts, ends, parsed)
	return occ, true
}

// locateURISpans maps each item URI back to its raw byte range. URIs
// appear in the payload in item order, so a moving cursor finds each
// occurrence; the mapped raw region must decode back to the URI exactly,
// otherwise the span is left zero and the URI is treated as unrewritable.
func locateURISpans(body, text string, starts, ends []int, field *citation.Field) [][]Span {
	spans := make([][]Span, len(field.Items))
	from := 0
	for i, item := range field.Items {
		spans[i] = make([]Span, len(item.URIs))
		for j, uri := range item.URIs {
			if uri == "" {
				continue
			}
			p := strings.Index(text[from:], uri)
			if p >= 0 {
				p += from
			} else {
				p = strings.Index(text, uri)
			}
			if p < 0 {
				continue
			}
			rawStart := starts[p]
			rawEnd := ends[p+len(uri)-1]
			if decodeEntities(body[rawStart:rawEnd]) != uri {
				continue
			}
			spans[i][j] = Span{Start: rawStart, End: rawEnd}
			from = p + len(uri)
		}
	}
	return spans
}
