package docx

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// The entity transform is the single reversible escaping layer shared by
// the extractor and the rewriter: payloads are decoded on read, and any
// replacement text is re-encoded with encodeEntities before being written
// back, so span-local edits never drift from the document's encoding.

// decodeEntities resolves the XML character entities in s.
func decodeEntities(s string) string {
	decoded, _, _ := decodeEntitiesMapped(s, 0)
	return decoded
}

// decodeEntitiesMapped decodes s and records, for every byte of the
// decoded output, the half-open raw byte range [starts[k], ends[k]) in the
// original text (offset by rawBase) that produced it.
func decodeEntitiesMapped(s string, rawBase int) (decoded string, starts, ends []int) {
	var b strings.Builder
	b.Grow(len(s))
	starts = make([]int, 0, len(s))
	ends = make([]int, 0, len(s))

	i := 0
	for i < len(s) {
		if s[i] != '&' {
			b.WriteByte(s[i])
			starts = append(starts, rawBase+i)
			ends = append(ends, rawBase+i+1)
			i++
			continue
		}

		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			b.WriteByte(s[i])
			starts = append(starts, rawBase+i)
			ends = append(ends, rawBase+i+1)
			i++
			continue
		}

		raw := s[i : i+semi+1]
		r, ok := resolveEntity(raw)
		if !ok {
			b.WriteByte(s[i])
			starts = append(starts, rawBase+i)
			ends = append(ends, rawBase+i+1)
			i++
			continue
		}

		var enc [utf8.UTFMax]byte
		n := utf8.EncodeRune(enc[:], r)
		b.Write(enc[:n])
		for k := 0; k < n; k++ {
			starts = append(starts, rawBase+i)
			ends = append(ends, rawBase+i+len(raw))
		}
		i += len(raw)
	}
	return b.String(), starts, ends
}

// resolveEntity maps one full entity reference ("&amp;") to its rune.
func resolveEntity(ref string) (rune, bool) {
	body := ref[1 : len(ref)-1] // strip & and ;
	switch body {
	case "amp":
		return '&', true
	case "lt":
		return '<', true
	case "gt":
		return '>', true
	case "quot":
		return '"', true
	case "apos":
		return '\'', true
	}
	if strings.HasPrefix(body, "#") {
		numeric := body[1:]
		base := 10
		if strings.HasPrefix(numeric, "x") || strings.HasPrefix(numeric, "X") {
			numeric = numeric[1:]
			base = 16
		}
		n, err := strconv.ParseInt(numeric, base, 32)
		if err != nil || n < 0 || !utf8.ValidRune(rune(n)) {
			return 0, false
		}
		return rune(n), true
	}
	return 0, false
}

var entityEncoder = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// encodeEntities escapes text for insertion into XML character data.
func encodeEntities(s string) string {
	return entityEncoder.Replace(s)
}
