package citation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldMarker identifies a Zotero citation field instruction.
const FieldMarker = "ADDIN ZOTERO_ITEM CSL_CITATION"

// itemKeyPattern matches the item key at the end of a Zotero item URI.
var itemKeyPattern = regexp.MustCompile(`/items/([A-Za-z0-9]+)$`)

// yearPattern matches a four-digit year anywhere in a date string.
var yearPattern = regexp.MustCompile(`\d{4}`)

// FlexibleString can unmarshal from either string or number JSON values.
// CSL payloads are loosely typed: years and date parts arrive as either.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// cslPayload mirrors the CSL_CITATION JSON carried in a field instruction.
type cslPayload struct {
	CitationItems []cslItem `json:"citationItems"`
}

type cslItem struct {
	URIs     []string    `json:"uris"`
	URI      []string    `json:"uri"` // legacy spelling used by older plugins
	ItemData cslItemData `json:"itemData"`
}

type cslItemData struct {
	Title  string       `json:"title"`
	Author []cslCreator `json:"author"`
	Issued *cslDate     `json:"issued"`
	Date   string       `json:"date"`
	DOI    string       `json:"DOI"`
	ISBN   string       `json:"ISBN"`
}

type cslCreator struct {
	Family  string `json:"family"`
	Given   string `json:"given"`
	Literal string `json:"literal"`
}

type cslDate struct {
	DateParts [][]FlexibleString `json:"date-parts"`
	Raw       string             `json:"raw"`
}

// ParseFieldCode parses a Zotero field instruction into a Field.
// The code must contain the CSL_CITATION marker followed by a JSON payload.
// Returns (nil, nil) when the code is not a Zotero citation field at all;
// returns an error when the marker is present but the payload is malformed.
func ParseFieldCode(code string, index int) (*Field, error) {
	pos := strings.Index(code, FieldMarker)
	if pos < 0 {
		return nil, nil
	}

	rest := code[pos+len(FieldMarker):]
	start := strings.IndexByte(rest, '{')
	end := strings.LastIndexByte(rest, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("citation field %d: no JSON payload after marker", index)
	}

	var payload cslPayload
	if err := json.Unmarshal([]byte(rest[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("citation field %d: parsing payload: %w", index, err)
	}

	field := &Field{Index: index}
	for _, ci := range payload.CitationItems {
		field.Items = append(field.Items, parseItem(ci))
	}
	return field, nil
}

func parseItem(ci cslItem) Item {
	item := Item{
		URIs:  ci.URIs,
		Title: ci.ItemData.Title,
		DOI:   ci.ItemData.DOI,
		ISBN:  ci.ItemData.ISBN,
	}
	if len(item.URIs) == 0 {
		item.URIs = ci.URI
	}

	for _, uri := range item.URIs {
		if m := itemKeyPattern.FindStringSubmatch(uri); m != nil {
			item.ItemKey = m[1]
			break
		}
	}

	for _, c := range ci.ItemData.Author {
		switch {
		case c.Family != "":
			item.Authors = append(item.Authors, c.Family)
		case c.Literal != "":
			item.Authors = append(item.Authors, c.Literal)
		}
	}

	item.Year = parseYear(ci.ItemData)
	return item
}

// parseYear extracts the publication year, preferring issued.date-parts and
// falling back to the free-form date string.
func parseYear(d cslItemData) int {
	if d.Issued != nil {
		if len(d.Issued.DateParts) > 0 && len(d.Issued.DateParts[0]) > 0 {
			if y, err := strconv.Atoi(d.Issued.DateParts[0][0].String()); err == nil && y > 0 {
				return y
			}
		}
		if m := yearPattern.FindString(d.Issued.Raw); m != "" {
			y, _ := strconv.Atoi(m)
			return y
		}
	}
	if m := yearPattern.FindString(d.Date); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	return 0
}
