package docx

import (
	"errors"
	"strings"
	"testing"
)

const newURI = "http://zotero.org/users/42/items/NEWK9999"

func TestRewriteBody_NoOpIsByteIdentical(t *testing.T) {
	body := wrapBody(zoteroField(onePayload(uriA)))

	got, err := RewriteBody(body, nil)
	if err != nil {
		t.Fatalf("RewriteBody: %v", err)
	}
	if got != body {
		t.Error("empty resolution set must yield byte-identical output")
	}
}

func TestRewriteBody_SpanLocality(t *testing.T) {
	body := wrapBody(zoteroField(onePayload(uriA)), zoteroField(onePayload(uriB)))
	fields, err := ExtractFields(body)
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}

	span := fields[0].URISpan(0, 0)
	out, err := RewriteBody(body, []Replacement{{Span: span, OldURI: uriA, NewURI: newURI}})
	if err != nil {
		t.Fatalf("RewriteBody: %v", err)
	}

	// Every byte outside the replaced span survives unchanged.
	if out[:span.Start] != body[:span.Start] {
		t.Error("bytes before the span changed")
	}
	if out[len(out)-(len(body)-span.End):] != body[span.End:] {
		t.Error("bytes after the span changed")
	}
	if !strings.Contains(out, newURI) {
		t.Error("replacement URI not present in output")
	}
	if strings.Contains(out, uriA) {
		t.Error("stale URI still present in output")
	}
	if !strings.Contains(out, uriB) {
		t.Error("unrelated field's URI was touched")
	}
}

func TestRewriteBody_MultipleReplacements(t *testing.T) {
	body := wrapBody(zoteroField(onePayload(uriA)), zoteroField(onePayload(uriB)))
	fields, err := ExtractFields(body)
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}

	reps := []Replacement{
		{Span: fields[1].URISpan(0, 0), OldURI: uriB, NewURI: newURI},
		{Span: fields[0].URISpan(0, 0), OldURI: uriA, NewURI: newURI},
	}
	out, err := RewriteBody(body, reps)
	if err != nil {
		t.Fatalf("RewriteBody: %v", err)
	}
	if strings.Contains(out, uriA) || strings.Contains(out, uriB) {
		t.Error("stale URIs remain after rewrite")
	}
	if strings.Count(out, newURI) != 2 {
		t.Errorf("replacement URI appears %d times, want 2", strings.Count(out, newURI))
	}
}

func TestRewriteBody_EncodesReplacement(t *testing.T) {
	body := wrapBody(zoteroField(onePayload(uriA)))
	fields, err := ExtractFields(body)
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}

	out, err := RewriteBody(body, []Replacement{{
		Span:   fields[0].URISpan(0, 0),
		OldURI: uriA,
		NewURI: "http://zotero.org/users/42/items/X?a=1&b=2",
	}})
	if err != nil {
		t.Fatalf("RewriteBody: %v", err)
	}
	if !strings.Contains(out, "a=1&amp;b=2") {
		t.Error("replacement text was not entity-encoded")
	}
}

func TestRewriteBody_InconsistencyOnWrongContent(t *testing.T) {
	body := wrapBody(zoteroField(onePayload(uriA)))
	fields, err := ExtractFields(body)
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}

	_, err = RewriteBody(body, []Replacement{{
		Span:   fields[0].URISpan(0, 0),
		OldURI: uriB, // span actually holds uriA
		NewURI: newURI,
	}})
	if !errors.Is(err, ErrRewriteInconsistency) {
		t.Errorf("got %v, want ErrRewriteInconsistency", err)
	}
}

func TestRewriteBody_InconsistencyOnZeroSpan(t *testing.T) {
	body := wrapBody(zoteroField(onePayload(uriA)))

	_, err := RewriteBody(body, []Replacement{{OldURI: uriA, NewURI: newURI}})
	if !errors.Is(err, ErrRewriteInconsistency) {
		t.Errorf("got %v, want ErrRewriteInconsistency", err)
	}
}

func TestRewriteBody_InconsistencyOnOverlap(t *testing.T) {
	body := wrapBody(zoteroField(onePayload(uriA)))
	fields, err := ExtractFields(body)
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}

	span := fields[0].URISpan(0, 0)
	overlapping := Span{Start: span.Start + 1, End: span.End + 1}
	_, err = RewriteBody(body, []Replacement{
		{Span: span, OldURI: uriA, NewURI: newURI},
		{Span: overlapping, OldURI: uriA, NewURI: newURI},
	})
	if !errors.Is(err, ErrRewriteInconsistency) {
		t.Errorf("got %v, want ErrRewriteInconsistency", err)
	}
}
