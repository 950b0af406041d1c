package docx

import "testing"

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"named", "a &amp; b &lt; c &gt; d &quot;e&quot; &apos;f&apos;", `a & b < c > d "e" 'f'`},
		{"decimal", "&#8212;", "—"},
		{"hex", "&#x2014;", "—"},
		{"bare ampersand", "a & b", "a & b"},
		{"unknown entity", "&bogus;", "&bogus;"},
		{"unterminated", "a &amp", "a &amp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeEntities(tt.in); got != tt.want {
				t.Errorf("decodeEntities(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeEntities(t *testing.T) {
	if got := encodeEntities(`a & b < c > d`); got != "a &amp; b &lt; c &gt; d" {
		t.Errorf("encodeEntities = %q", got)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	raw := "x &amp; y &lt; z"
	if got := encodeEntities(decodeEntities(raw)); got != raw {
		t.Errorf("round trip = %q, want %q", got, raw)
	}
}

func TestDecodeEntitiesMapped_Offsets(t *testing.T) {
	raw := "a&amp;b"
	decoded, starts, ends := decodeEntitiesMapped(raw, 10)

	if decoded != "a&b" {
		t.Fatalf("decoded = %q", decoded)
	}
	// "a" at raw 10, "&" spans raw 11..16, "b" at raw 16.
	wantStarts := []int{10, 11, 16}
	wantEnds := []int{11, 16, 17}
	for i := range wantStarts {
		if starts[i] != wantStarts[i] || ends[i] != wantEnds[i] {
			t.Errorf("byte %d: span [%d,%d), want [%d,%d)", i, starts[i], ends[i], wantStarts[i], wantEnds[i])
		}
	}

	// The mapped raw range of the decoded "&" must decode back to "&".
	if got := decodeEntities(raw[starts[1]-10 : ends[1]-10]); got != "&" {
		t.Errorf("mapped entity range decodes to %q", got)
	}
}

func TestDecodeEntitiesMapped_MultiByteRune(t *testing.T) {
	raw := "&#8212;x"
	decoded, starts, ends := decodeEntitiesMapped(raw, 0)

	if decoded != "—x" {
		t.Fatalf("decoded = %q", decoded)
	}
	// The em dash is three UTF-8 bytes, all mapping to the full entity.
	for i := 0; i < 3; i++ {
		if starts[i] != 0 || ends[i] != 7 {
			t.Errorf("byte %d: span [%d,%d), want [0,7)", i, starts[i], ends[i])
		}
	}
	if starts[3] != 7 || ends[3] != 8 {
		t.Errorf("trailing byte span [%d,%d), want [7,8)", starts[3], ends[3])
	}
}
