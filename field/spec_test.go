package field

import (
	"errors"
	"testing"
)

// TestParseSpec tests the field name grammar
func TestParseSpec(t *testing.T) {
	tests := []struct {
		raw  string
		want Spec
	}{
		{"", Spec{Kind: Skip}},
		{"a", Spec{Kind: Normal, Name: "a"}},
		{"?a", Spec{Kind: Skip, Name: "a"}},
		{"?", Spec{Kind: Skip}},
		{"+a", Spec{Kind: Append, Name: "a"}},
		{"&a", Spec{Kind: Indirect, Name: "a"}},
		{"a->", Spec{Kind: Normal, Name: "a", GreedyNext: true}},
		{"?->", Spec{Kind: Skip, GreedyNext: true}},
		{"->", Spec{Kind: Skip, GreedyNext: true}},
		{"+a/2", Spec{Kind: Append, Name: "a", Order: 2}},
		{"+a/2->", Spec{Kind: Append, Name: "a", Order: 2, GreedyNext: true}},
		{"+a->/2", Spec{Kind: Append, Name: "a", Order: 2, GreedyNext: true}},
		{"a/2", Spec{Kind: Normal, Name: "a"}},                        // order ignored
		{"&a/7->", Spec{Kind: Indirect, Name: "a", GreedyNext: true}}, // order ignored
		{"a/b", Spec{Kind: Normal, Name: "a/b"}},
		{"path/", Spec{Kind: Normal, Name: "path/"}},
		{"@timestamp", Spec{Kind: Normal, Name: "@timestamp"}},
		{"[nested][key]", Spec{Kind: Normal, Name: "[nested][key]"}},
		{"a-b", Spec{Kind: Normal, Name: "a-b"}},
		{"+a/065535", Spec{Kind: Append, Name: "a", Order: 65535}},
		{"+a/65536", Spec{Kind: Append, Name: "a", Order: MaxOrder}},
		{"+a/70000", Spec{Kind: Append, Name: "a", Order: MaxOrder}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSpec(tt.raw)
			if err != nil {
				t.Fatalf("ParseSpec(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseSpec(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

// TestParseSpecErrors tests rejected field specs
func TestParseSpecErrors(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"+&a", ErrMixedPrefix},
		{"&+a", ErrMixedPrefix},
		{"+&", ErrMixedPrefix},
		{"+", ErrPrefixWithoutName},
		{"&", ErrPrefixWithoutName},
		{"+/2", ErrPrefixWithoutName},
		{"&->", ErrPrefixWithoutName},
		{"+->/1", ErrPrefixWithoutName},
		{"+a/99999999999999999999999", ErrInvalidOrder},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParseSpec(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseSpec(%q) error = %v, want %v", tt.raw, err, tt.want)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if se.Spec != tt.raw {
				t.Errorf("SyntaxError.Spec = %q, want %q", se.Spec, tt.raw)
			}
		})
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	_, err := ParseSpec("+")
	want := "field %{+}: field cannot be a prefix on its own without further text"
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}

// TestSpecString checks that rendering and parsing agree
func TestSpecString(t *testing.T) {
	for _, raw := range []string{"a", "?a", "+a", "&a", "a->", "+a/3", "+a/3->", ""} {
		spec, err := ParseSpec(raw)
		if err != nil {
			t.Fatalf("ParseSpec(%q): %v", raw, err)
		}
		if spec.String() != raw {
			t.Errorf("ParseSpec(%q).String() = %q", raw, spec.String())
		}
	}
}
