package morph

import (
	"errors"
	"testing"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want State
	}{
		{"TREE", Tree},
		{"tree", Tree},
		{"Scatter", Scatter},
		{"love", Love},
	}
	for _, tt := range tests {
		got, err := ParseState(tt.in)
		if err != nil {
			t.Fatalf("ParseState(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseState(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseState("heart"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("expected ErrUnknownState, got %v", err)
	}
}

func TestStateText(t *testing.T) {
	for _, s := range States() {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back State
		if err := back.UnmarshalText(b); err != nil {
			t.Fatal(err)
		}
		if back != s {
			t.Errorf("round trip %v -> %v", s, back)
		}
	}

	if _, err := State(9).MarshalText(); err == nil {
		t.Error("expected error for invalid state")
	}
	if State(9).String() != "State(9)" {
		t.Errorf("unexpected string %q", State(9).String())
	}
}
