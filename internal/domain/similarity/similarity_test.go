package similarity

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  Hello,   World!  ":      "hello world",
		"It's (really) ok; fine.":  "it's really ok fine",
		"Why?":                     "why?",
		"a-b_c":                    "abc",
		"":                         "",
		"\tTabs\nand\r\nnewlines ": "tabs and newlines",
	}
	for in, want := range tests {
		got := Normalize(in)
		if got != want {
			t.Fatalf("Normalize(%q)=%q, want %q", in, got, want)
		}
		if again := Normalize(got); again != got {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, got, again)
		}
	}
}

func TestWord(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "mat", "mat", 1},
		{"one edit", "cat", "bat", 1 - 1.0/3},
		{"length gap", "a", "programming", 0.1},
		{"both empty", "", "", 1},
		{"totally different", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Word(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Word(%q,%q)=%v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestString_IdentityAndRange(t *testing.T) {
	inputs := []string{"love programming", "the cat sat on the mat", "a", "typescript"}
	for _, a := range inputs {
		if got := String(a, a); got != 1 {
			t.Fatalf("String(%q,%q)=%v, want 1", a, a, got)
		}
		for _, b := range inputs {
			got := String(a, b)
			if got < 0 || got > 1 {
				t.Fatalf("String(%q,%q)=%v out of range", a, b, got)
			}
		}
	}
	if String("", "") != 1 || String("", "x") != 0 || String("x", "") != 0 {
		t.Fatalf("unexpected empty handling")
	}
}

func TestString_NearWordsAreFree(t *testing.T) {
	// "programing" vs "programming" is 1 edit out of 11 characters.
	if got := String("love programing", "love programming"); got != 1 {
		t.Fatalf("expected misspelling to be free, got %v", got)
	}
	got := String("cat sat on the mat", "the cat sat")
	if got <= 0 || got >= 1 {
		t.Fatalf("expected partial similarity, got %v", got)
	}
}

func TestContextPreservation(t *testing.T) {
	if got := ContextPreservation("love programming", "i love programming in typescript"); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected full preservation, got %v", got)
	}
	// both words present but not adjacent
	got := ContextPreservation("love typescript", "i love programming in typescript")
	if math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("expected 0.7, got %v", got)
	}
	if got := ContextPreservation("", "anything"); got != 0 {
		t.Fatalf("expected 0 for empty query, got %v", got)
	}
	if got := ContextPreservation("hello", "hello there"); math.Abs(got-1) > 1e-9 {
		t.Fatalf("single word query should score 1, got %v", got)
	}
}

func TestCoherence_Table(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"sentence", "I was there.", 1.0},
		{"lowercase fragment", "the cat sat", 0.7},
		{"double space", "The  cat sat.", 0.8},
		{"spliced", "The cat sat ... on the mat.", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coherence(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Coherence(%q)=%v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
