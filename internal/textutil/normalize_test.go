package textutil

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Berserk", "berserk"},
		{"strips punctuation", "Dr. STONE!!", "dr stone"},
		{"strips parenthetical", "Uzumaki (Spiral into Horror)", "uzumaki"},
		{"strips square brackets", "Monster [Perfect Edition]", "monster"},
		{"strips cjk brackets", "チェンソーマン【新装版】", "チェンソーマン"},
		{"collapses whitespace", "  One   Piece  ", "one piece"},
		{"folds full-width", "ＢＬＥＡＣＨ", "bleach"},
		{"keeps cjk", "鋼の錬金術師", "鋼の錬金術師"},
		{"hyphen splits tokens", "Yu-Gi-Oh!", "yu gi oh"},
		{"digits survive", "86--EIGHTY-SIX", "86 eighty six"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTitle(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitleTotal(t *testing.T) {
	// Input made entirely of stripped characters falls back to the trimmed
	// lowercase original instead of vanishing.
	got := NormalizeTitle("(...)")
	if got == "" {
		t.Fatal("NormalizeTitle returned empty string for punctuation-only input")
	}
}

func TestNormalizeTitleIdempotent(t *testing.T) {
	inputs := []string{"Fullmetal Alchemist", "ベルセルク", "20th Century Boys (Vol. 1)"}
	for _, input := range inputs {
		once := NormalizeTitle(input)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Errorf("NormalizeTitle not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
