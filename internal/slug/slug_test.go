package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple two words", "Hello World", "hello-world"},
		{"title with year", "Hello World 2026", "hello-world-2026"},
		{"punctuation", "Hello, World! How's it going?", "hello-world-hows-it-going"},
		{"ampersand", "Rock & Roll @ the Arena", "rock-roll-the-arena"},
		{"default title", "Landing Page - AI Generated", "landing-page-ai-generated"},
		{"tabs and newlines", "Coffee\tShop\nSite", "coffee-shop-site"},
		{"accents dropped", "Café Résumé", "caf-rsum"},
		{"only symbols", "!!! ???", ""},
		{"empty", "", ""},
		{"leading and trailing hyphens", "--hello--", "hello"},
		{"existing hyphens kept", "e-commerce store", "e-commerce-store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerate_Truncates(t *testing.T) {
	got := Generate(strings.Repeat("word ", 40))
	if len(got) > MaxLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug %q ends with a hyphen", got)
	}
}

func TestForProject(t *testing.T) {
	if got := ForProject(42, "Bean There Coffee"); got != "42-bean-there-coffee" {
		t.Errorf("got %q", got)
	}
	if got := ForProject(7, "???"); got != "project-7" {
		t.Errorf("got %q", got)
	}
}
