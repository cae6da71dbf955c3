package zoning

import (
	"testing"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

func TestFindReferencesHeaderOnlySearchesTail(t *testing.T) {
	texts := make([]string, 20)
	for i := range texts {
		texts[i] = "prose"
	}
	// A references header in the first 70% must not count.
	texts[2] = "References"
	if got := findReferencesHeader(textBlocks(texts...)); got != -1 {
		t.Fatalf("early references header matched at %d", got)
	}

	texts[18] = "Bibliography"
	if got := findReferencesHeader(textBlocks(texts...)); got != 18 {
		t.Fatalf("expected tail header at 18, got %d", got)
	}
}

func TestHasDatelineVariants(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"WASHINGTON — Lawmakers reached a deal on Friday.", true},
		{"NEW YORK, N.Y. - Markets closed higher.", true},
		{"January 5, 2026 — the storm made landfall.", true},
		{"Plain opening sentence without a dateline.", false},
	}
	for _, tc := range cases {
		got := hasDateline([]domain.TextBlock{{Text: tc.text}})
		if got != tc.want {
			t.Fatalf("hasDateline(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestFindBylineWindow(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = "prose"
	}
	texts[7] = "By Dana Wu"

	if got := findByline(textBlocks(texts...), bylineSearchWindow); got != -1 {
		t.Fatalf("byline outside window matched at %d", got)
	}
	if got := findByline(textBlocks(texts...), len(texts)); got != 7 {
		t.Fatalf("expected byline at 7, got %d", got)
	}
}

func TestCountEquationHits(t *testing.T) {
	blocks := textBlocks(
		"We minimize \\sum over samples with \\alpha fixed.",
		"Let e = m and c = d hold.",
	)
	if got := countEquationHits(blocks); got != 4 {
		t.Fatalf("expected 4 equation hits, got %d", got)
	}
}

func TestHasDOITokenArxiv(t *testing.T) {
	if !hasDOIToken(textBlocks("Preprint available at arXiv: 2406.01234.")) {
		t.Fatalf("arXiv identifier should count as a DOI-class token")
	}
}
