package merge

import (
	"testing"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

func topicAtom(graphID string, n int, topics ...string) domain.KnowledgeAtom {
	return domain.KnowledgeAtom{
		ID:     graphID + "-a" + string(rune('0'+n)),
		Type:   domain.AtomParagraph,
		Topics: topics,
	}
}

func TestRankThemesFiltersStopWordsAndShortWords(t *testing.T) {
	a := sourceGraph("src-a",
		topicAtom("src-a", 0, "introduction", "ai", "transformer models"),
		topicAtom("src-a", 1, "transformer models"),
	)
	b := sourceGraph("src-b",
		topicAtom("src-b", 0, "introduction", "ai", "transformer models"),
	)

	kg := Rebuild("proj-1", []*domain.DocumentGraph{a, b})

	if len(kg.KeyThemes) != 1 {
		t.Fatalf("expected a single theme, got %+v", kg.KeyThemes)
	}
	theme := kg.KeyThemes[0]
	if theme.Topic != "transformer models" {
		t.Fatalf("unexpected theme %q", theme.Topic)
	}
	if theme.AtomCount != 3 {
		t.Fatalf("expected 3 distinct atoms, got %d", theme.AtomCount)
	}
	if len(theme.SourceIDs) != 2 {
		t.Fatalf("expected 2 sources, got %v", theme.SourceIDs)
	}
}

func TestRankThemesSingleSourceProjectRelaxesMinimum(t *testing.T) {
	a := sourceGraph("src-a",
		topicAtom("src-a", 0, "graph algorithms"),
		topicAtom("src-a", 1, "graph algorithms"),
	)

	kg := Rebuild("proj-1", []*domain.DocumentGraph{a})
	if len(kg.KeyThemes) != 1 || kg.KeyThemes[0].Topic != "graph algorithms" {
		t.Fatalf("expected single-source theme, got %+v", kg.KeyThemes)
	}
}

func TestRankThemesRequiresTwoSources(t *testing.T) {
	a := sourceGraph("src-a",
		topicAtom("src-a", 0, "quantum computing"),
		topicAtom("src-a", 1, "quantum computing"),
	)
	b := sourceGraph("src-b",
		topicAtom("src-b", 0, "something else entirely"),
	)

	kg := Rebuild("proj-1", []*domain.DocumentGraph{a, b})
	for _, theme := range kg.KeyThemes {
		if theme.Topic == "quantum computing" {
			t.Fatalf("single-source topic promoted to theme: %+v", theme)
		}
	}
}

func TestRankThemesOrderedByAtomCount(t *testing.T) {
	a := sourceGraph("src-a",
		topicAtom("src-a", 0, "language models", "dataset curation"),
		topicAtom("src-a", 1, "language models"),
	)
	b := sourceGraph("src-b",
		topicAtom("src-b", 0, "language models", "dataset curation"),
	)

	kg := Rebuild("proj-1", []*domain.DocumentGraph{a, b})
	if len(kg.KeyThemes) != 2 {
		t.Fatalf("expected two themes, got %+v", kg.KeyThemes)
	}
	if kg.KeyThemes[0].Topic != "language models" || kg.KeyThemes[1].Topic != "dataset curation" {
		t.Fatalf("themes out of order: %+v", kg.KeyThemes)
	}
}

func TestEligibleTheme(t *testing.T) {
	cases := []struct {
		topic string
		want  bool
	}{
		{"Abstract", false},
		{"graph", false},
		{"graphs", true},
		{"ml ops", true},
		{"Results", false},
	}
	for _, tc := range cases {
		if got := eligibleTheme(tc.topic); got != tc.want {
			t.Fatalf("eligibleTheme(%q) = %v, want %v", tc.topic, got, tc.want)
		}
	}
}
