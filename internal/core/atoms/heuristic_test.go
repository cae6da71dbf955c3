package atoms

import (
	"context"
	"testing"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

func TestHeuristicBuildClassifiesBlocks(t *testing.T) {
	blocks := []domain.TextBlock{
		{Text: "Deep Metric Learning", FontSize: 20},
		{Text: "Abstract. We study metric spaces.", FontSize: 10},
		{Text: "We propose a contrastive objective for retrieval.", FontSize: 10},
		{Text: "“Simplicity is the soul of efficiency.”", FontSize: 10},
		{Text: "[1] Smith, J. Metric learning revisited.", FontSize: 10},
		{Text: "Evaluation Protocol", FontSize: 10, Bold: true},
	}

	builder := NewHeuristicBuilder()
	result, err := builder.Build(context.Background(), "doc-1", blocks, bodyProfile())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantTypes := []domain.AtomType{
		domain.AtomSectionHeader, // largest font
		domain.AtomSectionHeader, // abstract lead
		domain.AtomParagraph,
		domain.AtomQuote,
		domain.AtomCitation,
		domain.AtomSectionHeader, // short bold
	}
	for i, want := range wantTypes {
		if result.Atoms[i].Type != want {
			t.Fatalf("block %d type = %s, want %s (%q)", i, result.Atoms[i].Type, want, blocks[i].Text)
		}
	}
	if len(result.Flow) != len(blocks) {
		t.Fatalf("flow length %d, want %d", len(result.Flow), len(blocks))
	}
	if result.Title != "Deep Metric Learning" {
		t.Fatalf("unexpected title %q", result.Title)
	}
}

func TestHeuristicBuildEmptyBlocks(t *testing.T) {
	_, err := NewHeuristicBuilder().Build(context.Background(), "doc-1", nil, bodyProfile())
	if err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestExtractTopicsFiltersStopWords(t *testing.T) {
	topics := extractTopics("Introduction to Neural Architecture Search with transformers and however")
	var foundPhrase, foundWord bool
	for _, topic := range topics {
		switch topic {
		case "Neural Architecture Search":
			foundPhrase = true
		case "transformers":
			foundWord = true
		case "however", "Introduction":
			t.Fatalf("stop word %q survived filtering", topic)
		}
	}
	if !foundPhrase || !foundWord {
		t.Fatalf("expected phrase and significant word, got %v", topics)
	}
}

func TestExtractEntitiesSkipsSentenceStarts(t *testing.T) {
	entities := extractEntities("Random Forests beat baselines. We compared them with BERT and Gradient Boosting.")
	has := func(e string) bool {
		for _, x := range entities {
			if x == e {
				return true
			}
		}
		return false
	}
	if has("Random Forests") {
		t.Fatalf("sentence-start phrase kept as entity: %v", entities)
	}
	if !has("BERT") || !has("Gradient Boosting") {
		t.Fatalf("expected BERT and Gradient Boosting, got %v", entities)
	}
}

func TestRelateEntitiesCapped(t *testing.T) {
	rels := relateEntities([]string{"A1", "B2", "C3", "D4"})
	if len(rels) != maxEntityRelations {
		t.Fatalf("expected %d relations, got %d", maxEntityRelations, len(rels))
	}
	for _, r := range rels {
		if r.Relation != "co_occurs" {
			t.Fatalf("unexpected relation %q", r.Relation)
		}
	}
}

func TestHeuristicSummarizeOffline(t *testing.T) {
	blocks := []domain.TextBlock{
		{Text: "First sentence here. Second sentence follows. Third one too. Fourth closes."},
	}
	summaries, err := NewHeuristicBuilder().Summarize(context.Background(), "t", blocks, bodyProfile())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summaries.Sentence == "" || summaries.Paragraph == "" || summaries.Full == "" {
		t.Fatalf("expected all summary levels, got %+v", summaries)
	}
	if summaries.Sentence != "First sentence here." {
		t.Fatalf("unexpected sentence summary %q", summaries.Sentence)
	}
}

func TestHeuristicDescribeFigureIsEmpty(t *testing.T) {
	desc, err := NewHeuristicBuilder().DescribeFigure(context.Background(), domain.ImageRecord{Data: []byte{1}})
	if err != nil {
		t.Fatalf("DescribeFigure() error = %v", err)
	}
	if desc != "" {
		t.Fatalf("offline strategy must not describe figures, got %q", desc)
	}
}
