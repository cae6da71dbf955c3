package merge

import (
	"testing"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

func sourceGraph(id string, atoms ...domain.KnowledgeAtom) *domain.DocumentGraph {
	g := &domain.DocumentGraph{
		ID:    id,
		Title: "Title " + id,
		Atoms: map[string]domain.KnowledgeAtom{},
	}
	for _, a := range atoms {
		g.Atoms[a.ID] = a
		if a.IsTextDerived() {
			g.Flow = append(g.Flow, a.ID)
		} else {
			g.Figures = append(g.Figures, a.ID)
		}
	}
	return g
}

func TestRebuildSingleLinkPerSharedEntity(t *testing.T) {
	a := sourceGraph("src-a",
		domain.KnowledgeAtom{ID: "src-a-a000", Type: domain.AtomParagraph, Entities: []string{"BERT"}},
		domain.KnowledgeAtom{ID: "src-a-a001", Type: domain.AtomParagraph, Entities: []string{"BERT"}},
	)
	b := sourceGraph("src-b",
		domain.KnowledgeAtom{ID: "src-b-a000", Type: domain.AtomParagraph, Entities: []string{"BERT"}},
	)

	kg := Rebuild("proj-1", []*domain.DocumentGraph{a, b})

	if len(kg.CrossLinks) != 1 {
		t.Fatalf("expected exactly one cross link, got %d", len(kg.CrossLinks))
	}
	link := kg.CrossLinks[0]
	if link.ID != "link_001" {
		t.Fatalf("expected link_001, got %s", link.ID)
	}
	if link.SourceAtomID != "src-a-a000" || link.TargetAtomID != "src-b-a000" {
		t.Fatalf("link not anchored on first atoms: %+v", link)
	}
	if link.Relationship != "same_topic" || link.Confidence != 0.6 || link.CreatedBy != "auto" {
		t.Fatalf("unexpected link attributes: %+v", link)
	}
}

func TestRebuildNoLinkForSingleSourceEntity(t *testing.T) {
	a := sourceGraph("src-a",
		domain.KnowledgeAtom{ID: "src-a-a000", Type: domain.AtomParagraph, Entities: []string{"GPT"}},
		domain.KnowledgeAtom{ID: "src-a-a001", Type: domain.AtomParagraph, Entities: []string{"GPT"}},
	)

	kg := Rebuild("proj-1", []*domain.DocumentGraph{a})
	if len(kg.CrossLinks) != 0 {
		t.Fatalf("expected no cross links, got %+v", kg.CrossLinks)
	}
}

func TestRebuildLinkSequenceSpansEntities(t *testing.T) {
	a := sourceGraph("src-a",
		domain.KnowledgeAtom{ID: "src-a-a000", Type: domain.AtomParagraph, Entities: []string{"BERT", "GPT"}},
	)
	b := sourceGraph("src-b",
		domain.KnowledgeAtom{ID: "src-b-a000", Type: domain.AtomParagraph, Entities: []string{"BERT", "GPT"}},
	)

	kg := Rebuild("proj-1", []*domain.DocumentGraph{a, b})
	if len(kg.CrossLinks) != 2 {
		t.Fatalf("expected two cross links, got %d", len(kg.CrossLinks))
	}
	if kg.CrossLinks[0].ID != "link_001" || kg.CrossLinks[1].ID != "link_002" {
		t.Fatalf("link sequence not global: %s, %s", kg.CrossLinks[0].ID, kg.CrossLinks[1].ID)
	}
}

func TestRebuildIndicesAndSources(t *testing.T) {
	a := sourceGraph("src-a",
		domain.KnowledgeAtom{ID: "src-a-a000", Type: domain.AtomParagraph, Topics: []string{"neural networks"}},
		domain.KnowledgeAtom{ID: "src-a-f00", Type: domain.AtomFigure},
	)
	b := sourceGraph("src-b",
		domain.KnowledgeAtom{ID: "src-b-a000", Type: domain.AtomParagraph, Topics: []string{"neural networks", "optimization"}},
	)

	kg := Rebuild("proj-1", []*domain.DocumentGraph{a, b})

	if kg.ProjectID != "proj-1" {
		t.Fatalf("unexpected project id %s", kg.ProjectID)
	}
	if len(kg.Sources) != 2 || kg.Sources[0].SourceID != "src-a" || kg.Sources[1].SourceID != "src-b" {
		t.Fatalf("unexpected sources: %+v", kg.Sources)
	}
	if kg.Sources[0].FigureCount != 1 {
		t.Fatalf("expected figure count 1 for src-a, got %d", kg.Sources[0].FigureCount)
	}
	if len(kg.Atoms) != 3 {
		t.Fatalf("expected union of 3 atoms, got %d", len(kg.Atoms))
	}
	if kg.AtomSource["src-b-a000"] != "src-b" {
		t.Fatalf("atom source mapping wrong: %+v", kg.AtomSource)
	}
	if got := kg.TopicIndex["neural networks"]; len(got) != 2 {
		t.Fatalf("expected topic index with 2 atoms, got %v", got)
	}
	if got := kg.TopicIndex["optimization"]; len(got) != 1 || got[0] != "src-b-a000" {
		t.Fatalf("unexpected optimization index: %v", got)
	}
}

func TestRebuildEmptyProject(t *testing.T) {
	kg := Rebuild("proj-1", nil)
	if len(kg.Sources) != 0 || len(kg.Atoms) != 0 || len(kg.CrossLinks) != 0 || len(kg.KeyThemes) != 0 {
		t.Fatalf("expected empty graph, got %+v", kg)
	}
}
