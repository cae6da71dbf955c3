package domain

import (
	"strings"
	"testing"
)

func TestDocumentGraphRoundTripOmitsPayload(t *testing.T) {
	atom := KnowledgeAtom{
		ID:         "doc-1-f00",
		Type:       AtomFigure,
		Content:    "Architecture diagram",
		Page:       2,
		BBox:       BBox{X0: 100, Y0: 100, X1: 400, Y1: 300},
		Importance: 0.7,
		Caption:    "Figure 1: Architecture",
	}
	atom.AttachPayload([]byte{0x89, 0x50, 0x4e, 0x47})

	g := &DocumentGraph{
		ID:    "doc-1",
		Atoms: map[string]KnowledgeAtom{atom.ID: atom},
		Hierarchy: map[string][]string{
			"doc-1-a000": {"doc-1-a001"},
		},
		Flow:      []string{"doc-1-a000", "doc-1-a001"},
		Summaries: GraphSummaries{Sentence: "s", Paragraph: "p", Full: "f"},
		Figures:   []string{atom.ID},
		Title:     "A Title",
		Authors:   []string{"Jane Q. Doe"},
		PageCount: 7,
	}

	data, err := EncodeDocumentGraph(g)
	if err != nil {
		t.Fatalf("EncodeDocumentGraph() error = %v", err)
	}
	if strings.Contains(string(data), "PNG") || strings.Contains(string(data), "iVBO") {
		t.Fatalf("payload bytes leaked into serialized graph")
	}

	decoded, err := DecodeDocumentGraph(data)
	if err != nil {
		t.Fatalf("DecodeDocumentGraph() error = %v", err)
	}
	got := decoded.Atoms[atom.ID]
	if got.Payload != nil {
		t.Fatalf("payload must not survive the round trip")
	}
	if !got.HasPayload {
		t.Fatalf("has_payload flag lost in round trip")
	}
	if got.Caption != atom.Caption || got.BBox != atom.BBox {
		t.Fatalf("figure fields lost: %+v", got)
	}
	if decoded.Title != g.Title || decoded.PageCount != g.PageCount {
		t.Fatalf("document fields lost: %+v", decoded)
	}
	if len(decoded.Flow) != 2 || decoded.Flow[0] != "doc-1-a000" {
		t.Fatalf("flow order lost: %v", decoded.Flow)
	}
}

func TestDecodeDocumentGraphInitializesMaps(t *testing.T) {
	decoded, err := DecodeDocumentGraph([]byte(`{"id":"doc-1"}`))
	if err != nil {
		t.Fatalf("DecodeDocumentGraph() error = %v", err)
	}
	if decoded.Atoms == nil || decoded.Hierarchy == nil {
		t.Fatalf("decoder must initialize nil maps")
	}
}

func TestDecodeDocumentGraphRejectsGarbage(t *testing.T) {
	if _, err := DecodeDocumentGraph([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestKnowledgeGraphRoundTrip(t *testing.T) {
	kg := &KnowledgeGraph{
		ProjectID: "proj-1",
		Sources: []KnowledgeSource{
			{SourceID: "src-a", Title: "A", AtomCount: 2, FigureCount: 1},
		},
		Atoms: map[string]KnowledgeAtom{
			"src-a-a000": {ID: "src-a-a000", Type: AtomParagraph, Entities: []string{"BERT"}},
		},
		AtomSource: map[string]string{"src-a-a000": "src-a"},
		CrossLinks: []CrossSourceLink{
			{ID: "link_001", SourceAtomID: "src-a-a000", SourceID: "src-a",
				TargetAtomID: "src-b-a000", TargetSourceID: "src-b",
				Relationship: "same_topic", Confidence: 0.6, CreatedBy: "auto"},
		},
		TopicIndex:  map[string][]string{"transformers": {"src-a-a000"}},
		EntityIndex: map[string][]string{"BERT": {"src-a-a000"}},
		KeyThemes: []Theme{
			{Topic: "transformers", AtomCount: 1, SourceIDs: []string{"src-a"}},
		},
	}

	data, err := EncodeKnowledgeGraph(kg)
	if err != nil {
		t.Fatalf("EncodeKnowledgeGraph() error = %v", err)
	}
	decoded, err := DecodeKnowledgeGraph(data)
	if err != nil {
		t.Fatalf("DecodeKnowledgeGraph() error = %v", err)
	}
	if decoded.ProjectID != kg.ProjectID || len(decoded.CrossLinks) != 1 {
		t.Fatalf("knowledge graph fields lost: %+v", decoded)
	}
	if decoded.CrossLinks[0] != kg.CrossLinks[0] {
		t.Fatalf("cross link mutated: %+v", decoded.CrossLinks[0])
	}
	if decoded.KeyThemes[0].Topic != "transformers" {
		t.Fatalf("themes lost: %+v", decoded.KeyThemes)
	}
}

func TestErrorKinds(t *testing.T) {
	err := WrapError(ErrClassification, "assemble chunks", ErrTemporary)
	if !IsKind(err, ErrClassification) || !IsKind(err, ErrTemporary) {
		t.Fatalf("wrapped error lost its kinds: %v", err)
	}
	if IsKind(err, ErrProjectNotFound) {
		t.Fatalf("unexpected kind match")
	}
}
