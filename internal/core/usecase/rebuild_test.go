package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

type rebuildGraphRepoFake struct {
	docGraphs []*domain.DocumentGraph
	listErr   error
	saveErr   error
	savedKG   *domain.KnowledgeGraph
}

func (f *rebuildGraphRepoFake) SaveDocumentGraph(context.Context, *domain.Document, *domain.DocumentGraph) error {
	return nil
}

func (f *rebuildGraphRepoFake) GetDocumentGraph(context.Context, string) (*domain.DocumentGraph, error) {
	return nil, domain.ErrGraphNotFound
}

func (f *rebuildGraphRepoFake) ListProjectGraphs(context.Context, string) ([]*domain.DocumentGraph, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.docGraphs, nil
}

func (f *rebuildGraphRepoFake) SaveKnowledgeGraph(_ context.Context, kg *domain.KnowledgeGraph) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedKG = kg
	return nil
}

func (f *rebuildGraphRepoFake) GetKnowledgeGraph(context.Context, string) (*domain.KnowledgeGraph, error) {
	return nil, domain.ErrGraphNotFound
}

type projectionFake struct {
	projected *domain.KnowledgeGraph
	err       error
}

func (f *projectionFake) ProjectGraph(_ context.Context, kg *domain.KnowledgeGraph) error {
	if f.err != nil {
		return f.err
	}
	f.projected = kg
	return nil
}

func docGraphWithEntity(id, entity string) *domain.DocumentGraph {
	atomID := id + "-a000"
	return &domain.DocumentGraph{
		ID:    id,
		Title: "Graph " + id,
		Atoms: map[string]domain.KnowledgeAtom{
			atomID: {ID: atomID, Type: domain.AtomParagraph, Content: "text", Entities: []string{entity}},
		},
		Flow: []string{atomID},
	}
}

func TestRebuildProjectMergesAndPersists(t *testing.T) {
	graphs := &rebuildGraphRepoFake{docGraphs: []*domain.DocumentGraph{
		docGraphWithEntity("src-a", "BERT"),
		docGraphWithEntity("src-b", "BERT"),
	}}
	projection := &projectionFake{}
	uc := NewRebuildProjectUseCase(
		&projectRepoFake{project: &domain.Project{ID: "proj-1"}},
		graphs,
		projection,
	)

	kg, err := uc.RebuildProject(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("RebuildProject() error = %v", err)
	}
	if graphs.savedKG != kg {
		t.Fatalf("merged graph was not persisted")
	}
	if projection.projected != kg {
		t.Fatalf("merged graph was not projected")
	}
	if len(kg.Sources) != 2 || len(kg.CrossLinks) != 1 {
		t.Fatalf("expected 2 sources and 1 cross link, got %d/%d", len(kg.Sources), len(kg.CrossLinks))
	}
}

func TestRebuildProjectUnknownProject(t *testing.T) {
	uc := NewRebuildProjectUseCase(
		&projectRepoFake{getErr: domain.ErrProjectNotFound},
		&rebuildGraphRepoFake{},
		nil,
	)

	_, err := uc.RebuildProject(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestRebuildProjectProjectionFailureIsNonFatal(t *testing.T) {
	graphs := &rebuildGraphRepoFake{docGraphs: []*domain.DocumentGraph{docGraphWithEntity("src-a", "BERT")}}
	uc := NewRebuildProjectUseCase(
		&projectRepoFake{project: &domain.Project{ID: "proj-1"}},
		graphs,
		&projectionFake{err: errors.New("neo4j unavailable")},
	)

	if _, err := uc.RebuildProject(context.Background(), "proj-1"); err != nil {
		t.Fatalf("RebuildProject() error = %v", err)
	}
	if graphs.savedKG == nil {
		t.Fatalf("expected graph persisted despite projection failure")
	}
}
