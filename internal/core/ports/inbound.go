package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, projectID, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous pipeline runs.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// ProjectRebuilder recomputes a project's merged knowledge graph.
type ProjectRebuilder interface {
	RebuildProject(ctx context.Context, projectID string) (*domain.KnowledgeGraph, error)
}

// AtomSearchService is the inbound contract for semantic atom search.
type AtomSearchService interface {
	Search(ctx context.Context, projectID, query string, limit int) ([]domain.RetrievedAtom, error)
}
