package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

type GraphRepository struct {
	db *sql.DB
}

func NewGraphRepository(db *sql.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

// SaveDocumentGraph commits the serialized graph and the document's ready
// status in one transaction, so readers never observe a ready document
// without its graph or a graph for a failed document.
func (r *GraphRepository) SaveDocumentGraph(ctx context.Context, doc *domain.Document, graph *domain.DocumentGraph) error {
	payload, err := domain.EncodeDocumentGraph(graph)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin graph tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
INSERT INTO document_graphs (document_id, project_id, graph, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (document_id) DO UPDATE SET graph = EXCLUDED.graph, updated_at = EXCLUDED.updated_at
`, doc.ID, doc.ProjectID, payload, now); err != nil {
		return fmt.Errorf("upsert document graph: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = '', updated_at = $3
WHERE id = $1
`, doc.ID, string(domain.StatusReady), now)
	if err != nil {
		return fmt.Errorf("mark document ready: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark document ready result: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "mark document ready", sql.ErrNoRows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit graph tx: %w", err)
	}
	return nil
}

func (r *GraphRepository) GetDocumentGraph(ctx context.Context, documentID string) (*domain.DocumentGraph, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT graph FROM document_graphs WHERE document_id = $1
`, documentID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrGraphNotFound, "get document graph", err)
		}
		return nil, fmt.Errorf("scan document graph: %w", err)
	}
	return domain.DecodeDocumentGraph(payload)
}

// ListProjectGraphs returns the graphs of the project's ready documents in
// upload order, the order the merger treats as source order.
func (r *GraphRepository) ListProjectGraphs(ctx context.Context, projectID string) ([]*domain.DocumentGraph, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT g.graph
FROM document_graphs g
JOIN documents d ON d.id = g.document_id
WHERE g.project_id = $1 AND d.status = $2
ORDER BY d.created_at
`, projectID, string(domain.StatusReady))
	if err != nil {
		return nil, fmt.Errorf("list project graphs: %w", err)
	}
	defer rows.Close()

	var graphs []*domain.DocumentGraph
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan graph row: %w", err)
		}
		graph, err := domain.DecodeDocumentGraph(payload)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, graph)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graph rows: %w", err)
	}
	return graphs, nil
}

func (r *GraphRepository) SaveKnowledgeGraph(ctx context.Context, graph *domain.KnowledgeGraph) error {
	payload, err := domain.EncodeKnowledgeGraph(graph)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO knowledge_graphs (project_id, graph, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (project_id) DO UPDATE SET graph = EXCLUDED.graph, updated_at = EXCLUDED.updated_at
`, graph.ProjectID, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert knowledge graph: %w", err)
	}
	return nil
}

func (r *GraphRepository) GetKnowledgeGraph(ctx context.Context, projectID string) (*domain.KnowledgeGraph, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT graph FROM knowledge_graphs WHERE project_id = $1
`, projectID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrGraphNotFound, "get knowledge graph", err)
		}
		return nil, fmt.Errorf("scan knowledge graph: %w", err)
	}
	return domain.DecodeKnowledgeGraph(payload)
}
