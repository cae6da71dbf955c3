package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

// Projection mirrors merged knowledge graphs into Neo4j for ad-hoc Cypher
// querying. The mirror is disposable: every ProjectGraph call wipes the
// project's subgraph and writes the current one, matching the merger's
// full-recompute semantics.
type Projection struct {
	driver neo4j.DriverWithContext
}

func New(uri, user, password string) (*Projection, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Projection{driver: driver}, nil
}

func (p *Projection) Close(ctx context.Context) error {
	return p.driver.Close(ctx)
}

func (p *Projection) ProjectGraph(ctx context.Context, graph *domain.KnowledgeGraph) error {
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
MATCH (n {project_id: $project_id}) DETACH DELETE n
`, map[string]any{"project_id": graph.ProjectID}); err != nil {
			return nil, fmt.Errorf("clear project subgraph: %w", err)
		}

		if _, err := tx.Run(ctx, `
UNWIND $sources AS src
CREATE (:Source {
	project_id: $project_id,
	source_id: src.source_id,
	title: src.title,
	atom_count: src.atom_count,
	figure_count: src.figure_count
})
`, map[string]any{
			"project_id": graph.ProjectID,
			"sources":    sourceRows(graph),
		}); err != nil {
			return nil, fmt.Errorf("create source nodes: %w", err)
		}

		if _, err := tx.Run(ctx, `
UNWIND $atoms AS atom
MATCH (s:Source {project_id: $project_id, source_id: atom.source_id})
CREATE (a:Atom {
	project_id: $project_id,
	atom_id: atom.atom_id,
	type: atom.type,
	content: atom.content,
	topics: atom.topics,
	entities: atom.entities
})
CREATE (s)-[:OWNS]->(a)
`, map[string]any{
			"project_id": graph.ProjectID,
			"atoms":      atomRows(graph),
		}); err != nil {
			return nil, fmt.Errorf("create atom nodes: %w", err)
		}

		if _, err := tx.Run(ctx, `
UNWIND $links AS link
MATCH (a:Atom {project_id: $project_id, atom_id: link.source_atom})
MATCH (b:Atom {project_id: $project_id, atom_id: link.target_atom})
CREATE (a)-[:SAME_TOPIC {
	link_id: link.id,
	relationship: link.relationship,
	confidence: link.confidence,
	created_by: link.created_by
}]->(b)
`, map[string]any{
			"project_id": graph.ProjectID,
			"links":      linkRows(graph),
		}); err != nil {
			return nil, fmt.Errorf("create cross links: %w", err)
		}

		if _, err := tx.Run(ctx, `
UNWIND $themes AS theme
CREATE (:Theme {
	project_id: $project_id,
	topic: theme.topic,
	atom_count: theme.atom_count,
	source_ids: theme.source_ids
})
`, map[string]any{
			"project_id": graph.ProjectID,
			"themes":     themeRows(graph),
		}); err != nil {
			return nil, fmt.Errorf("create theme nodes: %w", err)
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("project graph %s: %w", graph.ProjectID, err)
	}
	return nil
}

func sourceRows(graph *domain.KnowledgeGraph) []map[string]any {
	rows := make([]map[string]any, 0, len(graph.Sources))
	for _, src := range graph.Sources {
		rows = append(rows, map[string]any{
			"source_id":    src.SourceID,
			"title":        src.Title,
			"atom_count":   src.AtomCount,
			"figure_count": src.FigureCount,
		})
	}
	return rows
}

func atomRows(graph *domain.KnowledgeGraph) []map[string]any {
	rows := make([]map[string]any, 0, len(graph.Atoms))
	for id, atom := range graph.Atoms {
		rows = append(rows, map[string]any{
			"atom_id":   id,
			"source_id": graph.AtomSource[id],
			"type":      string(atom.Type),
			"content":   atom.Content,
			"topics":    atom.Topics,
			"entities":  atom.Entities,
		})
	}
	return rows
}

func themeRows(graph *domain.KnowledgeGraph) []map[string]any {
	rows := make([]map[string]any, 0, len(graph.KeyThemes))
	for _, theme := range graph.KeyThemes {
		rows = append(rows, map[string]any{
			"topic":      theme.Topic,
			"atom_count": theme.AtomCount,
			"source_ids": theme.SourceIDs,
		})
	}
	return rows
}

func linkRows(graph *domain.KnowledgeGraph) []map[string]any {
	rows := make([]map[string]any, 0, len(graph.CrossLinks))
	for _, link := range graph.CrossLinks {
		rows = append(rows, map[string]any{
			"id":           link.ID,
			"source_atom":  link.SourceAtomID,
			"target_atom":  link.TargetAtomID,
			"relationship": link.Relationship,
			"confidence":   link.Confidence,
			"created_by":   link.CreatedBy,
		})
	}
	return rows
}
