package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/merge"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

// RebuildProjectUseCase recomputes a project's merged knowledge graph from
// scratch out of the committed per-document graphs.
type RebuildProjectUseCase struct {
	projects   ports.ProjectRepository
	graphs     ports.GraphRepository
	projection ports.GraphProjection
}

func NewRebuildProjectUseCase(
	projects ports.ProjectRepository,
	graphs ports.GraphRepository,
	projection ports.GraphProjection,
) *RebuildProjectUseCase {
	return &RebuildProjectUseCase{
		projects:   projects,
		graphs:     graphs,
		projection: projection,
	}
}

func (uc *RebuildProjectUseCase) RebuildProject(ctx context.Context, projectID string) (*domain.KnowledgeGraph, error) {
	if _, err := uc.projects.GetByID(ctx, projectID); err != nil {
		return nil, fmt.Errorf("resolve project: %w", err)
	}

	docGraphs, err := uc.graphs.ListProjectGraphs(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project graphs: %w", err)
	}

	kg := merge.Rebuild(projectID, docGraphs)

	if err := uc.graphs.SaveKnowledgeGraph(ctx, kg); err != nil {
		return nil, fmt.Errorf("save knowledge graph: %w", err)
	}

	// The graph-store mirror is best effort; the relational copy is the
	// source of truth.
	if uc.projection != nil {
		if err := uc.projection.ProjectGraph(ctx, kg); err != nil {
			slog.Warn("graph_projection_failed", "project_id", projectID, "error", err)
		}
	}

	slog.Info("project_rebuilt",
		"project_id", projectID,
		"sources", len(kg.Sources),
		"atoms", len(kg.Atoms),
		"cross_links", len(kg.CrossLinks),
		"key_themes", len(kg.KeyThemes),
	)
	return kg, nil
}
