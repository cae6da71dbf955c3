package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/docgraph/internal/core/atoms"
	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
	"github.com/kirillkom/docgraph/internal/core/zoning"
)

const maxKeyQuotes = 5

// ProcessDocumentUseCase runs the full per-document pipeline: extract blocks,
// classify zones, build atoms, associate figures, summarize, and commit the
// graph. Atoms commit atomically at the end of a successful ingestion.
type ProcessDocumentUseCase struct {
	docs      ports.DocumentRepository
	graphs    ports.GraphRepository
	extractor ports.BlockExtractor
	builder   ports.AtomBuilder
	queue     ports.MessageQueue
	embedder  ports.Embedder
	index     ports.AtomIndex
}

func NewProcessDocumentUseCase(
	docs ports.DocumentRepository,
	graphs ports.GraphRepository,
	extractor ports.BlockExtractor,
	builder ports.AtomBuilder,
	queue ports.MessageQueue,
	embedder ports.Embedder,
	index ports.AtomIndex,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		docs:      docs,
		graphs:    graphs,
		extractor: extractor,
		builder:   builder,
		queue:     queue,
		embedder:  embedder,
		index:     index,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.docs.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, graph, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	// The graph and the ready status commit in one transaction; a cancelled
	// ingestion never leaves a partial graph visible.
	if err := uc.graphs.SaveDocumentGraph(ctx, doc, graph); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("commit document graph: %w", err)
	}

	if err := uc.queue.PublishSourcesChanged(ctx, doc.ProjectID); err != nil {
		slog.Warn("publish_sources_changed_failed", "project_id", doc.ProjectID, "error", err)
	}

	uc.indexAtoms(ctx, doc, graph)
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.Document, *domain.DocumentGraph, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document by id: %w", err)
	}

	extraction, err := uc.extractBlocks(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	profile := zoning.Classify(extraction.Blocks)

	result, err := uc.builder.Build(ctx, doc.ID, extraction.Blocks, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("build atoms: %w", err)
	}

	figureAtoms, err := atoms.BuildFigureAtoms(ctx, uc.builder, doc.ID, extraction.Images, extraction.Blocks)
	if err != nil {
		return nil, nil, fmt.Errorf("build figure atoms: %w", err)
	}

	title := result.Title
	if title == "" {
		title = doc.Filename
	}

	summaries, err := uc.builder.Summarize(ctx, title, extraction.Blocks, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("summarize document: %w", err)
	}

	graph := assembleGraph(doc, profile, result, figureAtoms, summaries, extraction.PageCount, title)
	return doc, graph, nil
}

func (uc *ProcessDocumentUseCase) extractBlocks(ctx context.Context, doc *domain.Document) (*domain.ExtractionResult, error) {
	extraction, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extract blocks: %w", err)
	}
	if len(extraction.Blocks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract blocks", errors.New("no text blocks extracted"))
	}
	return extraction, nil
}

func assembleGraph(
	doc *domain.Document,
	profile domain.ContentProfile,
	result *ports.BuildResult,
	figureAtoms []domain.KnowledgeAtom,
	summaries domain.GraphSummaries,
	pageCount int,
	title string,
) *domain.DocumentGraph {
	graph := &domain.DocumentGraph{
		ID:        doc.ID,
		Atoms:     make(map[string]domain.KnowledgeAtom, len(result.Atoms)+len(figureAtoms)),
		Hierarchy: result.Hierarchy,
		Flow:      result.Flow,
		Summaries: summaries,
		Title:     title,
		Authors:   result.Authors,
		PageCount: pageCount,
	}
	if len(graph.Authors) == 0 {
		graph.Authors = profile.Authors
	}

	for _, atom := range result.Atoms {
		graph.Atoms[atom.ID] = atom
		switch atom.Type {
		case domain.AtomTable:
			graph.Tables = append(graph.Tables, atom.ID)
		case domain.AtomQuote:
			if len(graph.KeyQuotes) < maxKeyQuotes {
				graph.KeyQuotes = append(graph.KeyQuotes, atom.ID)
			}
		}
	}
	for _, atom := range figureAtoms {
		graph.Atoms[atom.ID] = atom
		graph.Figures = append(graph.Figures, atom.ID)
	}
	return graph
}

// indexAtoms pushes text atoms into the semantic index. The graph is already
// committed, so an index failure only logs a warning.
func (uc *ProcessDocumentUseCase) indexAtoms(ctx context.Context, doc *domain.Document, graph *domain.DocumentGraph) {
	if uc.embedder == nil || uc.index == nil {
		return
	}

	indexable := make([]domain.KnowledgeAtom, 0, len(graph.Flow))
	texts := make([]string, 0, len(graph.Flow))
	for _, atom := range graph.AtomsInFlow() {
		if atom.Content == "" {
			continue
		}
		indexable = append(indexable, atom)
		texts = append(texts, atom.Content)
	}
	if len(indexable) == 0 {
		return
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		slog.Warn("atom_embed_failed", "document_id", doc.ID, "error", err)
		return
	}
	if len(vectors) != len(indexable) {
		slog.Warn("atom_embed_mismatch", "document_id", doc.ID, "atoms", len(indexable), "vectors", len(vectors))
		return
	}
	if err := uc.index.IndexAtoms(ctx, doc, indexable, vectors); err != nil {
		slog.Warn("atom_index_failed", "document_id", doc.ID, "error", err)
	}
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.docs.UpdateStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
