package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/docgraph/internal/config"
	"github.com/kirillkom/docgraph/internal/core/atoms"
	"github.com/kirillkom/docgraph/internal/core/ports"
	"github.com/kirillkom/docgraph/internal/core/usecase"
	"github.com/kirillkom/docgraph/internal/infrastructure/export/excelreport"
	"github.com/kirillkom/docgraph/internal/infrastructure/extractor/pdfblocks"
	"github.com/kirillkom/docgraph/internal/infrastructure/graphdb/neo4j"
	"github.com/kirillkom/docgraph/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/docgraph/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docgraph/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/docgraph/internal/infrastructure/resilience"
	"github.com/kirillkom/docgraph/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/docgraph/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Projects ports.ProjectRepository
	Docs     ports.DocumentRepository
	Graphs   ports.GraphRepository
	Exporter ports.GraphExporter

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	RebuildUC ports.ProjectRebuilder
	SearchUC  ports.AtomSearchService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	projects := postgres.NewProjectRepository(db)
	docs := postgres.NewDocumentRepository(db)
	graphs := postgres.NewGraphRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	exec := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSIngestSubject, cfg.NATSRebuildSubject, nats.Options{
		ResilienceExecutor: exec,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(ollama.Config{
		BaseURL:           cfg.OllamaURL,
		GenModel:          cfg.OllamaGenModel,
		EmbedModel:        cfg.OllamaEmbedModel,
		VisionModel:       cfg.OllamaVisionModel,
		RequestTimeout:    time.Duration(cfg.OllamaTimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.OllamaRequestsPerSecond,
		Burst:             cfg.OllamaBurst,
	}, exec)
	embedder := ollama.NewEmbedder(ollamaClient)

	builder := newAtomBuilder(cfg, ollamaClient)
	extractor := pdfblocks.New(storage)
	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	var projection ports.GraphProjection
	var closeProjection func()
	if cfg.Neo4jURI != "" {
		neoProjection, err := neo4j.New(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			queue.Close()
			_ = db.Close()
			return nil, fmt.Errorf("init graph projection: %w", err)
		}
		projection = neoProjection
		closeProjection = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = neoProjection.Close(closeCtx)
		}
	}

	ingestUC := usecase.NewIngestDocumentUseCase(projects, docs, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(docs, graphs, extractor, builder, queue, embedder, index)
	rebuildUC := usecase.NewRebuildProjectUseCase(projects, graphs, projection)
	searchUC := usecase.NewSearchAtomsUseCase(embedder, index)

	return &App{
		Config: cfg,

		Queue:    queue,
		Projects: projects,
		Docs:     docs,
		Graphs:   graphs,
		Exporter: excelreport.New(),

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		RebuildUC: rebuildUC,
		SearchUC:  searchUC,

		closeFn: func() {
			queue.Close()
			if closeProjection != nil {
				closeProjection()
			}
			_ = db.Close()
		},
	}, nil
}

func newAtomBuilder(cfg config.Config, client *ollama.Client) ports.AtomBuilder {
	if cfg.AtomBuilderMode == "heuristic" {
		return atoms.NewHeuristicBuilder()
	}
	semantic := atoms.NewSemanticBuilder(ollama.NewClassifier(client), ollama.NewVision(client))
	return atoms.NewFallbackBuilder(semantic, atoms.NewHeuristicBuilder())
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
