package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes pipeline events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
	PublishSourcesChanged(ctx context.Context, projectID string) error
	SubscribeSourcesChanged(ctx context.Context, handler func(context.Context, string) error) error
}

// BlockExtractor turns a stored source document into ordered text blocks and
// image records. Raw extraction is an external concern; this is its contract.
type BlockExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (*domain.ExtractionResult, error)
}

// ChunkRequest asks the classification service to classify exactly the block
// range [ChunkStart, ChunkEnd) of a document with TotalBlocks blocks.
type ChunkRequest struct {
	DocumentType domain.DocumentType
	ChunkStart   int
	ChunkEnd     int
	TotalBlocks  int
	Context      string
	WantTitle    bool
}

// BlockClassification is the service's verdict for a single block.
type BlockClassification struct {
	BlockIndex int      `json:"block_index"`
	Type       string   `json:"type"`
	Topics     []string `json:"topics"`
	Entities   []string `json:"entities"`
	Importance float64  `json:"importance"`
}

// ChunkResult is the parsed response for one chunk. Title and Authors are
// honored only for the first chunk of a document.
type ChunkResult struct {
	Title   string                `json:"title"`
	Authors []string              `json:"authors"`
	Blocks  []BlockClassification `json:"blocks"`
}

// SummaryRequest carries the abbreviated document context for summarization.
type SummaryRequest struct {
	Title        string
	DocumentType domain.DocumentType
	Context      string
}

// ClassificationService is the external natural-language classifier.
type ClassificationService interface {
	ClassifyChunk(ctx context.Context, req ChunkRequest) (ChunkResult, error)
	Summarize(ctx context.Context, req SummaryRequest) (domain.GraphSummaries, error)
}

// VisionService describes an extracted image in a short sentence.
type VisionService interface {
	DescribeImage(ctx context.Context, image []byte) (string, error)
}

// BuildResult is the atom builder's complete output for one document.
type BuildResult struct {
	Atoms     []domain.KnowledgeAtom
	Hierarchy map[string][]string
	Flow      []string
	Title     string
	Authors   []string
}

// AtomBuilder converts raw blocks into typed atoms. Implementations must
// produce the same output contract whether they delegate to an external
// service or run fully offline.
type AtomBuilder interface {
	Build(ctx context.Context, documentID string, blocks []domain.TextBlock, profile domain.ContentProfile) (*BuildResult, error)
	Summarize(ctx context.Context, title string, blocks []domain.TextBlock, profile domain.ContentProfile) (domain.GraphSummaries, error)
	// DescribeFigure produces figure atom content for an extracted image.
	// Offline strategies return an empty string; callers then fall back to
	// the matched caption text.
	DescribeFigure(ctx context.Context, image domain.ImageRecord) (string, error)
}

// ProjectRepository persists projects and lists their source documents.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error)
}

// DocumentRepository persists and reads source document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// GraphRepository persists per-document graphs and merged project graphs.
// SaveDocumentGraph commits the graph and the document's ready status in one
// transaction so a cancelled ingestion never leaves a partial graph visible.
type GraphRepository interface {
	SaveDocumentGraph(ctx context.Context, doc *domain.Document, graph *domain.DocumentGraph) error
	GetDocumentGraph(ctx context.Context, documentID string) (*domain.DocumentGraph, error)
	ListProjectGraphs(ctx context.Context, projectID string) ([]*domain.DocumentGraph, error)
	SaveKnowledgeGraph(ctx context.Context, graph *domain.KnowledgeGraph) error
	GetKnowledgeGraph(ctx context.Context, projectID string) (*domain.KnowledgeGraph, error)
}

// Embedder builds vectors for atom contents and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// AtomIndex indexes text atoms and performs semantic search over them.
type AtomIndex interface {
	IndexAtoms(ctx context.Context, doc *domain.Document, atoms []domain.KnowledgeAtom, vectors [][]float32) error
	Search(ctx context.Context, projectID string, queryVector []float32, limit int) ([]domain.RetrievedAtom, error)
}

// GraphProjection mirrors a merged knowledge graph into an external graph
// database for ad-hoc querying.
type GraphProjection interface {
	ProjectGraph(ctx context.Context, graph *domain.KnowledgeGraph) error
}

// GraphExporter renders a merged knowledge graph as a downloadable report.
type GraphExporter interface {
	Export(ctx context.Context, graph *domain.KnowledgeGraph) ([]byte, error)
}
