package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type processDocRepoFake struct {
	doc         *domain.Document
	getErr      error
	statusErr   error
	statusCalls []statusCall
}

func (f *processDocRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *processDocRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *processDocRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return f.statusErr
}

type processGraphRepoFake struct {
	saveErr error
	saved   *domain.DocumentGraph
	doc     *domain.Document
}

func (f *processGraphRepoFake) SaveDocumentGraph(_ context.Context, doc *domain.Document, graph *domain.DocumentGraph) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.doc = doc
	f.saved = graph
	return nil
}

func (f *processGraphRepoFake) GetDocumentGraph(context.Context, string) (*domain.DocumentGraph, error) {
	return nil, domain.ErrGraphNotFound
}

func (f *processGraphRepoFake) ListProjectGraphs(context.Context, string) ([]*domain.DocumentGraph, error) {
	return nil, nil
}

func (f *processGraphRepoFake) SaveKnowledgeGraph(context.Context, *domain.KnowledgeGraph) error {
	return nil
}

func (f *processGraphRepoFake) GetKnowledgeGraph(context.Context, string) (*domain.KnowledgeGraph, error) {
	return nil, domain.ErrGraphNotFound
}

type blockExtractorFake struct {
	result *domain.ExtractionResult
	err    error
}

func (f *blockExtractorFake) Extract(context.Context, *domain.Document) (*domain.ExtractionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type builderFake struct {
	result   *ports.BuildResult
	buildErr error
}

func (f *builderFake) Build(_ context.Context, _ string, _ []domain.TextBlock, _ domain.ContentProfile) (*ports.BuildResult, error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.result, nil
}

func (f *builderFake) Summarize(context.Context, string, []domain.TextBlock, domain.ContentProfile) (domain.GraphSummaries, error) {
	return domain.GraphSummaries{Sentence: "one line"}, nil
}

func (f *builderFake) DescribeFigure(context.Context, domain.ImageRecord) (string, error) {
	return "", nil
}

type processQueueFake struct {
	changedProjects []string
	publishErr      error
}

func (f *processQueueFake) PublishDocumentIngested(context.Context, string) error { return nil }

func (f *processQueueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func (f *processQueueFake) PublishSourcesChanged(_ context.Context, projectID string) error {
	f.changedProjects = append(f.changedProjects, projectID)
	return f.publishErr
}

func (f *processQueueFake) SubscribeSourcesChanged(context.Context, func(context.Context, string) error) error {
	return nil
}

type processEmbedderFake struct {
	vectors [][]float32
	err     error
	texts   []string
}

func (f *processEmbedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = texts
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

func (f *processEmbedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, nil
}

type atomIndexFake struct {
	indexed []domain.KnowledgeAtom
	err     error
}

func (f *atomIndexFake) IndexAtoms(_ context.Context, _ *domain.Document, atoms []domain.KnowledgeAtom, _ [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, atoms...)
	return nil
}

func (f *atomIndexFake) Search(context.Context, string, []float32, int) ([]domain.RetrievedAtom, error) {
	return nil, nil
}

func processFixture() (*domain.ExtractionResult, *ports.BuildResult) {
	extraction := &domain.ExtractionResult{
		Blocks: []domain.TextBlock{
			{Text: "Methods", Page: 0, BBox: domain.BBox{X0: 50, Y0: 40, X1: 300, Y1: 60}},
			{Text: "We sample documents.", Page: 0, BBox: domain.BBox{X0: 50, Y0: 70, X1: 300, Y1: 90}},
			{Text: "Figure 1: Sampling overview", Page: 0, BBox: domain.BBox{X0: 100, Y0: 310, X1: 400, Y1: 330}},
		},
		Images: []domain.ImageRecord{
			{Page: 0, BBox: domain.BBox{X0: 100, Y0: 100, X1: 400, Y1: 300}, Data: []byte{0x89}},
		},
		PageCount: 1,
	}

	atoms := []domain.KnowledgeAtom{
		{ID: "doc-1-a000", Type: domain.AtomSectionHeader, Content: "Methods", Importance: 0.8},
		{ID: "doc-1-a001", Type: domain.AtomParagraph, Content: "We sample documents.", Importance: 0.5},
		{ID: "doc-1-a002", Type: domain.AtomQuote, Content: "Figure 1: Sampling overview", Importance: 0.5},
	}
	build := &ports.BuildResult{
		Atoms:     atoms,
		Hierarchy: map[string][]string{"doc-1-a000": {"doc-1-a001"}},
		Flow:      []string{"doc-1-a000", "doc-1-a001", "doc-1-a002"},
		Title:     "Sampling Study",
		Authors:   []string{"A. Author"},
	}
	return extraction, build
}

func TestProcessByIDCommitsGraphAndPublishes(t *testing.T) {
	extraction, build := processFixture()
	docs := &processDocRepoFake{doc: &domain.Document{ID: "doc-1", ProjectID: "proj-1", Filename: "paper.pdf"}}
	graphs := &processGraphRepoFake{}
	queue := &processQueueFake{}
	index := &atomIndexFake{}

	uc := NewProcessDocumentUseCase(
		docs,
		graphs,
		&blockExtractorFake{result: extraction},
		&builderFake{result: build},
		queue,
		&processEmbedderFake{},
		index,
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(docs.statusCalls) != 1 || docs.statusCalls[0].status != domain.StatusProcessing {
		t.Fatalf("expected single processing status update, got %+v", docs.statusCalls)
	}
	if graphs.saved == nil {
		t.Fatalf("expected a committed document graph")
	}
	if graphs.saved.Title != "Sampling Study" {
		t.Fatalf("unexpected graph title %q", graphs.saved.Title)
	}
	if len(graphs.saved.Atoms) != 4 {
		t.Fatalf("expected 3 text atoms + 1 figure atom, got %d", len(graphs.saved.Atoms))
	}
	if len(graphs.saved.Figures) != 1 {
		t.Fatalf("expected one figure atom id, got %v", graphs.saved.Figures)
	}
	fig := graphs.saved.Atoms[graphs.saved.Figures[0]]
	if fig.Caption != "Figure 1: Sampling overview" {
		t.Fatalf("figure caption not associated, got %q", fig.Caption)
	}
	if len(queue.changedProjects) != 1 || queue.changedProjects[0] != "proj-1" {
		t.Fatalf("expected sources-changed event for proj-1, got %v", queue.changedProjects)
	}
	if len(index.indexed) != 3 {
		t.Fatalf("expected 3 indexed text atoms, got %d", len(index.indexed))
	}
}

func TestProcessByIDMarksFailedOnExtractError(t *testing.T) {
	docs := &processDocRepoFake{doc: &domain.Document{ID: "doc-1", ProjectID: "proj-1"}}
	uc := NewProcessDocumentUseCase(
		docs,
		&processGraphRepoFake{},
		&blockExtractorFake{err: errors.New("corrupt pdf")},
		&builderFake{},
		&processQueueFake{},
		&processEmbedderFake{},
		&atomIndexFake{},
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(docs.statusCalls) != 2 {
		t.Fatalf("expected processing + failed status updates, got %+v", docs.statusCalls)
	}
	if docs.statusCalls[1].status != domain.StatusFailed || docs.statusCalls[1].errMsg == "" {
		t.Fatalf("expected failed status with message, got %+v", docs.statusCalls[1])
	}
}

func TestProcessByIDRejectsEmptyExtraction(t *testing.T) {
	docs := &processDocRepoFake{doc: &domain.Document{ID: "doc-1", ProjectID: "proj-1"}}
	uc := NewProcessDocumentUseCase(
		docs,
		&processGraphRepoFake{},
		&blockExtractorFake{result: &domain.ExtractionResult{PageCount: 1}},
		&builderFake{},
		&processQueueFake{},
		&processEmbedderFake{},
		&atomIndexFake{},
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if docs.statusCalls[len(docs.statusCalls)-1].status != domain.StatusFailed {
		t.Fatalf("expected final failed status, got %+v", docs.statusCalls)
	}
}

func TestProcessByIDMarksFailedOnCommitError(t *testing.T) {
	extraction, build := processFixture()
	docs := &processDocRepoFake{doc: &domain.Document{ID: "doc-1", ProjectID: "proj-1"}}
	uc := NewProcessDocumentUseCase(
		docs,
		&processGraphRepoFake{saveErr: errors.New("tx aborted")},
		&blockExtractorFake{result: extraction},
		&builderFake{result: build},
		&processQueueFake{},
		&processEmbedderFake{},
		&atomIndexFake{},
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected error")
	}
	if docs.statusCalls[len(docs.statusCalls)-1].status != domain.StatusFailed {
		t.Fatalf("expected final failed status, got %+v", docs.statusCalls)
	}
}

func TestProcessByIDIndexFailureIsNonFatal(t *testing.T) {
	extraction, build := processFixture()
	docs := &processDocRepoFake{doc: &domain.Document{ID: "doc-1", ProjectID: "proj-1"}}
	uc := NewProcessDocumentUseCase(
		docs,
		&processGraphRepoFake{},
		&blockExtractorFake{result: extraction},
		&builderFake{result: build},
		&processQueueFake{},
		&processEmbedderFake{err: errors.New("embedder down")},
		&atomIndexFake{},
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
}
