package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
	"github.com/kirillkom/docgraph/internal/observability/metrics"
)

const serviceName = "api"

type documentUploader interface {
	Upload(ctx context.Context, projectID, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

type projectRebuilder interface {
	RebuildProject(ctx context.Context, projectID string) (*domain.KnowledgeGraph, error)
}

type atomSearcher interface {
	Search(ctx context.Context, projectID, query string, limit int) ([]domain.RetrievedAtom, error)
}

type Router struct {
	uploader  documentUploader
	rebuilder projectRebuilder
	searcher  atomSearcher
	projects  ports.ProjectRepository
	docs      ports.DocumentRepository
	graphs    ports.GraphRepository
	exporter  ports.GraphExporter
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	uploader documentUploader,
	rebuilder projectRebuilder,
	searcher atomSearcher,
	projects ports.ProjectRepository,
	docs ports.DocumentRepository,
	graphs ports.GraphRepository,
	exporter ports.GraphExporter,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		uploader:  uploader,
		rebuilder: rebuilder,
		searcher:  searcher,
		projects:  projects,
		docs:      docs,
		graphs:    graphs,
		exporter:  exporter,
		metrics:   m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/projects", rt.createProject)
	mux.HandleFunc("GET /v1/projects/{project_id}", rt.getProject)
	mux.HandleFunc("GET /v1/projects/{project_id}/documents", rt.listDocuments)
	mux.HandleFunc("POST /v1/projects/{project_id}/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/projects/{project_id}/graph", rt.getKnowledgeGraph)
	mux.HandleFunc("POST /v1/projects/{project_id}/rebuild", rt.rebuildProject)
	mux.HandleFunc("POST /v1/projects/{project_id}/search", rt.searchAtoms)
	mux.HandleFunc("GET /v1/projects/{project_id}/export", rt.exportGraph)

	mux.HandleFunc("GET /v1/documents/{document_id}", rt.getDocument)
	mux.HandleFunc("GET /v1/documents/{document_id}/graph", rt.getDocumentGraph)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(recoverMiddleware(handler)))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "project name is required"})
		return
	}

	project := &domain.Project{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := rt.projects.Create(r.Context(), project); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (rt *Router) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := rt.projects.GetByID(r.Context(), r.PathValue("project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.projects.ListDocuments(r.Context(), r.PathValue("project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.uploader.Upload(
		r.Context(),
		r.PathValue("project_id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.docs.GetByID(r.Context(), r.PathValue("document_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getDocumentGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := rt.graphs.GetDocumentGraph(r.Context(), r.PathValue("document_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (rt *Router) getKnowledgeGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := rt.graphs.GetKnowledgeGraph(r.Context(), r.PathValue("project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (rt *Router) rebuildProject(w http.ResponseWriter, r *http.Request) {
	graph, err := rt.rebuilder.RebuildProject(r.Context(), r.PathValue("project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project_id":  graph.ProjectID,
		"sources":     len(graph.Sources),
		"atoms":       len(graph.Atoms),
		"cross_links": len(graph.CrossLinks),
		"key_themes":  len(graph.KeyThemes),
	})
}

func (rt *Router) searchAtoms(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	hits, err := rt.searcher.Search(r.Context(), r.PathValue("project_id"), req.Query, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearchObservation(serviceName, len(hits), time.Since(start))
	}
	if hits == nil {
		hits = []domain.RetrievedAtom{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits})
}

func (rt *Router) exportGraph(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("project_id")
	graph, err := rt.graphs.GetKnowledgeGraph(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := rt.exporter.Export(r.Context(), graph)
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "knowledge_graph_"+projectID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
