package domain

import "time"

// DocumentStatus tracks a source document through the ingestion pipeline.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Project groups source documents whose graphs merge into one knowledge graph.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SourceCount int       `json:"source_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Document is the persisted record of one uploaded source document.
type Document struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"project_id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// RetrievedAtom is one semantic search hit over indexed atoms.
type RetrievedAtom struct {
	AtomID     string  `json:"atom_id"`
	DocumentID string  `json:"document_id"`
	ProjectID  string  `json:"project_id"`
	Type       string  `json:"type"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}
