package domain

// GraphSummaries are the three summary levels produced once per document.
type GraphSummaries struct {
	Sentence  string `json:"sentence"`
	Paragraph string `json:"paragraph"`
	Full      string `json:"full"`
}

// DocumentGraph is one document's complete knowledge representation. It is
// built once per ingestion and persisted; the only later mutation is caption
// back-fill on figure atoms before the commit.
type DocumentGraph struct {
	ID    string                   `json:"id"`
	Atoms map[string]KnowledgeAtom `json:"atoms"`

	// Hierarchy maps a section header atom ID to its child atom IDs.
	Hierarchy map[string][]string `json:"hierarchy"`

	// Flow is the reading order of text-derived atoms. Its length always
	// equals the number of text-derived atoms in the graph.
	Flow []string `json:"flow"`

	Summaries GraphSummaries `json:"summaries"`

	Figures   []string `json:"figures"`
	Tables    []string `json:"tables"`
	KeyQuotes []string `json:"key_quotes"`

	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	PageCount int      `json:"page_count"`
}

// AtomsInFlow returns atoms in reading order.
func (g *DocumentGraph) AtomsInFlow() []KnowledgeAtom {
	out := make([]KnowledgeAtom, 0, len(g.Flow))
	for _, id := range g.Flow {
		if atom, ok := g.Atoms[id]; ok {
			out = append(out, atom)
		}
	}
	return out
}

// KnowledgeSource wraps one document graph with project-level provenance.
type KnowledgeSource struct {
	SourceID    string   `json:"source_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	AtomCount   int      `json:"atom_count"`
	FigureCount int      `json:"figure_count"`
}

// CrossSourceLink is an inferred relationship between atoms of two different
// sources that share an entity. Undirected in meaning, stored directionally.
type CrossSourceLink struct {
	ID             string  `json:"id"`
	SourceAtomID   string  `json:"source_atom"`
	SourceID       string  `json:"source_of_source"`
	TargetAtomID   string  `json:"target_atom"`
	TargetSourceID string  `json:"source_of_target"`
	Relationship   string  `json:"relationship"`
	Confidence     float64 `json:"confidence"`
	CreatedBy      string  `json:"created_by"`
}

// Theme is a topic judged significant across a project's sources.
type Theme struct {
	Topic     string   `json:"topic"`
	AtomCount int      `json:"atom_count"`
	SourceIDs []string `json:"source_ids"`
}

// KnowledgeGraph is the merged, cross-referenced atom set spanning all
// sources in a project. It is always rebuilt from scratch, never patched.
type KnowledgeGraph struct {
	ProjectID string `json:"project_id"`

	Sources []KnowledgeSource        `json:"sources"`
	Atoms   map[string]KnowledgeAtom `json:"atoms"`

	// AtomSource maps atom ID to owning source ID.
	AtomSource map[string]string `json:"atom_source"`

	CrossLinks []CrossSourceLink `json:"cross_links"`

	TopicIndex  map[string][]string `json:"topic_index"`
	EntityIndex map[string][]string `json:"entity_index"`

	KeyThemes []Theme `json:"key_themes"`
}
