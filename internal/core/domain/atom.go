package domain

// AtomType is the canonical classification of a knowledge atom.
type AtomType string

const (
	AtomSectionHeader AtomType = "section_header"
	AtomParagraph     AtomType = "paragraph"
	AtomQuote         AtomType = "quote"
	AtomCitation      AtomType = "citation"
	AtomAuthor        AtomType = "author"
	AtomTable         AtomType = "table"
	AtomFigure        AtomType = "figure"
	AtomEquation      AtomType = "equation"
	AtomListItem      AtomType = "list_item"
)

// EntityRelation is a lightweight relationship between two entities observed
// in the same atom.
type EntityRelation struct {
	Left     string `json:"left"`
	Right    string `json:"right"`
	Relation string `json:"relation"`
}

// KnowledgeAtom is the smallest classified unit of document content. IDs are
// unique within the owning document graph.
type KnowledgeAtom struct {
	ID      string   `json:"id"`
	Type    AtomType `json:"type"`
	Content string   `json:"content"`

	// Payload holds raw binary content (image bytes). It is never embedded in
	// serialized graphs; only HasPayload survives a round-trip.
	Payload    []byte `json:"-"`
	HasPayload bool   `json:"has_payload,omitempty"`

	Page int  `json:"page"`
	BBox BBox `json:"bbox"`

	Topics        []string         `json:"topics,omitempty"`
	Entities      []string         `json:"entities,omitempty"`
	Relationships []EntityRelation `json:"relationships,omitempty"`

	Importance float64 `json:"importance"`

	Caption      string `json:"caption,omitempty"`
	FigureNumber string `json:"figure_number,omitempty"`
	DataSummary  string `json:"data_summary,omitempty"`
}

// AttachPayload stores binary content and records its presence.
func (a *KnowledgeAtom) AttachPayload(data []byte) {
	a.Payload = data
	a.HasPayload = len(data) > 0
}

// IsTextDerived reports whether the atom came from a text block (as opposed
// to an extracted image). Only text-derived atoms appear in a graph's flow.
func (a KnowledgeAtom) IsTextDerived() bool {
	return a.Type != AtomFigure
}
