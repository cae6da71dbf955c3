package atoms

import (
	"fmt"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

// ChunkBlockCount is the fixed number of blocks per classification request.
// The final chunk of a document may be partial.
const ChunkBlockCount = 30

// FigureImportance is the fixed importance of image-derived atoms.
const FigureImportance = 0.7

// typeSynonyms maps service-returned labels onto the canonical atom-type
// set. Unrecognized labels default to paragraph.
var typeSynonyms = map[string]domain.AtomType{
	"section_header": domain.AtomSectionHeader,
	"heading":        domain.AtomSectionHeader,
	"subheading":     domain.AtomSectionHeader,
	"header":         domain.AtomSectionHeader,
	"title":          domain.AtomSectionHeader,

	"paragraph": domain.AtomParagraph,
	"text":      domain.AtomParagraph,
	"body":      domain.AtomParagraph,

	"quote":      domain.AtomQuote,
	"blockquote": domain.AtomQuote,
	"pull_quote": domain.AtomQuote,

	"citation":     domain.AtomCitation,
	"reference":    domain.AtomCitation,
	"bibliography": domain.AtomCitation,

	"author":       domain.AtomAuthor,
	"authors":      domain.AtomAuthor,
	"affiliations": domain.AtomAuthor,
	"affiliation":  domain.AtomAuthor,
	"contact":      domain.AtomAuthor,
	"byline":       domain.AtomAuthor,

	"table":        domain.AtomTable,
	"table_data":   domain.AtomTable,
	"table_header": domain.AtomTable,

	"figure": domain.AtomFigure,
	"image":  domain.AtomFigure,
	"chart":  domain.AtomFigure,

	"equation": domain.AtomEquation,
	"formula":  domain.AtomEquation,

	"list_item": domain.AtomListItem,
	"list":      domain.AtomListItem,
	"bullet":    domain.AtomListItem,
}

// canonicalType maps a raw service label through the synonym table.
func canonicalType(label string) domain.AtomType {
	key := strings.ToLower(strings.TrimSpace(label))
	if t, ok := typeSynonyms[key]; ok {
		return t
	}
	return domain.AtomParagraph
}

// textAtomID returns the ID for the atom derived from block `index`.
// Document IDs are UUIDs, so atom IDs are also unique across documents.
func textAtomID(documentID string, index int) string {
	return fmt.Sprintf("%s-a%03d", documentID, index)
}

// figureAtomID returns the ID for the atom derived from image `index`.
func figureAtomID(documentID string, index int) string {
	return fmt.Sprintf("%s-f%02d", documentID, index)
}

func clampImportance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
