package atoms

import "github.com/kirillkom/docgraph/internal/core/domain"

// buildHierarchy walks atoms in flow order keeping a current-section pointer.
// A section header opens an empty child list; every paragraph or quote that
// follows attaches under the most recent header. Atoms before the first
// header stay unparented.
func buildHierarchy(flow []string, byID map[string]domain.KnowledgeAtom) map[string][]string {
	hierarchy := map[string][]string{}
	currentSection := ""

	for _, id := range flow {
		atom, ok := byID[id]
		if !ok {
			continue
		}
		switch atom.Type {
		case domain.AtomSectionHeader:
			currentSection = id
			hierarchy[id] = []string{}
		case domain.AtomParagraph, domain.AtomQuote:
			if currentSection != "" {
				hierarchy[currentSection] = append(hierarchy[currentSection], id)
			}
		}
	}
	return hierarchy
}
