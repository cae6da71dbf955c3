// Package merge recomputes a project's unified knowledge graph from its
// per-document graphs. The rebuild is always a full recompute over immutable
// inputs; callers serialize concurrent rebuilds for the same project.
package merge

import (
	"fmt"
	"sort"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

const (
	crossLinkRelationship = "same_topic"
	crossLinkConfidence   = 0.6
	crossLinkCreatedBy    = "auto"
)

// orderedIndex keeps string -> atom-id lists with deterministic key order
// (first appearance), since map iteration order is unspecified.
type orderedIndex struct {
	keys []string
	m    map[string][]string
}

func newOrderedIndex() *orderedIndex {
	return &orderedIndex{m: map[string][]string{}}
}

func (idx *orderedIndex) add(key, atomID string) {
	if _, ok := idx.m[key]; !ok {
		idx.keys = append(idx.keys, key)
	}
	idx.m[key] = append(idx.m[key], atomID)
}

// Rebuild merges the given document graphs into one knowledge graph. Source
// order follows the input slice; atom order within a source is flow order
// followed by figure atoms.
func Rebuild(projectID string, graphs []*domain.DocumentGraph) *domain.KnowledgeGraph {
	kg := &domain.KnowledgeGraph{
		ProjectID:  projectID,
		Atoms:      map[string]domain.KnowledgeAtom{},
		AtomSource: map[string]string{},
	}

	topicIndex := newOrderedIndex()
	entityIndex := newOrderedIndex()

	for _, g := range graphs {
		kg.Sources = append(kg.Sources, domain.KnowledgeSource{
			SourceID:    g.ID,
			Title:       g.Title,
			Authors:     g.Authors,
			AtomCount:   len(g.Atoms),
			FigureCount: len(g.Figures),
		})

		for _, atomID := range orderedAtomIDs(g) {
			atom := g.Atoms[atomID]
			kg.Atoms[atomID] = atom
			kg.AtomSource[atomID] = g.ID

			for _, topic := range atom.Topics {
				topicIndex.add(topic, atomID)
			}
			for _, entity := range atom.Entities {
				entityIndex.add(entity, atomID)
			}
		}
	}

	kg.TopicIndex = topicIndex.m
	kg.EntityIndex = entityIndex.m
	kg.CrossLinks = detectCrossLinks(entityIndex, kg.AtomSource)
	kg.KeyThemes = rankThemes(topicIndex, kg.AtomSource, len(graphs))
	return kg
}

// orderedAtomIDs returns a graph's atoms in deterministic order: reading
// order first, then figure atoms, then anything else by sorted ID.
func orderedAtomIDs(g *domain.DocumentGraph) []string {
	seen := make(map[string]bool, len(g.Atoms))
	out := make([]string, 0, len(g.Atoms))

	take := func(id string) {
		if _, ok := g.Atoms[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, id := range g.Flow {
		take(id)
	}
	for _, id := range g.Figures {
		take(id)
	}

	var rest []string
	for id := range g.Atoms {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	out = append(out, rest...)
	return out
}

// detectCrossLinks emits one link per unordered source pair per entity that
// is referenced from two or more distinct sources, anchored on the first
// atom encountered from each source. Link IDs form a single sequence across
// the whole rebuild.
func detectCrossLinks(entities *orderedIndex, atomSource map[string]string) []domain.CrossSourceLink {
	var links []domain.CrossSourceLink
	seq := 0

	for _, entity := range entities.keys {
		var sourceOrder []string
		firstAtom := map[string]string{}

		for _, atomID := range entities.m[entity] {
			src := atomSource[atomID]
			if _, ok := firstAtom[src]; !ok {
				firstAtom[src] = atomID
				sourceOrder = append(sourceOrder, src)
			}
		}
		if len(sourceOrder) < 2 {
			continue
		}

		for i := 0; i < len(sourceOrder); i++ {
			for j := i + 1; j < len(sourceOrder); j++ {
				seq++
				links = append(links, domain.CrossSourceLink{
					ID:             fmt.Sprintf("link_%03d", seq),
					SourceAtomID:   firstAtom[sourceOrder[i]],
					SourceID:       sourceOrder[i],
					TargetAtomID:   firstAtom[sourceOrder[j]],
					TargetSourceID: sourceOrder[j],
					Relationship:   crossLinkRelationship,
					Confidence:     crossLinkConfidence,
					CreatedBy:      crossLinkCreatedBy,
				})
			}
		}
	}
	return links
}
