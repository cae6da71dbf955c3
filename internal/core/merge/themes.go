package merge

import (
	"sort"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

const (
	maxThemes = 10

	// minSingleWordLen rejects short single-word topics as themes.
	minSingleWordLen = 6
)

// themeStopWords is the fixed set of topics never promoted to key themes.
var themeStopWords = map[string]bool{
	"introduction": true, "abstract": true, "conclusion": true,
	"results": true, "methods": true, "discussion": true,
	"background": true, "overview": true, "summary": true,
	"approach": true, "analysis": true, "however": true,
	"therefore": true, "general": true, "section": true,
	"article": true, "document": true, "content": true,
}

// rankThemes orders topics by distinct referencing atoms, drops stop-word
// and short single-word topics, and keeps only topics referenced from at
// least min(2, sourceCount) distinct sources, capped at maxThemes.
func rankThemes(topics *orderedIndex, atomSource map[string]string, sourceCount int) []domain.Theme {
	minSources := 2
	if sourceCount < minSources {
		minSources = sourceCount
	}

	type candidate struct {
		theme domain.Theme
		order int
	}
	var candidates []candidate

	for order, topic := range topics.keys {
		if !eligibleTheme(topic) {
			continue
		}

		atomSeen := map[string]bool{}
		srcSeen := map[string]bool{}
		var srcOrder []string
		for _, atomID := range topics.m[topic] {
			if !atomSeen[atomID] {
				atomSeen[atomID] = true
			}
			if src := atomSource[atomID]; !srcSeen[src] {
				srcSeen[src] = true
				srcOrder = append(srcOrder, src)
			}
		}
		if len(srcOrder) < minSources {
			continue
		}

		candidates = append(candidates, candidate{
			theme: domain.Theme{
				Topic:     topic,
				AtomCount: len(atomSeen),
				SourceIDs: srcOrder,
			},
			order: order,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].theme.AtomCount != candidates[j].theme.AtomCount {
			return candidates[i].theme.AtomCount > candidates[j].theme.AtomCount
		}
		return candidates[i].order < candidates[j].order
	})

	limit := min(maxThemes, len(candidates))
	out := make([]domain.Theme, 0, limit)
	for _, c := range candidates[:limit] {
		out = append(out, c.theme)
	}
	return out
}

func eligibleTheme(topic string) bool {
	lower := strings.ToLower(strings.TrimSpace(topic))
	if themeStopWords[lower] {
		return false
	}
	if !strings.Contains(lower, " ") && len(lower) < minSingleWordLen {
		return false
	}
	return true
}
