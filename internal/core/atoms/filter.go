package atoms

import (
	"regexp"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

var institutionTopicKeywords = []string{
	"university", "institute", "institut", "department", "laboratory",
	"college", "faculty", "academy", "school of", "research center",
	"research centre", "corporation", "foundation",
}

var journalPattern = regexp.MustCompile(`(?i)\b(?:journal|proceedings|transactions|conference|symposium|workshop)\b|\b(?:vol\.|no\.|pp\.)\s*\d`)

// rejectTopic reports whether a topic matches the institutional-name or
// journal/conference-name heuristics and must be dropped.
func rejectTopic(topic string) bool {
	lower := strings.ToLower(topic)
	for _, kw := range institutionTopicKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return journalPattern.MatchString(topic)
}

// filterTopics applies the topic rejection heuristics and forces the list
// empty for blocks inside a metadata zone, regardless of classifier output.
func filterTopics(topics []string, blockIndex int, profile domain.ContentProfile) []string {
	if profile.IsMetadataBlock(blockIndex) {
		return nil
	}
	var out []string
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" || rejectTopic(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func cleanEntities(entities []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range entities {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
