package zoning

import (
	"regexp"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

const (
	// defaultFrontMatterWidth bounds the front matter of a scientific paper
	// when no body-section header is found.
	defaultFrontMatterWidth = 10

	// genericFrontMatterWidth is the headline/front block count for news and
	// fallback zoning.
	genericFrontMatterWidth = 3

	// sectionSearchStart skips the title region when looking for the first
	// body-section header of a paper.
	sectionSearchStart = 4

	bylineSearchWindow = 5

	genericConfidence = 0.3
)

var (
	sectionHeaderPattern = regexp.MustCompile(`(?i)^(?:\d+\.?\s*)?(introduction|background|related work|overview|motivation|preliminaries)\b`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	institutionKeywords = []string{
		"university", "institute", "department", "laboratory", "college",
		"school of", "faculty", "research center", "centre for", "academy",
	}
)

// Classify labels a document's type by signal voting and partitions its
// blocks into structural zones. The profile is immutable once returned.
func Classify(blocks []domain.TextBlock) domain.ContentProfile {
	docType, confidence := detectType(blocks)

	var zones []domain.DocumentZone
	switch docType {
	case domain.TypeScientificPaper:
		zones = paperZones(blocks)
	case domain.TypeNewsArticle:
		zones = newsZones(blocks)
	default:
		zones = fallbackZones(blocks)
	}

	rules := rulesFor(docType)
	profile := domain.ContentProfile{
		DocumentType:  docType,
		Confidence:    confidence,
		Zones:         zones,
		TopicZones:    rules.Topics,
		EntityZones:   rules.Entities,
		MetadataZones: rules.Metadata,
	}

	extractEarlyMetadata(&profile, blocks)
	return profile
}

func detectType(blocks []domain.TextBlock) (domain.DocumentType, float64) {
	best := typeVote{docType: domain.TypeGeneric, confidence: genericConfidence, signal: "none"}
	for _, vote := range collectVotes(blocks) {
		if vote.confidence > best.confidence {
			best = vote
		}
	}
	return best.docType, best.confidence
}

// paperZones lays out front matter, body and back matter around the first
// body-section header and the references header.
func paperZones(blocks []domain.TextBlock) []domain.DocumentZone {
	n := len(blocks)
	if n == 0 {
		return nil
	}

	firstSection := findHeader(blocks, sectionHeaderPattern, sectionSearchStart, n)
	refs := findReferencesHeader(blocks)

	bodyStart := firstSection
	if bodyStart < 0 {
		bodyStart = min(defaultFrontMatterWidth, n)
	}

	bodyEnd := n - 1
	if refs >= 0 && refs > bodyStart {
		bodyEnd = refs - 1
	}

	var zones []domain.DocumentZone
	if bodyStart > 0 {
		zones = append(zones, domain.DocumentZone{
			Role:       domain.ZoneFrontMatter,
			StartBlock: 0,
			EndBlock:   bodyStart - 1,
			Label:      "front matter",
		})
		zones = append(zones, affiliationSubZones(blocks, bodyStart-1)...)
	}
	if bodyStart < n {
		zones = append(zones, domain.DocumentZone{
			Role:       domain.ZoneBody,
			StartBlock: bodyStart,
			EndBlock:   bodyEnd,
			Label:      "body",
		})
	}
	if refs >= 0 && refs > bodyStart {
		zones = append(zones, domain.DocumentZone{
			Role:       domain.ZoneBackMatter,
			StartBlock: refs,
			EndBlock:   n - 1,
			Label:      "references",
		})
	}
	return zones
}

// affiliationSubZones marks every front-matter block matching the affiliation
// heuristic as a single-block biographical zone.
func affiliationSubZones(blocks []domain.TextBlock, frontEnd int) []domain.DocumentZone {
	var zones []domain.DocumentZone
	for i := 0; i <= frontEnd && i < len(blocks); i++ {
		if isAffiliationBlock(blocks[i].Text) {
			zones = append(zones, domain.DocumentZone{
				Role:       domain.ZoneBiographical,
				StartBlock: i,
				EndBlock:   i,
				Label:      "affiliation",
			})
		}
	}
	return zones
}

func isAffiliationBlock(text string) bool {
	if emailPattern.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range institutionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func newsZones(blocks []domain.TextBlock) []domain.DocumentZone {
	n := len(blocks)
	if n == 0 {
		return nil
	}

	frontEnd := min(genericFrontMatterWidth, n) - 1
	zones := []domain.DocumentZone{{
		Role:       domain.ZoneFrontMatter,
		StartBlock: 0,
		EndBlock:   frontEnd,
		Label:      "headline",
	}}

	if byline := findByline(blocks, bylineSearchWindow); byline >= 0 {
		zones = append(zones, domain.DocumentZone{
			Role:       domain.ZoneBiographical,
			StartBlock: byline,
			EndBlock:   byline,
			Label:      "byline",
		})
	}

	if n > genericFrontMatterWidth {
		zones = append(zones, domain.DocumentZone{
			Role:       domain.ZoneBody,
			StartBlock: genericFrontMatterWidth,
			EndBlock:   n - 1,
			Label:      "body",
		})
	}
	return zones
}

func fallbackZones(blocks []domain.TextBlock) []domain.DocumentZone {
	n := len(blocks)
	if n == 0 {
		return nil
	}

	frontEnd := min(genericFrontMatterWidth, n) - 1
	zones := []domain.DocumentZone{{
		Role:       domain.ZoneFrontMatter,
		StartBlock: 0,
		EndBlock:   frontEnd,
		Label:      "front matter",
	}}
	if n > genericFrontMatterWidth {
		zones = append(zones, domain.DocumentZone{
			Role:       domain.ZoneBody,
			StartBlock: genericFrontMatterWidth,
			EndBlock:   n - 1,
			Label:      "body",
		})
	}
	return zones
}
