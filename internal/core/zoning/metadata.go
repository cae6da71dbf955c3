package zoning

import (
	"regexp"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

var (
	bylineName  = regexp.MustCompile(`(?i)^by\s+(.+)$`)
	personName  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z]\.)?(?:\s+[A-Z][a-z]+)+\b`)
	doiExtract  = regexp.MustCompile(`\b10\.\d{4,9}/[-._;()/:A-Za-z0-9]+`)
	andSplitter = regexp.MustCompile(`\s*(?:,|\band\b|&)\s*`)
)

// extractEarlyMetadata reads document-level authors, institutions and DOI.
// Authors and institutions come only from biographical zones; the DOI is a
// whole-document scan. None of this feeds atom topics.
func extractEarlyMetadata(profile *domain.ContentProfile, blocks []domain.TextBlock) {
	seenAuthors := map[string]bool{}
	seenInstitutions := map[string]bool{}

	for _, zone := range profile.Zones {
		if zone.Role != domain.ZoneBiographical {
			continue
		}
		for i := zone.StartBlock; i <= zone.EndBlock && i < len(blocks); i++ {
			text := strings.TrimSpace(blocks[i].Text)
			for _, author := range extractAuthors(text) {
				if !seenAuthors[author] {
					seenAuthors[author] = true
					profile.Authors = append(profile.Authors, author)
				}
			}
			if inst := extractInstitution(text); inst != "" && !seenInstitutions[inst] {
				seenInstitutions[inst] = true
				profile.Institutions = append(profile.Institutions, inst)
			}
		}
	}

	for _, b := range blocks {
		if m := doiExtract.FindString(b.Text); m != "" {
			profile.DOI = strings.TrimRight(m, ".,;")
			break
		}
	}
}

func extractAuthors(text string) []string {
	if m := bylineName.FindStringSubmatch(text); m != nil {
		var out []string
		for _, part := range andSplitter.Split(m[1], -1) {
			if name := personName.FindString(part); name != "" {
				out = append(out, name)
			}
		}
		return out
	}
	// Affiliation blocks carry names only before the institutional tail.
	if isAffiliationBlock(text) {
		return personName.FindAllString(firstLine(text), 4)
	}
	return nil
}

func extractInstitution(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range institutionKeywords {
		if idx := strings.Index(lower, kw); idx >= 0 {
			line := firstLineAround(text, idx)
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

func firstLineAround(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : offset+end]
}
