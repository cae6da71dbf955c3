package zoning

import (
	"regexp"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

// typeVote is one independent document-type candidate produced by a signal
// check. The classifier keeps the candidate with maximum confidence; ties
// fall to the earlier check in the fixed evaluation order.
type typeVote struct {
	docType    domain.DocumentType
	confidence float64
	signal     string
}

var (
	doiPattern     = regexp.MustCompile(`(?i)\b(?:doi\s*:?\s*)?10\.\d{4,9}/[-._;()/:a-z0-9]+`)
	arxivPattern   = regexp.MustCompile(`(?i)\barxiv:\s*\d{4}\.\d{4,5}`)
	abstractHeader = regexp.MustCompile(`(?i)^abstract\b`)
	refsHeader     = regexp.MustCompile(`(?i)^(references|bibliography)\b`)

	datelinePattern = regexp.MustCompile(`^[A-Z][A-Z .'-]{2,}(?:,\s*[A-Za-z .]+)?\s*[—–-]\s+\S`)
	datelineDate    = regexp.MustCompile(`(?i)^(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},\s+\d{4}`)
	bylinePattern   = regexp.MustCompile(`(?i)^by\s+[A-Z][a-z]+(?:\s+[A-Z][.a-z]+)+`)

	equationPattern = regexp.MustCompile(`(?:[∑∫√±≈≤≥]|\\(?:frac|sum|int|alpha|beta|sigma|lambda)\b|\b[a-zA-Z]\s*=\s*[-0-9a-zA-Z(])`)

	datasetKeywords = []string{"dataset", "schema", "columns", "rows", "csv", "features", "train/test", "license", "data dictionary"}
	blogMarkers     = []string{"posted by", "min read", "subscribe", "leave a comment", "read more", "share this post"}
)

const (
	abstractSearchWindow = 15
	datelineSearchWindow = 10
	refsTailFraction     = 0.3
	minEquationHits      = 4
	minDatasetHits       = 2
)

// collectVotes runs the fixed check list in order. Every triggered check
// yields an independent candidate.
func collectVotes(blocks []domain.TextBlock) []typeVote {
	var votes []typeVote

	if hasDOIToken(blocks) {
		votes = append(votes, typeVote{domain.TypeScientificPaper, 0.9, "doi"})
	}
	if idx := findHeader(blocks, abstractHeader, 0, min(abstractSearchWindow, len(blocks))); idx >= 0 {
		votes = append(votes, typeVote{domain.TypeScientificPaper, 0.85, "abstract_header"})
	}
	if findReferencesHeader(blocks) >= 0 {
		votes = append(votes, typeVote{domain.TypeScientificPaper, 0.8, "references_header"})
	}
	if hasDateline(blocks) {
		votes = append(votes, typeVote{domain.TypeNewsArticle, 0.85, "dateline"})
	}
	if findByline(blocks, len(blocks)) >= 0 {
		votes = append(votes, typeVote{domain.TypeNewsArticle, 0.8, "byline"})
	}
	if countKeywordBlocks(blocks, datasetKeywords) >= minDatasetHits {
		votes = append(votes, typeVote{domain.TypeDatasetReadme, 0.75, "dataset_keywords"})
	}
	if countEquationHits(blocks) >= minEquationHits {
		votes = append(votes, typeVote{domain.TypeScientificPaper, 0.7, "equations"})
	}
	if countKeywordBlocks(blocks, blogMarkers) >= 1 {
		votes = append(votes, typeVote{domain.TypeBlogPost, 0.65, "blog_markers"})
	}

	return votes
}

func hasDOIToken(blocks []domain.TextBlock) bool {
	for _, b := range blocks {
		if doiPattern.MatchString(b.Text) || arxivPattern.MatchString(b.Text) {
			return true
		}
	}
	return false
}

// findHeader returns the index of the first block in [from, to) whose text
// starts with the given header pattern.
func findHeader(blocks []domain.TextBlock, pattern *regexp.Regexp, from, to int) int {
	for i := from; i < to && i < len(blocks); i++ {
		if pattern.MatchString(strings.TrimSpace(blocks[i].Text)) {
			return i
		}
	}
	return -1
}

// findReferencesHeader searches the last 30% of blocks.
func findReferencesHeader(blocks []domain.TextBlock) int {
	if len(blocks) == 0 {
		return -1
	}
	from := len(blocks) - int(float64(len(blocks))*refsTailFraction)
	if from < 0 {
		from = 0
	}
	return findHeader(blocks, refsHeader, from, len(blocks))
}

func hasDateline(blocks []domain.TextBlock) bool {
	for i := 0; i < datelineSearchWindow && i < len(blocks); i++ {
		text := strings.TrimSpace(blocks[i].Text)
		if datelinePattern.MatchString(text) || datelineDate.MatchString(text) {
			return true
		}
	}
	return false
}

// findByline returns the first byline-matching block index within the first
// `window` blocks, or -1.
func findByline(blocks []domain.TextBlock, window int) int {
	for i := 0; i < window && i < len(blocks); i++ {
		if bylinePattern.MatchString(strings.TrimSpace(blocks[i].Text)) {
			return i
		}
	}
	return -1
}

func countKeywordBlocks(blocks []domain.TextBlock, keywords []string) int {
	hits := 0
	for _, b := range blocks {
		lower := strings.ToLower(b.Text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
				break
			}
		}
	}
	return hits
}

func countEquationHits(blocks []domain.TextBlock) int {
	hits := 0
	for _, b := range blocks {
		hits += len(equationPattern.FindAllString(b.Text, -1))
	}
	return hits
}
