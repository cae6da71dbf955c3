package atoms

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

const (
	// headerFontRatio marks a block as a section header when its font size
	// reaches this fraction of the document maximum.
	headerFontRatio = 0.85

	// boldHeaderMaxLen bounds the length of a bold block still treated as a
	// header rather than emphasized body text.
	boldHeaderMaxLen = 80

	maxEntityRelations = 3
)

var (
	citationLead  = regexp.MustCompile(`^\s*(?:\[\d+\]|\d+\.\s+[A-Z][a-z]+,|[A-Z][a-z]+,\s+[A-Z]\.\s*(?:,|and|&))`)
	quoteLead     = regexp.MustCompile(`^\s*["\x60“‘']`)
	abstractLead  = regexp.MustCompile(`(?i)^abstract\b`)
	acronymExpr   = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,5}\b`)
	capPhraseExpr = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	sigWordExpr   = regexp.MustCompile(`\b[a-z]{7,}\b`)
)

// topicStopWords filters generic capitalized phrases and significant words
// that carry no domain meaning.
var topicStopWords = map[string]bool{
	"abstract": true, "introduction": true, "background": true,
	"conclusion": true, "however": true, "therefore": true,
	"approach": true, "results": true, "discussion": true,
	"related work": true, "the": true, "this": true, "these": true,
	"figure": true, "table": true, "section": true, "appendix": true,
	"method": true, "methods": true, "analysis": true, "moreover": true,
	"furthermore": true, "additionally": true, "generally": true,
}

// HeuristicBuilder is the fully offline strategy. It produces the same
// output contract as the semantic builder from pure pattern matching, for
// tests and degraded operation.
type HeuristicBuilder struct{}

func NewHeuristicBuilder() *HeuristicBuilder { return &HeuristicBuilder{} }

func (b *HeuristicBuilder) Build(
	_ context.Context,
	documentID string,
	blocks []domain.TextBlock,
	profile domain.ContentProfile,
) (*ports.BuildResult, error) {
	if len(blocks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "build atoms", errors.New("no text blocks"))
	}

	maxFont := maxFontSize(blocks)

	atoms := make([]domain.KnowledgeAtom, 0, len(blocks))
	flow := make([]string, 0, len(blocks))
	byID := make(map[string]domain.KnowledgeAtom, len(blocks))

	for i, block := range blocks {
		atomType := classifyBlock(block, maxFont)
		entities := extractEntities(block.Text)
		atom := domain.KnowledgeAtom{
			ID:            textAtomID(documentID, i),
			Type:          atomType,
			Content:       block.Text,
			Page:          block.Page,
			BBox:          block.BBox,
			Topics:        filterTopics(extractTopics(block.Text), i, profile),
			Entities:      entities,
			Relationships: relateEntities(entities),
			Importance:    heuristicImportance(atomType),
		}
		atoms = append(atoms, atom)
		flow = append(flow, atom.ID)
		byID[atom.ID] = atom
	}

	return &ports.BuildResult{
		Atoms:     atoms,
		Hierarchy: buildHierarchy(flow, byID),
		Flow:      flow,
		Title:     heuristicTitle(blocks),
		Authors:   profile.Authors,
	}, nil
}

func maxFontSize(blocks []domain.TextBlock) float64 {
	var maxSize float64
	for _, b := range blocks {
		if b.FontSize > maxSize {
			maxSize = b.FontSize
		}
	}
	return maxSize
}

func classifyBlock(block domain.TextBlock, maxFont float64) domain.AtomType {
	text := strings.TrimSpace(block.Text)
	switch {
	case abstractLead.MatchString(text):
		return domain.AtomSectionHeader
	case maxFont > 0 && block.FontSize >= headerFontRatio*maxFont && len(text) <= boldHeaderMaxLen:
		return domain.AtomSectionHeader
	case block.Bold && len(text) <= boldHeaderMaxLen:
		return domain.AtomSectionHeader
	case citationLead.MatchString(text):
		return domain.AtomCitation
	case quoteLead.MatchString(text):
		return domain.AtomQuote
	default:
		return domain.AtomParagraph
	}
}

func heuristicImportance(t domain.AtomType) float64 {
	switch t {
	case domain.AtomSectionHeader:
		return 0.8
	case domain.AtomQuote:
		return 0.6
	case domain.AtomCitation:
		return 0.3
	default:
		return defaultImportance
	}
}

// extractTopics collects multi-word capitalized phrases and significant
// lowercase words, filtered by the stop-word set.
func extractTopics(text string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(topic string) {
		key := strings.ToLower(topic)
		if topicStopWords[key] || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, topic)
	}

	for _, phrase := range capPhraseExpr.FindAllString(text, 5) {
		add(phrase)
	}
	for _, word := range sigWordExpr.FindAllString(text, 5) {
		add(word)
	}
	return out
}

// extractEntities collects acronyms and capitalized phrases that do not open
// a sentence.
func extractEntities(text string) []string {
	var out []string
	seen := map[string]bool{}

	for _, acronym := range acronymExpr.FindAllString(text, 6) {
		if !seen[acronym] {
			seen[acronym] = true
			out = append(out, acronym)
		}
	}
	for _, loc := range capPhraseExpr.FindAllStringIndex(text, 6) {
		if isSentenceStart(text, loc[0]) {
			continue
		}
		phrase := text[loc[0]:loc[1]]
		if !seen[phrase] {
			seen[phrase] = true
			out = append(out, phrase)
		}
	}
	return out
}

// isSentenceStart reports whether the offset begins the text or directly
// follows sentence punctuation.
func isSentenceStart(text string, offset int) bool {
	if offset == 0 {
		return true
	}
	prefix := strings.TrimRight(text[:offset], " \t\n")
	if prefix == "" {
		return true
	}
	last := prefix[len(prefix)-1]
	return last == '.' || last == '!' || last == '?'
}

// relateEntities derives simple co-occurrence relationships between entities
// of the same block, capped at three pairs.
func relateEntities(entities []string) []domain.EntityRelation {
	var out []domain.EntityRelation
	for i := 0; i < len(entities) && len(out) < maxEntityRelations; i++ {
		for j := i + 1; j < len(entities) && len(out) < maxEntityRelations; j++ {
			out = append(out, domain.EntityRelation{
				Left:     entities[i],
				Right:    entities[j],
				Relation: "co_occurs",
			})
		}
	}
	return out
}

func heuristicTitle(blocks []domain.TextBlock) string {
	maxFont := maxFontSize(blocks)
	limit := min(5, len(blocks))
	for i := 0; i < limit; i++ {
		text := strings.TrimSpace(blocks[i].Text)
		if text == "" {
			continue
		}
		if blocks[i].FontSize >= headerFontRatio*maxFont {
			return text
		}
	}
	if len(blocks) > 0 {
		return strings.TrimSpace(blocks[0].Text)
	}
	return ""
}

// Summarize derives the three summary levels offline: the leading sentences
// of the document stand in for the service-generated text.
func (b *HeuristicBuilder) Summarize(
	_ context.Context,
	title string,
	blocks []domain.TextBlock,
	profile domain.ContentProfile,
) (domain.GraphSummaries, error) {
	body := bodyText(blocks, profile)
	sentences := splitSentences(body)

	return domain.GraphSummaries{
		Sentence:  joinSentences(sentences, 1),
		Paragraph: joinSentences(sentences, 4),
		Full:      truncate(body, 4*summaryBlockBudget),
	}, nil
}

func bodyText(blocks []domain.TextBlock, profile domain.ContentProfile) string {
	var sb strings.Builder
	for i, block := range blocks {
		role, ok := profile.ZoneRoleAt(i)
		if ok && role != domain.ZoneBody {
			continue
		}
		sb.WriteString(strings.TrimSpace(block.Text))
		sb.WriteByte(' ')
		if sb.Len() > 8*summaryBlockBudget {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

var sentenceSplit = regexp.MustCompile(`[.!?]\s+`)

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinSentences(sentences []string, n int) string {
	if n > len(sentences) {
		n = len(sentences)
	}
	if n == 0 {
		return ""
	}
	return strings.Join(sentences[:n], ". ") + "."
}

// DescribeFigure returns no description offline; callers fall back to the
// matched caption text.
func (b *HeuristicBuilder) DescribeFigure(context.Context, domain.ImageRecord) (string, error) {
	return "", nil
}
