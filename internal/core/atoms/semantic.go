package atoms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

const (
	// summaryHeadBlocks / summaryTailBlocks bound the abbreviated context
	// used for summarization of large documents.
	summaryHeadBlocks = 15
	summaryTailBlocks = 10

	// smallDocBlockLimit is the size up to which the whole document fits the
	// summary context.
	smallDocBlockLimit = 25

	// summaryBlockBudget truncates each block in the summary context.
	summaryBlockBudget = 280

	defaultImportance = 0.5
)

// SemanticBuilder delegates block classification to the external service,
// chunked to respect response-size limits.
type SemanticBuilder struct {
	svc    ports.ClassificationService
	vision ports.VisionService
}

func NewSemanticBuilder(svc ports.ClassificationService, vision ports.VisionService) *SemanticBuilder {
	return &SemanticBuilder{svc: svc, vision: vision}
}

type chunkRange struct {
	start int
	end   int // exclusive
}

func chunkRanges(total int) []chunkRange {
	var out []chunkRange
	for start := 0; start < total; start += ChunkBlockCount {
		end := start + ChunkBlockCount
		if end > total {
			end = total
		}
		out = append(out, chunkRange{start: start, end: end})
	}
	return out
}

// Build classifies all blocks and assembles atoms, hierarchy and flow.
// Chunk requests are dispatched concurrently; results are reassembled in
// chunk order regardless of completion order. Any failed or out-of-range
// chunk response fails the whole document.
func (b *SemanticBuilder) Build(
	ctx context.Context,
	documentID string,
	blocks []domain.TextBlock,
	profile domain.ContentProfile,
) (*ports.BuildResult, error) {
	if len(blocks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "build atoms", errors.New("no text blocks"))
	}

	ranges := chunkRanges(len(blocks))
	results, err := b.classifyChunks(ctx, blocks, profile, ranges)
	if err != nil {
		return nil, err
	}

	byIndex := map[int]ports.BlockClassification{}
	for i, res := range results {
		for _, bc := range res.Blocks {
			if bc.BlockIndex < ranges[i].start || bc.BlockIndex >= ranges[i].end {
				return nil, domain.WrapError(domain.ErrClassification, "assemble chunks",
					fmt.Errorf("block index %d outside requested range [%d,%d)", bc.BlockIndex, ranges[i].start, ranges[i].end))
			}
			byIndex[bc.BlockIndex] = bc
		}
	}

	atoms := make([]domain.KnowledgeAtom, 0, len(blocks))
	flow := make([]string, 0, len(blocks))
	byID := make(map[string]domain.KnowledgeAtom, len(blocks))

	for i, block := range blocks {
		atom := domain.KnowledgeAtom{
			ID:         textAtomID(documentID, i),
			Type:       domain.AtomParagraph,
			Content:    block.Text,
			Page:       block.Page,
			BBox:       block.BBox,
			Importance: defaultImportance,
		}
		if bc, ok := byIndex[i]; ok {
			atom.Type = canonicalType(bc.Type)
			atom.Topics = filterTopics(bc.Topics, i, profile)
			atom.Entities = cleanEntities(bc.Entities)
			atom.Importance = clampImportance(bc.Importance)
		}
		atoms = append(atoms, atom)
		flow = append(flow, atom.ID)
		byID[atom.ID] = atom
	}

	result := &ports.BuildResult{
		Atoms:     atoms,
		Hierarchy: buildHierarchy(flow, byID),
		Flow:      flow,
		Title:     strings.TrimSpace(results[0].Title),
		Authors:   results[0].Authors,
	}
	return result, nil
}

// classifyChunks fans the chunk requests out concurrently and returns the
// responses ordered by chunk index, never by arrival order.
func (b *SemanticBuilder) classifyChunks(
	ctx context.Context,
	blocks []domain.TextBlock,
	profile domain.ContentProfile,
	ranges []chunkRange,
) ([]ports.ChunkResult, error) {
	results := make([]ports.ChunkResult, len(ranges))
	errs := make([]error, len(ranges))

	chunkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i int, r chunkRange) {
			defer wg.Done()
			res, err := b.svc.ClassifyChunk(chunkCtx, ports.ChunkRequest{
				DocumentType: profile.DocumentType,
				ChunkStart:   r.start,
				ChunkEnd:     r.end,
				TotalBlocks:  len(blocks),
				Context:      buildChunkContext(blocks, r),
				WantTitle:    i == 0,
			})
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = res
		}(i, r)
	}
	wg.Wait()

	// Report the earliest chunk's real error. The first failure cancels its
	// in-flight siblings, so their context.Canceled is collateral and must
	// not mask the failure that would let the fallback builder degrade.
	cause := -1
	for i, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			cause = i
			break
		}
		if cause == -1 {
			cause = i
		}
	}
	if cause >= 0 {
		return nil, domain.WrapError(domain.ErrClassification,
			fmt.Sprintf("classify chunk %d", cause), errs[cause])
	}
	return results, nil
}

// buildChunkContext renders the blocks of one chunk with layout hints so the
// service classifies exactly that range.
func buildChunkContext(blocks []domain.TextBlock, r chunkRange) string {
	var sb strings.Builder
	for i := r.start; i < r.end; i++ {
		block := blocks[i]
		fmt.Fprintf(&sb, "[%d] p.%d size=%.1f bold=%v | %s\n",
			i, block.Page+1, block.FontSize, block.Bold, strings.TrimSpace(block.Text))
	}
	return sb.String()
}

// Summarize produces the three summary levels from an abbreviated context in
// a single request.
func (b *SemanticBuilder) Summarize(
	ctx context.Context,
	title string,
	blocks []domain.TextBlock,
	profile domain.ContentProfile,
) (domain.GraphSummaries, error) {
	summaries, err := b.svc.Summarize(ctx, ports.SummaryRequest{
		Title:        title,
		DocumentType: profile.DocumentType,
		Context:      buildSummaryContext(blocks),
	})
	if err != nil {
		return domain.GraphSummaries{}, fmt.Errorf("summarize document: %w", err)
	}
	return summaries, nil
}

// buildSummaryContext uses the whole document when small, otherwise the first
// and last blocks, each truncated to a fixed character budget.
func buildSummaryContext(blocks []domain.TextBlock) string {
	var selected []domain.TextBlock
	var gap bool
	if len(blocks) <= smallDocBlockLimit {
		selected = blocks
	} else {
		selected = append(selected, blocks[:summaryHeadBlocks]...)
		selected = append(selected, blocks[len(blocks)-summaryTailBlocks:]...)
		gap = true
	}

	var sb strings.Builder
	for i, block := range selected {
		if gap && i == summaryHeadBlocks {
			sb.WriteString("[...]\n")
		}
		sb.WriteString(truncate(strings.TrimSpace(block.Text), summaryBlockBudget))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// truncate cuts on a rune boundary so the summary context stays valid UTF-8.
func truncate(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// DescribeFigure asks the vision service for a short description.
func (b *SemanticBuilder) DescribeFigure(ctx context.Context, image domain.ImageRecord) (string, error) {
	if b.vision == nil {
		return "", nil
	}
	desc, err := b.vision.DescribeImage(ctx, image.Data)
	if err != nil {
		return "", fmt.Errorf("describe figure: %w", err)
	}
	return strings.TrimSpace(desc), nil
}
