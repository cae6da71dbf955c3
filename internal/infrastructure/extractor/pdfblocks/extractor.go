// Package pdfblocks extracts positioned text blocks from stored PDF
// documents. Coordinates are normalized to a top-left origin so downstream
// geometry (zoning, caption association) reads top-down.
package pdfblocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

const (
	// lineTolerance groups glyph runs onto the same visual line.
	lineTolerance = 2.0

	// blockGapFactor breaks a block when the vertical gap between lines
	// exceeds this multiple of the font size.
	blockGapFactor = 1.8

	defaultPageHeight = 792.0
)

type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (result *domain.ExtractionResult, err error) {
	rc, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}

	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = domain.WrapError(domain.ErrInvalidInput, "parse pdf", fmt.Errorf("malformed document: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse pdf", err)
	}

	out := &domain.ExtractionResult{PageCount: reader.NumPage()}
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		out.Blocks = append(out.Blocks, pageBlocks(page, pageNum-1)...)
	}
	return out, nil
}

// textLine is one visual line of glyph runs sharing a baseline.
type textLine struct {
	text     strings.Builder
	x0, x1   float64
	baseline float64
	fontSize float64
	bold     bool
}

func pageBlocks(page pdf.Page, pageIndex int) []domain.TextBlock {
	height := pageHeight(page)
	lines := collectLines(page.Content().Text)

	var blocks []domain.TextBlock
	var current []*textLine
	flush := func() {
		if block, ok := mergeLines(current, pageIndex, height); ok {
			blocks = append(blocks, block)
		}
		current = nil
	}

	for _, line := range lines {
		if len(current) > 0 {
			prev := current[len(current)-1]
			gap := math.Abs(prev.baseline - line.baseline)
			sizeChanged := math.Abs(prev.fontSize-line.fontSize) > 0.5
			if gap > blockGapFactor*math.Max(prev.fontSize, 1) || sizeChanged || prev.bold != line.bold {
				flush()
			}
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

// collectLines groups glyph runs by baseline in content-stream order.
func collectLines(texts []pdf.Text) []*textLine {
	var lines []*textLine
	var line *textLine

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if line == nil || math.Abs(line.baseline-t.Y) > lineTolerance {
			line = &textLine{
				x0:       t.X,
				x1:       t.X + t.W,
				baseline: t.Y,
				fontSize: t.FontSize,
				bold:     isBoldFont(t.Font),
			}
			lines = append(lines, line)
		}
		line.text.WriteString(t.S)
		if t.X < line.x0 {
			line.x0 = t.X
		}
		if t.X+t.W > line.x1 {
			line.x1 = t.X + t.W
		}
	}
	return lines
}

func mergeLines(lines []*textLine, pageIndex int, pageHeight float64) (domain.TextBlock, bool) {
	var sb strings.Builder
	x0, x1 := math.MaxFloat64, -math.MaxFloat64
	topBaseline, bottomBaseline := -math.MaxFloat64, math.MaxFloat64
	var fontSize float64
	bold := true

	for _, line := range lines {
		text := strings.TrimSpace(line.text.String())
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)

		x0 = math.Min(x0, line.x0)
		x1 = math.Max(x1, line.x1)
		topBaseline = math.Max(topBaseline, line.baseline)
		bottomBaseline = math.Min(bottomBaseline, line.baseline)
		fontSize = math.Max(fontSize, line.fontSize)
		bold = bold && line.bold
	}
	if sb.Len() == 0 {
		return domain.TextBlock{}, false
	}

	// PDF space grows upward; flip to a top-left origin.
	return domain.TextBlock{
		Text: sb.String(),
		Page: pageIndex,
		BBox: domain.BBox{
			X0: x0,
			Y0: pageHeight - topBaseline - fontSize,
			X1: x1,
			Y1: pageHeight - bottomBaseline,
		},
		FontSize: fontSize,
		Bold:     bold,
	}, true
}

func pageHeight(page pdf.Page) float64 {
	box := page.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return defaultPageHeight
	}
	height := box.Index(3).Float64() - box.Index(1).Float64()
	if height <= 0 {
		return defaultPageHeight
	}
	return height
}

func isBoldFont(font string) bool {
	lower := strings.ToLower(font)
	return strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy")
}
