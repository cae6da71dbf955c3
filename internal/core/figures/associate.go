// Package figures attaches the nearest plausible caption to image-derived
// atoms using page geometry.
package figures

import (
	"math"
	"regexp"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

const (
	// CaptionWindow is the vertical gap (page units) within which a caption
	// block counts as adjacent to the image.
	CaptionWindow = 100.0

	// AbovePenalty is added to an above-candidate's distance before
	// comparison, so a below-candidate within the window always wins.
	AbovePenalty = 200.0
)

var captionLead = regexp.MustCompile(`(?i)^(figure|fig\.?|table|chart)\s*\.?\s*(\d+[a-z]?)\s*[:.]?\s*`)

// Match is a resolved caption for one image.
type Match struct {
	BlockIndex int
	Text       string
	// Number is the normalized figure number parsed from the caption lead,
	// e.g. "Figure 3:" -> "3".
	Number string
}

// FindCaption searches same-page caption-pattern blocks in three passes:
// strictly below within the window (smallest gap wins), then strictly above
// within the window with the distance penalty, then the closest caption
// block anywhere on the page by vertical-center distance. Absence of any
// caption-pattern block on the page is not an error.
func FindCaption(image domain.ImageRecord, blocks []domain.TextBlock) (Match, bool) {
	bestIdx := -1
	bestDist := math.MaxFloat64

	consider := func(idx int, dist float64) {
		if dist < bestDist {
			bestDist = dist
			bestIdx = idx
		}
	}

	// Pass 1+2: adjacent candidates, below preferred via the penalty.
	for i, block := range blocks {
		if block.Page != image.Page || !captionLead.MatchString(strings.TrimSpace(block.Text)) {
			continue
		}
		if gap := block.BBox.Y0 - image.BBox.Y1; gap >= 0 && gap <= CaptionWindow {
			consider(i, gap)
			continue
		}
		if gap := image.BBox.Y0 - block.BBox.Y1; gap >= 0 && gap <= CaptionWindow {
			consider(i, gap+AbovePenalty)
		}
	}

	// Pass 3: anything on the page, by center distance.
	if bestIdx < 0 {
		for i, block := range blocks {
			if block.Page != image.Page || !captionLead.MatchString(strings.TrimSpace(block.Text)) {
				continue
			}
			consider(i, math.Abs(block.BBox.VerticalCenter()-image.BBox.VerticalCenter()))
		}
	}

	if bestIdx < 0 {
		return Match{}, false
	}

	text := strings.TrimSpace(blocks[bestIdx].Text)
	return Match{
		BlockIndex: bestIdx,
		Text:       text,
		Number:     parseFigureNumber(text),
	}, true
}

func parseFigureNumber(caption string) string {
	m := captionLead.FindStringSubmatch(caption)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[2])
}
