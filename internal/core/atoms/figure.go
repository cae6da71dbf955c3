package atoms

import (
	"context"
	"fmt"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/figures"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

// BuildFigureAtoms turns extracted image records into figure atoms. One atom
// per image, importance fixed, never part of the reading-order flow. Content
// comes from the builder's figure description when available, otherwise from
// the associated caption text.
func BuildFigureAtoms(
	ctx context.Context,
	builder ports.AtomBuilder,
	documentID string,
	images []domain.ImageRecord,
	blocks []domain.TextBlock,
) ([]domain.KnowledgeAtom, error) {
	out := make([]domain.KnowledgeAtom, 0, len(images))
	for i, image := range images {
		atom := domain.KnowledgeAtom{
			ID:         figureAtomID(documentID, i),
			Type:       domain.AtomFigure,
			Page:       image.Page,
			BBox:       image.BBox,
			Importance: FigureImportance,
		}
		atom.AttachPayload(image.Data)

		if match, ok := figures.FindCaption(image, blocks); ok {
			atom.Caption = match.Text
			atom.FigureNumber = match.Number
		}

		desc, err := builder.DescribeFigure(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("describe figure %d: %w", i, err)
		}
		if desc != "" {
			atom.Content = desc
		} else {
			atom.Content = atom.Caption
		}

		out = append(out, atom)
	}
	return out, nil
}
