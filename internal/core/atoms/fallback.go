package atoms

import (
	"context"
	"log/slog"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

// FallbackBuilder degrades to the offline strategy when the classification
// service is unavailable. Degraded operation is deliberate, not an error;
// malformed responses stay fatal because they indicate contract drift, not
// unavailability.
type FallbackBuilder struct {
	primary  ports.AtomBuilder
	fallback ports.AtomBuilder
}

func NewFallbackBuilder(primary, fallback ports.AtomBuilder) *FallbackBuilder {
	return &FallbackBuilder{primary: primary, fallback: fallback}
}

func (b *FallbackBuilder) Build(
	ctx context.Context,
	documentID string,
	blocks []domain.TextBlock,
	profile domain.ContentProfile,
) (*ports.BuildResult, error) {
	result, err := b.primary.Build(ctx, documentID, blocks, profile)
	if err == nil {
		return result, nil
	}
	if !degradable(err) {
		return nil, err
	}
	slog.Warn("atom_builder_degraded", "document_id", documentID, "error", err)
	return b.fallback.Build(ctx, documentID, blocks, profile)
}

func (b *FallbackBuilder) Summarize(
	ctx context.Context,
	title string,
	blocks []domain.TextBlock,
	profile domain.ContentProfile,
) (domain.GraphSummaries, error) {
	summaries, err := b.primary.Summarize(ctx, title, blocks, profile)
	if err == nil {
		return summaries, nil
	}
	if !degradable(err) {
		return domain.GraphSummaries{}, err
	}
	return b.fallback.Summarize(ctx, title, blocks, profile)
}

func (b *FallbackBuilder) DescribeFigure(ctx context.Context, image domain.ImageRecord) (string, error) {
	desc, err := b.primary.DescribeFigure(ctx, image)
	if err == nil {
		return desc, nil
	}
	if !degradable(err) {
		return "", err
	}
	return b.fallback.DescribeFigure(ctx, image)
}

// degradable limits the fallback to service unavailability. Cancellation and
// contract violations propagate unchanged.
func degradable(err error) bool {
	if err == nil {
		return false
	}
	if domain.IsKind(err, context.Canceled) || domain.IsKind(err, context.DeadlineExceeded) {
		return false
	}
	return domain.IsKind(err, domain.ErrTemporary)
}
