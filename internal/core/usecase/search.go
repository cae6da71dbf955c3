package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/docgraph/internal/core/domain"
	"github.com/kirillkom/docgraph/internal/core/ports"
)

const defaultSearchLimit = 10

// SearchAtomsUseCase answers semantic queries over a project's indexed atoms.
type SearchAtomsUseCase struct {
	embedder ports.Embedder
	index    ports.AtomIndex
}

func NewSearchAtomsUseCase(embedder ports.Embedder, index ports.AtomIndex) *SearchAtomsUseCase {
	return &SearchAtomsUseCase{embedder: embedder, index: index}
}

func (uc *SearchAtomsUseCase) Search(ctx context.Context, projectID, query string, limit int) ([]domain.RetrievedAtom, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search atoms", errors.New("empty query"))
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.index.Search(ctx, projectID, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("search atom index: %w", err)
	}
	return hits, nil
}
