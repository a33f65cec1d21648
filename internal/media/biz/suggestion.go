package biz

import (
	"context"
	"fmt"

	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/validator"
	"go.uber.org/zap"
)

// SuggestionUseCase resolves a partial keyword to candidate parent titles
type SuggestionUseCase struct {
	repo   ContentRepo
	limit  int
	logger *logger.Logger
}

// NewSuggestionUseCase creates a suggestion use case
func NewSuggestionUseCase(repo ContentRepo, limit int, log *logger.Logger) *SuggestionUseCase {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	return &SuggestionUseCase{repo: repo, limit: limit, logger: log}
}

// ResolveSuggestions searches post and page titles for keyword and returns
// id → title in relevance order. A nil keyword, or one with nothing left
// after sanitising, fails with ErrMissingKeyword.
func (uc *SuggestionUseCase) ResolveSuggestions(ctx context.Context, keyword *string) (*types.SearchResult, error) {
	kw, err := validator.RequireText(keyword)
	if err != nil {
		return nil, ErrMissingKeyword
	}

	q := NewSearchQuery(kw.String(), uc.limit)
	ids, err := uc.repo.SearchTitleIDs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search titles: %w", err)
	}

	result := types.NewSearchResult()
	if len(ids) == 0 {
		return result, nil
	}

	titles, err := uc.repo.TitlesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load titles: %w", err)
	}

	for _, id := range ids {
		title, ok := titles[id]
		if !ok {
			// removed between the two lookups
			continue
		}
		result.Set(id, title)
	}

	uc.logger.WithContext(ctx).Debug("suggestions resolved",
		zap.String("keyword", kw.String()),
		zap.Int("terms", len(q.Terms)),
		zap.Int("results", result.Len()),
	)
	return result, nil
}
