package biz

import (
	"context"
	"fmt"

	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/metrics"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/validator"
	"go.uber.org/zap"
)

// DefaultParamName 列表请求中携带父标题的参数名
const DefaultParamName = "maf_attached"

// AttachmentFilter narrows the media listing to children of the post or page
// whose title was typed into the filter control
type AttachmentFilter struct {
	repo   ContentRepo
	param  string
	logger *logger.Logger
}

// NewAttachmentFilter creates an attachment filter reading param from the request
func NewAttachmentFilter(repo ContentRepo, param string, log *logger.Logger) *AttachmentFilter {
	if param == "" {
		param = DefaultParamName
	}
	return &AttachmentFilter{repo: repo, param: param, logger: log}
}

// Param returns the request parameter the filter reads
func (f *AttachmentFilter) Param() string {
	return f.param
}

// Resolve maps title to exactly one post or page. Zero or several matches
// are Unresolvable, not errors.
func (f *AttachmentFilter) Resolve(ctx context.Context, title string) (types.FilterOutcome, error) {
	// two rows are enough to tell one match from many
	ids, err := f.repo.IDsByExactTitle(ctx, title, types.ParentKinds, 2)
	if err != nil {
		return types.FilterOutcome{}, fmt.Errorf("failed to look up title: %w", err)
	}
	if len(ids) == 1 {
		return types.Resolved(ids[0]), nil
	}
	return types.Unresolvable(), nil
}

// ApplyFilter sets post_parent on query to the id title resolves to, or to
// -1 when it does not resolve. An empty title leaves query untouched.
func (f *AttachmentFilter) ApplyFilter(ctx context.Context, title string, query types.QuerySetter) error {
	_, err := f.apply(ctx, title, query)
	return err
}

func (f *AttachmentFilter) apply(ctx context.Context, title string, query types.QuerySetter) (string, error) {
	if title == "" {
		return metrics.FilterInactive, nil
	}

	outcome, err := f.Resolve(ctx, title)
	if err != nil {
		return metrics.FilterError, err
	}

	query.Set(types.VarPostParent, outcome.ParentID)

	f.logger.WithContext(ctx).Debug("attachment filter applied",
		zap.String("title", title),
		zap.String("outcome", outcome.String()),
		zap.Int64("post_parent", outcome.ParentID),
	)
	return outcome.String(), nil
}

// PreListingQuery is the pre-listing-query hook. It only acts on the main
// listing query and reads the typed title from the request parameters.
func (f *AttachmentFilter) PreListingQuery(ctx context.Context, query *types.ListingQuery) error {
	if !query.Main() {
		return nil
	}

	raw, _ := query.Param(f.param)
	outcome, err := f.apply(ctx, validator.SanitizeText(raw).String(), query)
	metrics.FilterOutcomes.WithLabelValues(outcome).Inc()
	return err
}
