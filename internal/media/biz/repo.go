package biz

import (
	"context"
	"io"
	"net/url"

	"github.com/lk2023060901/media-attached-filter/internal/media/types"
)

// ContentRepo is the content store's read side used by the resolver and the filter
type ContentRepo interface {
	// SearchTitleIDs returns the ids of items whose titles match q, best match first
	SearchTitleIDs(ctx context.Context, q *SearchQuery) ([]int64, error)
	// TitlesByIDs returns the display title of each id that still exists
	TitlesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
	// IDsByExactTitle returns up to limit ids of kinds whose title equals title
	IDsByExactTitle(ctx context.Context, title string, kinds []string, limit int) ([]int64, error)
	// GetByID returns ErrContentNotFound when id does not exist
	GetByID(ctx context.Context, id int64) (*types.ContentItem, error)
}

// AttachmentRepo stores attachment rows
type AttachmentRepo interface {
	List(ctx context.Context, filter *types.AttachmentFilter) ([]*types.ContentItem, int64, error)
	Create(ctx context.Context, item *types.ContentItem) error
}

// BlobStore keeps attachment files
type BlobStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, objectName string) error
	PresignedGet(ctx context.Context, objectName, filename string) (*url.URL, error)
}
