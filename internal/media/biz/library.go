package biz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/database"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/minio"
	"go.uber.org/zap"
)

// DefaultMaxUploadSize 单个附件默认大小上限（32MB）
const DefaultMaxUploadSize int64 = 32 << 20

// ListingRunner runs the pre-listing hooks on a query before it executes
type ListingRunner interface {
	RunPreListingQuery(ctx context.Context, query *types.ListingQuery) error
}

// UploadRequest 上传附件请求
type UploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
	ParentID    int64 // 0 = unattached
}

// LibraryUseCase lists and uploads attachments
type LibraryUseCase struct {
	attachments AttachmentRepo
	content     ContentRepo
	blobs       BlobStore // nil when blob storage is off
	hooks       ListingRunner
	maxSize     int64
	logger      *logger.Logger
}

// NewLibraryUseCase creates a library use case. blobs may be nil.
func NewLibraryUseCase(attachments AttachmentRepo, content ContentRepo, blobs BlobStore, hooks ListingRunner, maxSize int64, log *logger.Logger) *LibraryUseCase {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &LibraryUseCase{
		attachments: attachments,
		content:     content,
		blobs:       blobs,
		hooks:       hooks,
		maxSize:     maxSize,
		logger:      log,
	}
}

// List runs the pre-listing hooks on query and returns the page of
// attachments it selects
func (uc *LibraryUseCase) List(ctx context.Context, query *types.ListingQuery) (*types.AttachmentPage, error) {
	if err := uc.hooks.RunPreListingQuery(ctx, query); err != nil {
		return nil, fmt.Errorf("pre-listing hooks failed: %w", err)
	}

	page, _ := query.Int64(types.VarPage)
	perPage, _ := query.Int64(types.VarPerPage)
	filter := &types.AttachmentFilter{}
	filter.Page, filter.PageSize = database.NormalizePage(int(page), int(perPage))
	if parent, ok := query.Int64(types.VarPostParent); ok {
		filter.Parent = &parent
	}

	items, total, err := uc.attachments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	out := &types.AttachmentPage{
		Items:      make([]*types.Attachment, 0, len(items)),
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PageSize,
		TotalPages: database.TotalPages(total, filter.PageSize),
	}
	for _, item := range items {
		out.Items = append(out.Items, uc.toAttachment(ctx, item))
	}
	return out, nil
}

func (uc *LibraryUseCase) toAttachment(ctx context.Context, item *types.ContentItem) *types.Attachment {
	a := &types.Attachment{
		ID:       item.ID,
		Title:    item.Title,
		Parent:   item.Parent,
		MimeType: item.MimeType,
		Date:     item.Date,
	}
	if uc.blobs == nil || item.ObjectKey == "" {
		return a
	}

	u, err := uc.blobs.PresignedGet(ctx, item.ObjectKey, path.Base(item.ObjectKey))
	if err != nil {
		// the listing still works without a download link
		uc.logger.WithContext(ctx).Warn("failed to presign attachment",
			zap.Int64("id", item.ID),
			zap.Error(err),
		)
		return a
	}
	a.URL = u.String()
	return a
}

// Upload stores the file and creates an attachment row attached to ParentID
func (uc *LibraryUseCase) Upload(ctx context.Context, req *UploadRequest) (*types.Attachment, error) {
	if uc.blobs == nil {
		return nil, ErrStorageDisabled
	}
	if req.Reader == nil || req.Size <= 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if req.Size > uc.maxSize {
		return nil, ErrFileTooLarge
	}

	if req.ParentID != 0 {
		if err := uc.checkParent(ctx, req.ParentID); err != nil {
			return nil, err
		}
	}

	filename := minio.SanitizeObjectName(req.Filename)
	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = minio.DetectContentType(filename)
	}

	now := time.Now().UTC()
	key := minio.GenerateObjectKey("attachments", filename, now)
	if err := uc.blobs.Put(ctx, key, req.Reader, req.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	item := &types.ContentItem{
		Type:      types.TypeAttachment,
		Status:    types.StatusInherit,
		Title:     strings.TrimSuffix(filename, path.Ext(filename)),
		Parent:    req.ParentID,
		MimeType:  contentType,
		ObjectKey: key,
		Date:      now,
		Modified:  now,
	}
	if err := uc.attachments.Create(ctx, item); err != nil {
		if rmErr := uc.blobs.Remove(ctx, key); rmErr != nil {
			uc.logger.WithContext(ctx).Error("failed to remove orphaned object",
				zap.String("key", key),
				zap.Error(rmErr),
			)
		}
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	uc.logger.WithContext(ctx).Info("attachment uploaded",
		zap.Int64("id", item.ID),
		zap.Int64("parent", item.Parent),
		zap.String("key", key),
		zap.Int64("size", req.Size),
	)
	return uc.toAttachment(ctx, item), nil
}

func (uc *LibraryUseCase) checkParent(ctx context.Context, id int64) error {
	parent, err := uc.content.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return ErrParentNotFound
		}
		return fmt.Errorf("failed to load parent: %w", err)
	}
	if !slices.Contains(types.ParentKinds, parent.Type) || slices.Contains(types.ExcludedFromAny, parent.Status) {
		return ErrParentNotFound
	}
	return nil
}
