package data

import (
	"context"
	"time"

	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/database"
	"gorm.io/gorm"
)

// AttachmentRepo 附件仓储实现
type AttachmentRepo struct {
	db *database.DB
}

// NewAttachmentRepo 创建附件仓储
func NewAttachmentRepo(db *database.DB) biz.AttachmentRepo {
	return &AttachmentRepo{db: db}
}

// List 分页列出附件，可按父文章过滤
func (r *AttachmentRepo) List(ctx context.Context, filter *types.AttachmentFilter) ([]*types.ContentItem, int64, error) {
	query := r.db.WithContext(ctx).GetDB().
		Model(&ContentItemPO{}).
		Where("post_type = ?", types.TypeAttachment).
		Where("post_status IN ?", types.AttachmentStatuses).
		Scopes(database.WhereIf(filter.Parent != nil, "post_parent = ?", derefParent(filter.Parent))).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []ContentItemPO
	err := query.
		Order("post_date DESC").
		Order("id DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize)).
		Find(&pos).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*types.ContentItem, len(pos))
	for i := range pos {
		items[i] = toContentItem(&pos[i])
	}
	return items, total, nil
}

// Create 创建附件记录，回填 ID
func (r *AttachmentRepo) Create(ctx context.Context, item *types.ContentItem) error {
	po := fromContentItem(item)
	po.PostType = types.TypeAttachment
	if po.PostDate.IsZero() {
		po.PostDate = time.Now().UTC()
	}
	if po.PostModified.IsZero() {
		po.PostModified = po.PostDate
	}

	if err := r.db.WithContext(ctx).GetDB().Create(po).Error; err != nil {
		return err
	}
	item.ID = po.ID
	return nil
}

func derefParent(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
