package data

import (
	"context"
	"strings"
	"time"

	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentItemPO 内容数据库模型（文章、页面、附件共用一张表）
type ContentItemPO struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	PostType     string    `gorm:"size:20;not null;default:'post';index:idx_posts_type_status_date,priority:1"`
	PostStatus   string    `gorm:"size:20;not null;default:'publish';index:idx_posts_type_status_date,priority:2"`
	PostTitle    string    `gorm:"type:text;not null;default:''"`
	PostParent   int64     `gorm:"not null;default:0;index:idx_posts_parent"`
	PostMimeType string    `gorm:"size:100;not null;default:''"`
	ObjectKey    string    `gorm:"size:512;not null;default:''"`
	PostDate     time.Time `gorm:"not null;index:idx_posts_type_status_date,priority:3"`
	PostModified time.Time `gorm:"not null"`
}

func (ContentItemPO) TableName() string {
	return "posts"
}

// likeEscape is the ESCAPE clause matching database.EscapeLike
const likeEscape = ` ESCAPE '\'`

// ContentRepo 内容仓储实现
type ContentRepo struct {
	db *database.DB
}

// NewContentRepo 创建内容仓储
func NewContentRepo(db *database.DB) biz.ContentRepo {
	return &ContentRepo{db: db}
}

// visible 限定类型并排除回收站和自动草稿
func visible(kinds, excludeStatuses []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("post_type IN ?", kinds)
		if len(excludeStatuses) > 0 {
			db = db.Where("post_status NOT IN ?", excludeStatuses)
		}
		return db
	}
}

// containsPattern 不区分大小写的子串匹配模式
func containsPattern(term string) string {
	return "%" + database.EscapeLike(strings.ToLower(term)) + "%"
}

// SearchTitleIDs 按标题搜索，只返回 ID
func (r *ContentRepo) SearchTitleIDs(ctx context.Context, q *biz.SearchQuery) ([]int64, error) {
	query := r.db.WithContext(ctx).GetDB().
		Model(&ContentItemPO{}).
		Scopes(visible(q.Kinds, q.ExcludeStatuses))

	for _, term := range q.Included() {
		query = query.Where("LOWER(post_title) LIKE ?"+likeEscape, containsPattern(term))
	}
	for _, term := range q.Excluded() {
		query = query.Where("LOWER(post_title) NOT LIKE ?"+likeEscape, containsPattern(term))
	}

	// exact title, then the whole phrase, then newest first
	order := clause.OrderBy{Expression: clause.Expr{
		SQL: "CASE WHEN post_title = ? THEN 0 WHEN LOWER(post_title) LIKE ?" + likeEscape +
			" THEN 1 ELSE 2 END, post_date DESC, id DESC",
		Vars:               []interface{}{q.Phrase, containsPattern(q.Phrase)},
		WithoutParentheses: true,
	}}

	var ids []int64
	err := query.Clauses(order).Limit(q.Limit).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TitlesByIDs 批量获取标题
func (r *ContentRepo) TitlesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	titles := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	var rows []struct {
		ID        int64
		PostTitle string
	}
	err := r.db.WithContext(ctx).GetDB().
		Model(&ContentItemPO{}).
		Select("id", "post_title").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		titles[row.ID] = row.PostTitle
	}
	return titles, nil
}

// IDsByExactTitle 标题精确匹配（区分大小写）
func (r *ContentRepo) IDsByExactTitle(ctx context.Context, title string, kinds []string, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).GetDB().
		Model(&ContentItemPO{}).
		Scopes(visible(kinds, types.ExcludedFromAny)).
		Where("post_title = ?", title).
		Order("post_date DESC").
		Order("id DESC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetByID 根据ID获取内容
func (r *ContentRepo) GetByID(ctx context.Context, id int64) (*types.ContentItem, error) {
	var po ContentItemPO
	err := r.db.WithContext(ctx).GetDB().Where("id = ?", id).First(&po).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrContentNotFound
		}
		return nil, err
	}
	return toContentItem(&po), nil
}

func toContentItem(po *ContentItemPO) *types.ContentItem {
	return &types.ContentItem{
		ID:        po.ID,
		Type:      po.PostType,
		Status:    po.PostStatus,
		Title:     po.PostTitle,
		Parent:    po.PostParent,
		MimeType:  po.PostMimeType,
		ObjectKey: po.ObjectKey,
		Date:      po.PostDate,
		Modified:  po.PostModified,
	}
}

func fromContentItem(item *types.ContentItem) *ContentItemPO {
	return &ContentItemPO{
		ID:           item.ID,
		PostType:     item.Type,
		PostStatus:   item.Status,
		PostTitle:    item.Title,
		PostParent:   item.Parent,
		PostMimeType: item.MimeType,
		ObjectKey:    item.ObjectKey,
		PostDate:     item.Date,
		PostModified: item.Modified,
	}
}
