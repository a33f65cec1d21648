package service

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/media-attached-filter/internal/auth/middleware"
	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	apperrors "github.com/lk2023060901/media-attached-filter/internal/pkg/errors"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/metrics"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/response"
	"go.uber.org/zap"
)

// MediaService 媒体库 HTTP 服务
type MediaService struct {
	library *biz.LibraryUseCase
	logger  *logger.Logger
}

// NewMediaService 创建媒体库服务
func NewMediaService(library *biz.LibraryUseCase, logger *logger.Logger) *MediaService {
	return &MediaService{
		library: library,
		logger:  logger,
	}
}

// RegisterRoutes 注册媒体库路由
func (s *MediaService) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/media", s.ListMedia)
	r.POST("/media", s.UploadMedia)
}

// ListMedia 列出附件，maf_attached 经预查询钩子转换为父文章过滤
func (s *MediaService) ListMedia(c *gin.Context) {
	query := types.NewMainListingQuery(c.Request.URL.Query())

	page, err := s.library.List(c.Request.Context(), query)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, page)
}

// UploadMedia 上传附件
func (s *MediaService) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	var parentID int64
	if raw := c.PostForm("post_parent"); raw != "" {
		parentID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || parentID < 0 {
			response.BadRequest(c, "post_parent must be a non-negative integer")
			return
		}
	}

	f, err := file.Open()
	if err != nil {
		s.handleError(c, err)
		return
	}
	defer f.Close()

	attachment, err := s.library.Upload(c.Request.Context(), &biz.UploadRequest{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Reader:      f,
		ParentID:    parentID,
	})
	if err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		s.handleError(c, err)
		return
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	userID, _ := middleware.GetUserID(c)
	s.logger.WithContext(c.Request.Context()).Info("media uploaded",
		zap.String("user_id", userID),
		zap.Int64("id", attachment.ID),
	)
	response.Created(c, attachment)
}

// handleError 将业务错误映射为 HTTP 响应
func (s *MediaService) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrParentNotFound):
		response.ErrorWithCode(c, apperrors.ErrMediaParentNotFound)
	case errors.Is(err, biz.ErrInvalidFile), errors.Is(err, biz.ErrFileTooLarge):
		response.ErrorWithCode(c, apperrors.ErrMediaInvalidFile, err.Error())
	case errors.Is(err, biz.ErrStorageDisabled):
		response.ErrorWithCode(c, apperrors.ErrMediaStorageOff)
	case errors.Is(err, biz.ErrMissingKeyword):
		response.BadRequest(c, err.Error())
	default:
		s.logger.WithContext(c.Request.Context()).Error("internal error", zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrInternalServer))
	}
}
