package service

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/media-attached-filter/internal/auth/middleware"
	"github.com/lk2023060901/media-attached-filter/internal/hooks"
	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	apperrors "github.com/lk2023060901/media-attached-filter/internal/pkg/errors"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/response"
	"go.uber.org/zap"
)

//go:embed templates/upload.html
var templateFS embed.FS

var uploadTmpl = template.Must(template.ParseFS(templateFS, "templates/upload.html"))

// NonceVerifier checks anti-forgery tokens before an AJAX action runs
type NonceVerifier interface {
	Verify(token, action, userID string) error
}

// AdminService 管理端宿主：AJAX 分发与媒体库页面
type AdminService struct {
	hooks   *hooks.Registry
	library *biz.LibraryUseCase
	nonces  NonceVerifier
	screen  string
	logger  *logger.Logger
}

// NewAdminService 创建管理端服务，screen 为媒体库页面 ID
func NewAdminService(reg *hooks.Registry, library *biz.LibraryUseCase, nonces NonceVerifier, screen string, logger *logger.Logger) *AdminService {
	return &AdminService{
		hooks:   reg,
		library: library,
		nonces:  nonces,
		screen:  screen,
		logger:  logger,
	}
}

// RegisterRoutes 注册管理端路由，ajaxMiddleware 仅作用于 AJAX 入口
func (s *AdminService) RegisterRoutes(r *gin.RouterGroup, ajaxMiddleware ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{}, ajaxMiddleware...)
	r.POST("/ajax", append(handlers, s.Ajax)...)
	r.GET("/upload", s.UploadScreen)
}

// Ajax dispatches form field "action" to the registered handler. Unknown
// actions answer 400 "0" and a bad nonce answers 403 "-1".
func (s *AdminService) Ajax(c *gin.Context) {
	name := c.PostForm("action")
	if name == "" {
		name = c.Query("action")
	}

	action, ok := s.hooks.Ajax(name)
	if !ok {
		c.String(http.StatusBadRequest, "0")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if action.NonceAction != "" {
		if err := s.nonces.Verify(c.PostForm("nonce"), action.NonceAction, userID); err != nil {
			s.logger.WithContext(c.Request.Context()).Warn("ajax nonce rejected",
				zap.String("action", name),
				zap.Error(err),
			)
			c.String(http.StatusForbidden, "-1")
			return
		}
	}

	form := c.Request.PostForm
	if form == nil {
		form = url.Values{}
	}

	body, err := action.Handler(c.Request.Context(), &hooks.AjaxRequest{
		Action: name,
		UserID: userID,
		Form:   form,
	})
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("ajax action failed",
			zap.String("action", name),
			zap.Error(err),
		)
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, body)
}

type assetView struct {
	hooks.Asset
	Href string
}

// UploadScreen renders the media library screen: filter controls from the
// hooks, the attachments the main listing query selects, and the enqueued
// assets
func (s *AdminService) UploadScreen(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := middleware.GetUserID(c)
	params := c.Request.URL.Query()
	screen := &hooks.Screen{ID: s.screen, UserID: userID, Params: params}

	controls, err := s.hooks.RenderFilterControls(ctx, screen)
	if err != nil {
		s.fail(c, err)
		return
	}

	assets, err := s.hooks.EnqueueAssets(ctx, screen)
	if err != nil {
		s.fail(c, err)
		return
	}

	page, err := s.library.List(ctx, types.NewMainListingQuery(params))
	if err != nil {
		s.fail(c, err)
		return
	}

	data := struct {
		Action   string
		Controls template.HTML
		Page     *types.AttachmentPage
		Styles   []assetView
		Scripts  []assetView
	}{
		Action:   c.Request.URL.Path,
		Controls: controls,
		Page:     page,
	}
	for _, a := range assets {
		view := assetView{Asset: a, Href: versioned(a.URL, a.Version)}
		if a.Kind == hooks.AssetStyle {
			data.Styles = append(data.Styles, view)
		} else {
			data.Scripts = append(data.Scripts, view)
		}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := uploadTmpl.Execute(c.Writer, data); err != nil {
		s.logger.WithContext(ctx).Error("failed to render screen", zap.Error(err))
	}
}

func (s *AdminService) fail(c *gin.Context, err error) {
	s.logger.WithContext(c.Request.Context()).Error("failed to build screen", zap.Error(err))
	response.HandleError(c, apperrors.Wrap(err, apperrors.ErrInternalServer))
}

// versioned appends ?ver= so a changed file busts browser caches
func versioned(rawURL, version string) string {
	if version == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("ver", version)
	u.RawQuery = q.Encode()
	return u.String()
}
