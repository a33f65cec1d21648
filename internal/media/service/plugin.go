package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lk2023060901/media-attached-filter/internal/hooks"
	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/metrics"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/validator"
	"go.uber.org/zap"
)

//go:embed templates/controls.html
var templateFS embed.FS

var controlsTmpl = template.Must(template.ParseFS(templateFS, "templates/controls.html"))

// Asset handles and the element id carrying the client config
const (
	StyleHandle  = "maf-styles"
	ScriptHandle = "maf-js"
	ConfigID     = "maf-config"

	placeholder = "Attached to .."
)

// Options 插件配置
type Options struct {
	ParamName   string
	Screen      string
	AjaxAction  string
	NonceAction string
	AjaxURL     string
	// AssetsDir holds admin/styles.css and admin/js.js on disk
	AssetsDir string
	// AssetsURL is the URL AssetsDir is served under
	AssetsURL string
}

// NonceIssuer creates anti-forgery tokens for the client config
type NonceIssuer interface {
	Create(action, userID string) (string, error)
}

// ClientConfig is handed to the admin script as JSON
type ClientConfig struct {
	AjaxURL string `json:"ajax_url"`
	Nonce   string `json:"maf_search_nonce"`
}

// Plugin wires the suggestion resolver and the attachment filter into the
// admin host's hooks
type Plugin struct {
	suggestions *biz.SuggestionUseCase
	filter      *biz.AttachmentFilter
	nonces      NonceIssuer
	opts        Options
	logger      *logger.Logger
}

// NewPlugin 创建媒体过滤插件
func NewPlugin(suggestions *biz.SuggestionUseCase, filter *biz.AttachmentFilter, nonces NonceIssuer, opts Options, log *logger.Logger) *Plugin {
	if opts.ParamName == "" {
		opts.ParamName = filter.Param()
	}
	return &Plugin{
		suggestions: suggestions,
		filter:      filter,
		nonces:      nonces,
		opts:        opts,
		logger:      log,
	}
}

// Register 注册全部钩子
func (p *Plugin) Register(reg *hooks.Registry) error {
	reg.OnFilterControls(p.RenderControls)
	reg.OnEnqueueAssets(p.EnqueueAssets)
	reg.OnPreListingQuery(p.filter.PreListingQuery)
	return reg.OnAjax(p.opts.AjaxAction, p.opts.NonceAction, p.Search)
}

// Search answers the suggestion AJAX action with {"success", "results"}
func (p *Plugin) Search(ctx context.Context, req *hooks.AjaxRequest) (any, error) {
	var keyword *string
	if values, ok := req.Form["keyword"]; ok && len(values) > 0 {
		keyword = &values[0]
	}

	result, err := p.suggestions.ResolveSuggestions(ctx, keyword)
	switch {
	case errors.Is(err, biz.ErrMissingKeyword):
		metrics.Suggestions.WithLabelValues(metrics.SuggestionMissing).Inc()
		return types.NewSuggestionResponse(nil), nil
	case err != nil:
		metrics.Suggestions.WithLabelValues(metrics.SuggestionError).Inc()
		return nil, err
	}

	if result.Empty() {
		metrics.Suggestions.WithLabelValues(metrics.SuggestionEmpty).Inc()
	} else {
		metrics.Suggestions.WithLabelValues(metrics.SuggestionHit).Inc()
	}
	return types.NewSuggestionResponse(result), nil
}

// RenderControls renders the "attached to" input on the media screen
func (p *Plugin) RenderControls(_ context.Context, screen *hooks.Screen) (template.HTML, error) {
	if screen.ID != p.opts.Screen {
		return "", nil
	}

	data := struct {
		Param       string
		ListID      string
		Value       string
		Placeholder string
	}{
		Param:       p.opts.ParamName,
		ListID:      p.opts.ParamName + "_list",
		Value:       validator.SanitizeText(screen.Params.Get(p.opts.ParamName)).String(),
		Placeholder: placeholder,
	}

	var buf bytes.Buffer
	if err := controlsTmpl.ExecuteTemplate(&buf, "controls", data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// EnqueueAssets returns the stylesheet and the script for the media screen.
// The script carries the client config with a fresh nonce.
func (p *Plugin) EnqueueAssets(ctx context.Context, screen *hooks.Screen) ([]hooks.Asset, error) {
	if screen.ID != p.opts.Screen {
		return nil, nil
	}

	nonce, err := p.nonces.Create(p.opts.NonceAction, screen.UserID)
	if err != nil {
		return nil, err
	}

	return []hooks.Asset{
		{
			Handle:  StyleHandle,
			Kind:    hooks.AssetStyle,
			URL:     p.assetURL("admin/styles.css"),
			Version: p.assetVersion(ctx, "admin/styles.css"),
		},
		{
			Handle:   ScriptHandle,
			Kind:     hooks.AssetScript,
			URL:      p.assetURL("admin/js.js"),
			Version:  p.assetVersion(ctx, "admin/js.js"),
			ConfigID: ConfigID,
			Config: ClientConfig{
				AjaxURL: p.opts.AjaxURL,
				Nonce:   nonce,
			},
		},
	}, nil
}

func (p *Plugin) assetURL(name string) string {
	return p.opts.AssetsURL + "/" + name
}

// assetVersion is the file's mtime so browsers refetch changed assets
func (p *Plugin) assetVersion(ctx context.Context, name string) string {
	info, err := os.Stat(filepath.Join(p.opts.AssetsDir, filepath.FromSlash(name)))
	if err != nil {
		p.logger.WithContext(ctx).Warn("asset not found", zap.String("asset", name), zap.Error(err))
		return ""
	}
	return strconv.FormatInt(info.ModTime().Unix(), 10)
}
