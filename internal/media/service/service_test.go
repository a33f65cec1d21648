package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/media-attached-filter/internal/auth"
	"github.com/lk2023060901/media-attached-filter/internal/hooks"
	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	"github.com/lk2023060901/media-attached-filter/internal/media/data"
	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/database"
	apperrors "github.com/lk2023060901/media-attached-filter/internal/pkg/errors"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	plugin  *Plugin
	media   *MediaService
	hooks   *hooks.Registry
	nonces  *auth.NonceManager
	assets  string
	options Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.PrepareStmt = false
	cfg.MaxIdleConns, cfg.MaxOpenConns = 1, 1
	db, err := database.Open(sqlite.Open("file::memory:"), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, data.Migrate(db))

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []data.ContentItemPO{
		{ID: 1, PostType: types.TypePost, PostStatus: types.StatusPublish, PostTitle: "Alpha", PostDate: date, PostModified: date},
		{ID: 2, PostType: types.TypePage, PostStatus: types.StatusPublish, PostTitle: "Alpha Beta", PostDate: date, PostModified: date},
		{ID: 10, PostType: types.TypeAttachment, PostStatus: types.StatusInherit, PostTitle: "one", PostParent: 1, PostDate: date, PostModified: date},
		{ID: 11, PostType: types.TypeAttachment, PostStatus: types.StatusInherit, PostTitle: "two", PostParent: 2, PostDate: date, PostModified: date},
	}
	require.NoError(t, db.Create(&rows).Error)

	assets := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(assets, "admin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "admin", "styles.css"), []byte("input{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "admin", "js.js"), []byte("//"), 0o644))

	log := logger.Nop()
	content := data.NewContentRepo(db)
	filter := biz.NewAttachmentFilter(content, "maf_attached", log)
	reg := hooks.NewRegistry()
	nonces := auth.NewNonceManager("0123456789abcdef", "test", time.Hour)
	opts := Options{
		ParamName:   "maf_attached",
		Screen:      "upload",
		AjaxAction:  "maf_search",
		NonceAction: "maf-search",
		AjaxURL:     "/admin/ajax",
		AssetsDir:   assets,
		AssetsURL:   "/admin/assets",
	}
	plugin := NewPlugin(biz.NewSuggestionUseCase(content, 10, log), filter, nonces, opts, log)
	require.NoError(t, plugin.Register(reg))

	library := biz.NewLibraryUseCase(data.NewAttachmentRepo(db), content, data.NewBlobStore(nil), reg, 0, log)

	return &fixture{
		plugin:  plugin,
		media:   NewMediaService(library, log),
		hooks:   reg,
		nonces:  nonces,
		assets:  assets,
		options: opts,
	}
}

func TestPlugin_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("matches in relevance order", func(t *testing.T) {
		body, err := f.plugin.Search(ctx, &hooks.AjaxRequest{Form: url.Values{"keyword": {"Alpha"}}})
		require.NoError(t, err)

		out, err := json.Marshal(body)
		require.NoError(t, err)
		assert.Equal(t, `{"success":true,"results":{"1":"Alpha","2":"Alpha Beta"}}`, string(out))
	})

	t.Run("no match", func(t *testing.T) {
		body, err := f.plugin.Search(ctx, &hooks.AjaxRequest{Form: url.Values{"keyword": {"Gamma"}}})
		require.NoError(t, err)

		out, _ := json.Marshal(body)
		assert.Equal(t, `{"success":false,"results":{}}`, string(out))
	})

	t.Run("missing keyword", func(t *testing.T) {
		body, err := f.plugin.Search(ctx, &hooks.AjaxRequest{Form: url.Values{}})
		require.NoError(t, err)

		out, _ := json.Marshal(body)
		assert.Equal(t, `{"success":false,"results":{}}`, string(out))
	})
}

func TestPlugin_RenderControls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	html, err := f.plugin.RenderControls(ctx, &hooks.Screen{ID: "upload", Params: url.Values{"maf_attached": {"Alpha Beta"}}})
	require.NoError(t, err)
	assert.Equal(t,
		`<input list="maf_attached_list" id="maf_attached" name="maf_attached" value="Alpha Beta" placeholder="Attached to .." autocomplete="off"/><datalist id="maf_attached_list"></datalist>`,
		string(html))

	html, err = f.plugin.RenderControls(ctx, &hooks.Screen{ID: "upload", Params: url.Values{"maf_attached": {`"><script>alert(1)</script>`}}})
	require.NoError(t, err)
	assert.Contains(t, string(html), `value="&#34;&gt;"`)
	assert.NotContains(t, string(html), "<script>")

	html, err = f.plugin.RenderControls(ctx, &hooks.Screen{ID: "edit"})
	require.NoError(t, err)
	assert.Empty(t, html)
}

func TestPlugin_EnqueueAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assets, err := f.plugin.EnqueueAssets(ctx, &hooks.Screen{ID: "upload", UserID: "1"})
	require.NoError(t, err)
	require.Len(t, assets, 2)

	info, err := os.Stat(filepath.Join(f.assets, "admin", "styles.css"))
	require.NoError(t, err)

	style := assets[0]
	assert.Equal(t, hooks.AssetStyle, style.Kind)
	assert.Equal(t, "/admin/assets/admin/styles.css", style.URL)
	assert.Equal(t, info.ModTime().Unix(), mustInt(t, style.Version))

	script := assets[1]
	assert.Equal(t, hooks.AssetScript, script.Kind)
	assert.Equal(t, ConfigID, script.ConfigID)
	cfg, ok := script.Config.(ClientConfig)
	require.True(t, ok)
	assert.Equal(t, "/admin/ajax", cfg.AjaxURL)
	assert.NoError(t, f.nonces.Verify(cfg.Nonce, "maf-search", "1"))

	assets, err = f.plugin.EnqueueAssets(ctx, &hooks.Screen{ID: "dashboard"})
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestPlugin_MissingAssetHasNoVersion(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.assets, "admin", "js.js")))

	assets, err := f.plugin.EnqueueAssets(context.Background(), &hooks.Screen{ID: "upload", UserID: "1"})
	require.NoError(t, err)
	assert.Empty(t, assets[1].Version)
}

func mustInt(t *testing.T, s string) int64 {
	t.Helper()
	var n int64
	_, err := fmt.Sscan(s, &n)
	require.NoError(t, err)
	return n
}

func newMediaRouter(f *fixture) *gin.Engine {
	r := gin.New()
	f.media.RegisterRoutes(r.Group("/admin"))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestMediaService_List(t *testing.T) {
	f := newFixture(t)
	r := newMediaRouter(f)

	tests := []struct {
		query   string
		wantIDs []float64
	}{
		{"", []float64{11, 10}},
		{"?maf_attached=Alpha", []float64{10}},
		{"?maf_attached=Alpha+Beta", []float64{11}},
		{"?maf_attached=Gamma", nil},
		{"?maf_attached=", []float64{11, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/media"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			body := decode(t, w)
			page := body["data"].(map[string]any)
			var ids []float64
			for _, item := range page["items"].([]any) {
				ids = append(ids, item.(map[string]any)["id"].(float64))
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func multipartBody(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withFile {
		fw, err := mw.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMediaService_Upload(t *testing.T) {
	f := newFixture(t)
	r := newMediaRouter(f)

	tests := []struct {
		name     string
		fields   map[string]string
		withFile bool
		status   int
		code     int
	}{
		{"missing file", nil, false, http.StatusBadRequest, apperrors.ErrInvalidParams},
		{"bad parent", map[string]string{"post_parent": "abc"}, true, http.StatusBadRequest, apperrors.ErrInvalidParams},
		{"storage off", map[string]string{"post_parent": "1"}, true, http.StatusServiceUnavailable, apperrors.ErrMediaStorageOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.fields, tt.withFile)
			req := httptest.NewRequest(http.MethodPost, "/admin/media", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, float64(tt.code), decode(t, w)["code"])
		})
	}
}
