package service

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/media-attached-filter/internal/auth"
	"github.com/lk2023060901/media-attached-filter/internal/auth/middleware"
	"github.com/lk2023060901/media-attached-filter/internal/hooks"
	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	"github.com/lk2023060901/media-attached-filter/internal/media/data"
	mediaservice "github.com/lk2023060901/media-attached-filter/internal/media/service"
	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/database"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	router *gin.Engine
	jwt    *auth.JWTManager
	nonces *auth.NonceManager
	token  string
}

func newEnv(t *testing.T) *env {
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
		{ID: 3, PostType: types.TypePost, PostStatus: types.StatusTrash, PostTitle: "Alpha Old", PostDate: date, PostModified: date},
		{ID: 10, PostType: types.TypeAttachment, PostStatus: types.StatusInherit, PostTitle: "first-file", PostParent: 1, PostDate: date, PostModified: date},
		{ID: 11, PostType: types.TypeAttachment, PostStatus: types.StatusInherit, PostTitle: "second-file", PostParent: 2, PostDate: date, PostModified: date},
	}
	require.NoError(t, db.Create(&rows).Error)

	assets := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(assets, "admin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "admin", "styles.css"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "admin", "js.js"), []byte(""), 0o644))

	log := logger.Nop()
	jwtManager := auth.NewJWTManager("0123456789abcdef", "test", time.Hour)
	nonces := auth.NewNonceManager("0123456789abcdef", "test", time.Hour)

	content := data.NewContentRepo(db)
	reg := hooks.NewRegistry()
	plugin := mediaservice.NewPlugin(
		biz.NewSuggestionUseCase(content, 10, log),
		biz.NewAttachmentFilter(content, "maf_attached", log),
		nonces,
		mediaservice.Options{
			ParamName:   "maf_attached",
			Screen:      "upload",
			AjaxAction:  "maf_search",
			NonceAction: "maf-search",
			AjaxURL:     "/admin/ajax",
			AssetsDir:   assets,
			AssetsURL:   "/admin/assets",
		},
		log,
	)
	require.NoError(t, plugin.Register(reg))

	library := biz.NewLibraryUseCase(data.NewAttachmentRepo(db), content, nil, reg, 0, log)
	svc := NewAdminService(reg, library, nonces, "upload", log)

	r := gin.New()
	admin := r.Group("/admin", middleware.JWTAuth(jwtManager, log), middleware.RequireRole(auth.RoleAdministrator))
	svc.RegisterRoutes(admin)

	token, err := jwtManager.GenerateAccessToken("1", auth.RoleAdministrator)
	require.NoError(t, err)

	return &env{router: r, jwt: jwtManager, nonces: nonces, token: token}
}

func (e *env) ajax(t *testing.T, form url.Values, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/ajax", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestAjax(t *testing.T) {
	e := newEnv(t)
	nonce, err := e.nonces.Create("maf-search", "1")
	require.NoError(t, err)
	otherUsers, err := e.nonces.Create("maf-search", "2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		form   url.Values
		authed bool
		status int
		body   string
	}{
		{
			name:   "suggestions",
			form:   url.Values{"action": {"maf_search"}, "nonce": {nonce}, "keyword": {"Alpha"}},
			authed: true,
			status: http.StatusOK,
			body:   `{"success":true,"results":{"1":"Alpha","2":"Alpha Beta"}}`,
		},
		{
			name:   "exact title first",
			form:   url.Values{"action": {"maf_search"}, "nonce": {nonce}, "keyword": {"Alpha Beta"}},
			authed: true,
			status: http.StatusOK,
			body:   `{"success":true,"results":{"2":"Alpha Beta"}}`,
		},
		{
			name:   "no match",
			form:   url.Values{"action": {"maf_search"}, "nonce": {nonce}, "keyword": {"Gamma"}},
			authed: true,
			status: http.StatusOK,
			body:   `{"success":false,"results":{}}`,
		},
		{
			name:   "missing keyword",
			form:   url.Values{"action": {"maf_search"}, "nonce": {nonce}},
			authed: true,
			status: http.StatusOK,
			body:   `{"success":false,"results":{}}`,
		},
		{
			name:   "empty keyword",
			form:   url.Values{"action": {"maf_search"}, "nonce": {nonce}, "keyword": {"  "}},
			authed: true,
			status: http.StatusOK,
			body:   `{"success":false,"results":{}}`,
		},
		{
			name:   "bad nonce",
			form:   url.Values{"action": {"maf_search"}, "nonce": {"forged"}, "keyword": {"Alpha"}},
			authed: true,
			status: http.StatusForbidden,
			body:   "-1",
		},
		{
			name:   "nonce of another user",
			form:   url.Values{"action": {"maf_search"}, "nonce": {otherUsers}, "keyword": {"Alpha"}},
			authed: true,
			status: http.StatusForbidden,
			body:   "-1",
		},
		{
			name:   "unknown action",
			form:   url.Values{"action": {"nope"}},
			authed: true,
			status: http.StatusBadRequest,
			body:   "0",
		},
		{
			name:   "not logged in",
			form:   url.Values{"action": {"maf_search"}, "nonce": {nonce}, "keyword": {"Alpha"}},
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.ajax(t, tt.form, tt.authed)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func (e *env) screen(t *testing.T, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin/upload"+query, nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: e.token})
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestUploadScreen(t *testing.T) {
	e := newEnv(t)

	t.Run("filtered by attached title", func(t *testing.T) {
		w := e.screen(t, "?maf_attached=Alpha")
		require.Equal(t, http.StatusOK, w.Code)
		html := w.Body.String()

		assert.Contains(t, html, `<input list="maf_attached_list" id="maf_attached" name="maf_attached" value="Alpha" placeholder="Attached to .." autocomplete="off"/>`)
		assert.Contains(t, html, `<datalist id="maf_attached_list"></datalist>`)
		assert.Contains(t, html, `id="post-10"`)
		assert.NotContains(t, html, `id="post-11"`)

		assert.Contains(t, html, `href="/admin/assets/admin/styles.css?ver=`)
		assert.Contains(t, html, `src="/admin/assets/admin/js.js?ver=`)
		assert.Contains(t, html, `<script type="application/json" id="maf-config">{"ajax_url":"/admin/ajax","maf_search_nonce":"`)
		assert.NotContains(t, html, "var maf")
	})

	t.Run("unresolvable title lists nothing", func(t *testing.T) {
		w := e.screen(t, "?maf_attached=Alpha+Old")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No media files found.")
	})

	t.Run("unfiltered", func(t *testing.T) {
		w := e.screen(t, "")
		require.Equal(t, http.StatusOK, w.Code)
		html := w.Body.String()

		assert.Contains(t, html, `value=""`)
		assert.Contains(t, html, `id="post-10"`)
		assert.Contains(t, html, `id="post-11"`)
	})

	t.Run("nonce in page works for ajax", func(t *testing.T) {
		w := e.screen(t, "")
		html := w.Body.String()

		const marker = `id="maf-config">`
		start := strings.Index(html, marker)
		require.NotEqual(t, -1, start)
		rest := html[start+len(marker):]
		config := rest[:strings.Index(rest, "</script>")]
		require.True(t, gjson.Valid(config))
		nonce := gjson.Get(config, "maf_search_nonce").String()
		require.NotEmpty(t, nonce)

		resp := e.ajax(t, url.Values{"action": {"maf_search"}, "nonce": {nonce}, "keyword": {"Beta"}}, true)
		assert.Equal(t, http.StatusOK, resp.Code)
		body := resp.Body.String()
		assert.True(t, gjson.Get(body, "success").Bool())
		assert.Equal(t, "Alpha Beta", gjson.Get(body, "results.2").String())
		assert.Len(t, gjson.Get(body, "results").Map(), 1)
	})
}

func TestVersioned(t *testing.T) {
	assert.Equal(t, "/a.css?ver=12", versioned("/a.css", "12"))
	assert.Equal(t, "/a.css", versioned("/a.css", ""))
	assert.Equal(t, "/a.css?v=1&ver=12", versioned("/a.css?v=1", "12"))
}
