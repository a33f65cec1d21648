package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	adminservice "github.com/lk2023060901/media-attached-filter/internal/admin/service"
	"github.com/lk2023060901/media-attached-filter/internal/auth"
	"github.com/lk2023060901/media-attached-filter/internal/auth/middleware"
	"github.com/lk2023060901/media-attached-filter/internal/conf"
	"github.com/lk2023060901/media-attached-filter/internal/data"
	mediaservice "github.com/lk2023060901/media-attached-filter/internal/media/service"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server *http.Server
	router *gin.Engine
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	d *data.Data,
	jwtManager *auth.JWTManager,
	adminService *adminservice.AdminService,
	mediaService *mediaservice.MediaService,
) *HTTPServer {
	if config.Server.Mode != "" {
		gin.SetMode(config.Server.Mode)
	}

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, logger.MiddlewareOptions{
		SkipPaths:        []string{"/health", "/metrics"},
		SkipPathPrefixes: []string{config.Media.AssetsURL},
	}))

	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := d.HealthCheck(c.Request.Context()); err != nil {
			log.Warn("health check failed", zap.Error(err))
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{Registry: metrics.Registry})))

	// Plugin styles and scripts are public, like the host's static assets.
	router.Static(config.Media.AssetsURL, config.Media.AssetsDir)

	admin := router.Group("/admin")
	admin.Use(middleware.JWTAuth(jwtManager, log), middleware.RequireRole(auth.RoleAdministrator))
	adminService.RegisterRoutes(admin, middleware.RateLimiter(d.Redis, config.Auth.RateLimit, log))
	mediaService.RegisterRoutes(admin)

	return &HTTPServer{
		server: &http.Server{
			Addr:         config.Server.Addr(),
			Handler:      router,
			ReadTimeout:  config.Server.ReadTimeout,
			WriteTimeout: config.Server.WriteTimeout,
		},
		router: router,
		logger: log,
	}
}

// Handler exposes the router, used by tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
