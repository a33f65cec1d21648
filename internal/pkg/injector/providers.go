package injector

import (
	adminservice "github.com/lk2023060901/media-attached-filter/internal/admin/service"
	"github.com/lk2023060901/media-attached-filter/internal/auth"
	"github.com/lk2023060901/media-attached-filter/internal/conf"
	"github.com/lk2023060901/media-attached-filter/internal/data"
	"github.com/lk2023060901/media-attached-filter/internal/hooks"
	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	mediadata "github.com/lk2023060901/media-attached-filter/internal/media/data"
	mediaservice "github.com/lk2023060901/media-attached-filter/internal/media/service"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/server"
)

func provideData(config *conf.Config, log *logger.Logger) (*data.Data, func(), error) {
	return data.NewData(config, log)
}

func provideContentRepo(d *data.Data) biz.ContentRepo {
	return mediadata.NewContentRepo(d.DB)
}

func provideAttachmentRepo(d *data.Data) biz.AttachmentRepo {
	return mediadata.NewAttachmentRepo(d.DB)
}

func provideBlobStore(d *data.Data) biz.BlobStore {
	return mediadata.NewBlobStore(d.MinIO)
}

func provideJWTManager(config *conf.Config) *auth.JWTManager {
	return auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.TokenTTL)
}

func provideNonceManager(config *conf.Config) *auth.NonceManager {
	return auth.NewNonceManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.NonceTTL)
}

func provideHookRegistry() *hooks.Registry {
	return hooks.NewRegistry()
}

func provideSuggestionUseCase(repo biz.ContentRepo, config *conf.Config, log *logger.Logger) *biz.SuggestionUseCase {
	return biz.NewSuggestionUseCase(repo, config.Media.SuggestionLimit, log.Named("suggestion"))
}

func provideAttachmentFilter(repo biz.ContentRepo, config *conf.Config, log *logger.Logger) *biz.AttachmentFilter {
	return biz.NewAttachmentFilter(repo, config.Media.ParamName, log.Named("filter"))
}

func provideLibraryUseCase(
	attachments biz.AttachmentRepo,
	content biz.ContentRepo,
	blobs biz.BlobStore,
	reg *hooks.Registry,
	config *conf.Config,
	log *logger.Logger,
) *biz.LibraryUseCase {
	return biz.NewLibraryUseCase(attachments, content, blobs, reg, config.Media.MaxUploadSize, log.Named("library"))
}

// providePlugin builds the plugin and attaches its hooks to the registry.
func providePlugin(
	suggestions *biz.SuggestionUseCase,
	filter *biz.AttachmentFilter,
	nonces *auth.NonceManager,
	reg *hooks.Registry,
	config *conf.Config,
	log *logger.Logger,
) (*mediaservice.Plugin, error) {
	plugin := mediaservice.NewPlugin(suggestions, filter, nonces, mediaservice.Options{
		ParamName:   config.Media.ParamName,
		Screen:      config.Media.Screen,
		AjaxAction:  config.Media.AjaxAction,
		NonceAction: config.Media.NonceAction,
		AjaxURL:     config.Media.AjaxURL,
		AssetsDir:   config.Media.AssetsDir,
		AssetsURL:   config.Media.AssetsURL,
	}, log.Named("plugin"))
	if err := plugin.Register(reg); err != nil {
		return nil, err
	}
	return plugin, nil
}

// provideAdminService takes the plugin so its hooks are registered before
// the host serves requests.
func provideAdminService(
	reg *hooks.Registry,
	library *biz.LibraryUseCase,
	nonces *auth.NonceManager,
	_ *mediaservice.Plugin,
	config *conf.Config,
	log *logger.Logger,
) *adminservice.AdminService {
	return adminservice.NewAdminService(reg, library, nonces, config.Media.Screen, log.Named("admin"))
}

func provideMediaService(library *biz.LibraryUseCase, log *logger.Logger) *mediaservice.MediaService {
	return mediaservice.NewMediaService(library, log.Named("media"))
}

func newApp(config *conf.Config, log *logger.Logger, httpServer *server.HTTPServer) *App {
	return &App{
		Config:     config,
		Logger:     log,
		HTTPServer: httpServer,
	}
}
