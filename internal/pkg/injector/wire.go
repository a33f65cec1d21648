//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/lk2023060901/media-attached-filter/internal/conf"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/server"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	// Data layer
	dataProviderSet,

	// Repositories
	repositoryProviderSet,

	// Use cases and hooks
	useCaseProviderSet,

	// Services
	serviceProviderSet,

	// Servers
	serverProviderSet,
)

// Data layer providers
var dataProviderSet = wire.NewSet(
	provideData,
)

// Repository providers
var repositoryProviderSet = wire.NewSet(
	provideContentRepo,
	provideAttachmentRepo,
	provideBlobStore,
)

// Use case providers
var useCaseProviderSet = wire.NewSet(
	provideJWTManager,
	provideNonceManager,
	provideHookRegistry,
	provideSuggestionUseCase,
	provideAttachmentFilter,
	provideLibraryUseCase,
)

// Service providers
var serviceProviderSet = wire.NewSet(
	providePlugin,
	provideAdminService,
	provideMediaService,
)

// Server providers
var serverProviderSet = wire.NewSet(
	server.NewHTTPServer,
)

// InitializeApp creates the application with all dependencies wired
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}
