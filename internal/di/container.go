// Package di provides dependency injection configuration for the CineLog server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cinelogapp/cinelog-server/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Catalog layer
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideCatalogWatcher)

	// Search layer
	do.Provide(injector, providers.ProvideMovieIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideContentService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideStatsService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap eagerly initializes the service graph so failures surface at
// startup. The HTTP server provider transitively pulls in every other
// dependency.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
