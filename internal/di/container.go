// Package di provides dependency injection configuration for the Folllow server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/folllow/folllow-server/internal/auth"
	"github.com/folllow/folllow-server/internal/config"
	"github.com/folllow/folllow-server/internal/di/providers"
	"github.com/folllow/folllow-server/internal/logger"
	"github.com/folllow/folllow-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideGoogleProvider)

	// Object storage
	do.Provide(injector, providers.ProvideUploads)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideTreeService)
	do.Provide(injector, providers.ProvidePageService)
	do.Provide(injector, providers.ProvideAnalyticsService)
	do.Provide(injector, providers.ProvideDashboardService)
	do.Provide(injector, providers.ProvideUploadService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization
// in dependency order; the HTTP server starts listening as a side effect.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*auth.GoogleProvider](injector)

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.TreeService](injector)
	_ = do.MustInvoke[*service.PageService](injector)
	_ = do.MustInvoke[*service.AnalyticsService](injector)
	_ = do.MustInvoke[*service.DashboardService](injector)
	_ = do.MustInvoke[*service.UploadService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
