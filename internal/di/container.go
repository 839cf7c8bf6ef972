// Package di provides dependency injection configuration for the Link server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/linkmarket/link-server/internal/auth"
	"github.com/linkmarket/link-server/internal/config"
	"github.com/linkmarket/link-server/internal/di/providers"
	"github.com/linkmarket/link-server/internal/logger"
	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideMediaStore)
	do.Provide(injector, providers.ProvideBroadcaster)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideListingService)
	do.Provide(injector, providers.ProvideFeedService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideInteractionService)
	do.Provide(injector, providers.ProvideRepostService)
	do.Provide(injector, providers.ProvideCommentService)
	do.Provide(injector, providers.ProvideAdminService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*media.Store](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.BroadcasterHandle](injector)
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ListingService](injector)
	_ = do.MustInvoke[*service.AdminService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
