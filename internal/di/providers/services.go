package providers

import (
	"github.com/samber/do/v2"

	"github.com/linkmarket/link-server/internal/auth"
	"github.com/linkmarket/link-server/internal/config"
	"github.com/linkmarket/link-server/internal/logger"
	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideUserService provides the profile service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideListingService provides listing CRUD with uploads and broadcasts.
func ProvideListingService(i do.Injector) (*service.ListingService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mediaStore := do.MustInvoke[*media.Store](i)
	broadcaster := do.MustInvoke[*BroadcasterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewListingService(storeHandle.Store, mediaStore, broadcaster, service.ListingConfig{
		ShareBaseURL:        cfg.Server.ShareBaseURL,
		BroadcastRecipients: cfg.WhatsApp.Recipients,
	}, log.Logger), nil
}

// ProvideFeedService provides the proximity feed.
func ProvideFeedService(i do.Injector) (*service.FeedService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedService(storeHandle.Store, log.Logger), nil
}

// ProvideSearchService provides fuzzy search and autocomplete.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, log.Logger), nil
}

// ProvideInteractionService provides view and interest accounting.
func ProvideInteractionService(i do.Injector) (*service.InteractionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInteractionService(storeHandle.Store, cfg.Server.ShareBaseURL, log.Logger), nil
}

// ProvideRepostService provides reposts.
func ProvideRepostService(i do.Injector) (*service.RepostService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRepostService(storeHandle.Store, log.Logger), nil
}

// ProvideCommentService provides comments and notifications.
func ProvideCommentService(i do.Injector) (*service.CommentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCommentService(storeHandle.Store, log.Logger), nil
}

// ProvideAdminService provides admin statistics.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, service.AdminConfig{
		UserIDs:         cfg.Admin.UserIDs,
		WhatsAppNumbers: cfg.Admin.WhatsAppNumbers,
	}, log.Logger), nil
}
