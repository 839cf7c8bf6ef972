package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/linkmarket/link-server/internal/api"
	"github.com/linkmarket/link-server/internal/config"
	"github.com/linkmarket/link-server/internal/logger"
	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer h.handler.Close()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mediaStore := do.MustInvoke[*media.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:        do.MustInvoke[*service.AuthService](i),
		User:        do.MustInvoke[*service.UserService](i),
		Listing:     do.MustInvoke[*service.ListingService](i),
		Feed:        do.MustInvoke[*service.FeedService](i),
		Search:      do.MustInvoke[*service.SearchService](i),
		Interaction: do.MustInvoke[*service.InteractionService](i),
		Repost:      do.MustInvoke[*service.RepostService](i),
		Comment:     do.MustInvoke[*service.CommentService](i),
		Admin:       do.MustInvoke[*service.AdminService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, mediaStore.Local(), api.Options{
		PublicURL:   cfg.Server.PublicURL,
		CORSOrigins: cfg.Server.CORSOrigins,
		MaxFileSize: cfg.Storage.MaxUploadSize,
		RateLimit:   cfg.RateLimit.RPS,
		RateBurst:   cfg.RateLimit.Burst,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "share_base_url", cfg.Server.ShareBaseURL)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
