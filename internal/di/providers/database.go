package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/linkmarket/link-server/internal/config"
	"github.com/linkmarket/link-server/internal/logger"
	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/store/postgres"
	"github.com/linkmarket/link-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		db  store.Store
		err error
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgres.Open(context.Background(), postgres.Config{
			URL:      cfg.Database.URL,
			MaxConns: int32(cfg.Database.MaxConns), //nolint:gosec // validated small positive value
		}, log.Logger)
	default:
		db, err = sqlite.Open(cfg.Database.Path, log.Logger)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}

	log.Info("Database initialized", "driver", cfg.Database.Driver)

	return &StoreHandle{Store: db}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
