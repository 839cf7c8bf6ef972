package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/normalize"
	"github.com/linkmarket/link-server/internal/store"
)

// AdminConfig lists who may read the dashboard.
type AdminConfig struct {
	UserIDs         []string
	WhatsAppNumbers []string
}

// AdminService serves dashboard statistics to admins.
type AdminService struct {
	store  store.Store
	cfg    AdminConfig
	digits []string
	now    func() time.Time
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store store.Store, cfg AdminConfig, logger *slog.Logger) *AdminService {
	digits := make([]string, 0, len(cfg.WhatsAppNumbers))
	for _, n := range cfg.WhatsAppNumbers {
		if d := normalize.Digits(n); d != "" {
			digits = append(digits, d)
		}
	}
	return &AdminService{store: store, cfg: cfg, digits: digits, now: time.Now, logger: logger}
}

// IsAdmin reports whether user is listed by id or by WhatsApp number.
func (s *AdminService) IsAdmin(user *domain.User) bool {
	if user == nil {
		return false
	}
	if slices.Contains(s.cfg.UserIDs, user.ID) {
		return true
	}
	d := normalize.Digits(user.WhatsAppNumber)
	return d != "" && slices.Contains(s.digits, d)
}

// Stats returns the dashboard figures for an admin caller.
func (s *AdminService) Stats(ctx context.Context, userID string) (*domain.AdminStats, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !s.IsAdmin(user) {
		return nil, domainerrors.Forbidden("admin access required")
	}

	stats, err := s.store.AdminStats(ctx, s.now().UTC())
	if err != nil {
		return nil, mapStoreError(err)
	}
	return stats, nil
}
