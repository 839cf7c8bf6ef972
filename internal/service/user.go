package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linkmarket/link-server/internal/auth"
	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/store"
)

// UserService manages profiles.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// UpdateUserRequest is a partial profile update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	FirstName      *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	WhatsAppNumber *string `json:"whatsapp_number,omitempty" validate:"omitempty,whatsapp"`
	Password       *string `json:"password,omitempty" validate:"omitempty,min=6,max=1024"`
	AccountType    *string `json:"account_type,omitempty" validate:"omitempty,account_type"`
	Country        *string `json:"country,omitempty" validate:"omitempty,max=100"`
	City           *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Neighborhood   *string `json:"neighborhood,omitempty" validate:"omitempty,max=100"`
	Gender         *string `json:"gender,omitempty" validate:"omitempty,max=20"`
	Age            *int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	ProductsSold   *string `json:"products_sold,omitempty" validate:"omitempty,max=2000"`
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

// Update applies req to the caller's profile.
func (s *UserService) Update(ctx context.Context, userID string, req UpdateUserRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if req.WhatsAppNumber != nil {
		number := strings.TrimSpace(*req.WhatsAppNumber)
		existing, err := s.store.GetUserByWhatsApp(ctx, number)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, domainerrors.AlreadyExists("whatsapp number already registered")
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("check whatsapp number: %w", err)
		}
		user.WhatsAppNumber = number
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	setTrimmed(&user.FirstName, req.FirstName)
	setTrimmed(&user.LastName, req.LastName)
	setTrimmed(&user.Email, req.Email)
	setTrimmed(&user.Country, req.Country)
	setTrimmed(&user.City, req.City)
	setTrimmed(&user.Neighborhood, req.Neighborhood)
	setTrimmed(&user.Gender, req.Gender)
	setTrimmed(&user.ProductsSold, req.ProductsSold)
	if req.AccountType != nil {
		user.AccountType = domain.AccountType(*req.AccountType)
	}
	if req.Age != nil {
		user.Age = *req.Age
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

// Delete removes the account and everything it owns.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return mapStoreError(err)
	}
	if s.logger != nil {
		s.logger.Info("user deleted", "user_id", userID)
	}
	return nil
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
