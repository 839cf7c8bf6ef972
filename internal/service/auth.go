package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linkmarket/link-server/internal/auth"
	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/id"
	"github.com/linkmarket/link-server/internal/store"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// RegisterRequest contains the data for a new account.
type RegisterRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" validate:"required,whatsapp"`
	Password       string `json:"password" validate:"required,min=6,max=1024"`
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	UserType       string `json:"user_type" validate:"required,user_type"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	AccountType    string `json:"account_type,omitempty" validate:"omitempty,account_type"`
	Country        string `json:"country,omitempty" validate:"max=100"`
	City           string `json:"city,omitempty" validate:"max=100"`
	Neighborhood   string `json:"neighborhood,omitempty" validate:"max=100"`
	Gender         string `json:"gender,omitempty" validate:"max=20"`
	Age            int    `json:"age,omitempty" validate:"gte=0,lte=150"`
	ProductsSold   string `json:"products_sold,omitempty" validate:"max=2000"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" validate:"required"`
	Password       string `json:"password" validate:"required"`
}

// AuthResponse contains the access token and the authenticated user.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByWhatsApp(ctx, req.WhatsAppNumber); err == nil {
		return nil, domainerrors.AlreadyExists("whatsapp number already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check whatsapp number: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.User)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	accountType := domain.AccountType(req.AccountType)
	if accountType == "" {
		accountType = domain.AccountTypeIndividual
	}

	user := &domain.User{
		Record:         domain.Record{ID: userID},
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.TrimSpace(req.Email),
		WhatsAppNumber: strings.TrimSpace(req.WhatsAppNumber),
		PasswordHash:   passwordHash,
		UserType:       domain.UserType(req.UserType),
		AccountType:    accountType,
		Location: domain.Location{
			Country:      strings.TrimSpace(req.Country),
			City:         strings.TrimSpace(req.City),
			Neighborhood: strings.TrimSpace(req.Neighborhood),
		},
		Gender:       req.Gender,
		Age:          req.Age,
		ProductsSold: strings.TrimSpace(req.ProductsSold),
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("whatsapp number or email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user registered", "user_id", user.ID, "user_type", user.UserType)
	}
	return s.issue(user)
}

// Login verifies credentials. Unknown numbers and wrong passwords get the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByWhatsApp(ctx, req.WhatsAppNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid whatsapp number or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid whatsapp number or password")
	}

	return s.issue(user)
}

// VerifyAccessToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
