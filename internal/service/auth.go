package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/folllow/folllow-server/internal/auth"
	"github.com/folllow/folllow-server/internal/domain"
	apperrors "github.com/folllow/folllow-server/internal/errors"
	"github.com/folllow/folllow-server/internal/id"
	"github.com/folllow/folllow-server/internal/store"
	"github.com/folllow/folllow-server/internal/store/sqlite"
)

// AuthService resolves external sign-ins to local users.
type AuthService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store *sqlite.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		logger: logger,
	}
}

// SignInGoogle maps a verified Google profile to a local user, creating
// the user and the provider link on first sign-in. A returning profile
// whose email already has a user gets the provider linked to it.
func (s *AuthService) SignInGoogle(ctx context.Context, profile *auth.GoogleUser) (*domain.User, error) {
	if !profile.VerifiedEmail {
		return nil, apperrors.Unauthorized("email not verified")
	}

	account, err := s.store.GetAccountByProvider(ctx, "google", profile.ID)
	if err == nil {
		return s.store.GetUser(ctx, account.UserID)
	}
	if !apperrors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()

	user, err := s.store.GetUserByEmail(ctx, profile.Email)
	if apperrors.Is(err, store.ErrNotFound) {
		user = &domain.User{
			ID:        id.MustGenerate(id.PrefixUser),
			Email:     profile.Email,
			Name:      profile.Name,
			Image:     profile.Picture,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user created", "user_id", user.ID)
	} else if err != nil {
		return nil, err
	}

	link := &domain.Account{
		ID:                id.MustGenerate(id.PrefixAccount),
		UserID:            user.ID,
		Provider:          "google",
		ProviderAccountID: profile.ID,
		CreatedAt:         now,
	}
	if err := s.store.CreateAccount(ctx, link); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser returns a user's profile.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// GetAccount returns the provider link backing the user's session.
// With several links, the oldest one is the one the account page shows.
func (s *AuthService) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	accounts, err := s.store.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, apperrors.NotFound("no linked account")
	}
	return accounts[0], nil
}
