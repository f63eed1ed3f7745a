package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hugscape/storefront/internal/auth"
	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/repositories"
	"github.com/hugscape/storefront/internal/pkg/metrics"
)

// TokenCodec issues and validates bearer tokens
type TokenCodec interface {
	Issue(email, userID string) (string, time.Time, error)
	Validate(token string) (string, error)
}

// Session is a freshly issued bearer token and the account it belongs to
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

// SessionService answers "who is this caller" on top of the identity
// service and the token codec. It holds no session state of its own.
type SessionService struct {
	identity *IdentityService
	userRepo repositories.UserRepository
	codec    TokenCodec
	log      *slog.Logger
}

// NewSessionService creates a new session service
func NewSessionService(identity *IdentityService, userRepo repositories.UserRepository, codec TokenCodec) *SessionService {
	return &SessionService{
		identity: identity,
		userRepo: userRepo,
		codec:    codec,
		log:      slog.Default().With(slog.String("service", "session")),
	}
}

// Login reconciles the profile and issues a token for the resulting
// account. A deactivated account is refused, not reactivated.
func (s *SessionService) Login(ctx context.Context, profile entities.Profile) (*Session, error) {
	user, err := s.identity.Reconcile(ctx, profile)
	if err != nil {
		return nil, err
	}

	if !user.Active() {
		metrics.Logins.WithLabelValues("inactive").Inc()
		s.log.Warn("login refused for deactivated account", slog.String("user_id", user.ID))
		return nil, ErrInvalidCredential
	}

	return s.issue(user)
}

// Authenticate resolves a presented token to an active account. Every
// credential failure, including a valid token for a deactivated account,
// returns ErrInvalidCredential.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	userID, err := s.codec.Validate(token)
	if err != nil {
		result := "invalid"
		if errors.Is(err, auth.ErrExpiredToken) {
			result = "expired"
		}
		metrics.TokenValidations.WithLabelValues(result).Inc()
		s.log.Debug("token rejected", slog.String("error", err.Error()))
		return nil, ErrInvalidCredential
	}

	user, found, err := s.userRepo.FindActiveByID(ctx, userID)
	if err != nil {
		metrics.TokenValidations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to resolve token user: %w", err)
	}
	if !found {
		metrics.TokenValidations.WithLabelValues("unknown_user").Inc()
		s.log.Debug("token references inactive or missing account", slog.String("user_id", userID))
		return nil, ErrInvalidCredential
	}

	metrics.TokenValidations.WithLabelValues("valid").Inc()
	return user, nil
}

// Refresh authenticates the token and issues a new one with a full
// lifetime. Time left on the old token is irrelevant.
func (s *SessionService) Refresh(ctx context.Context, token string) (*Session, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *SessionService) issue(user *entities.User) (*Session, error) {
	token, expiresAt, err := s.codec.Issue(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
