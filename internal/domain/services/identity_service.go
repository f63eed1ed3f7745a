package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/repositories"
	"github.com/hugscape/storefront/internal/pkg/idgen"
	"github.com/hugscape/storefront/internal/pkg/metrics"
)

// Reconcile outcomes, also used as the logins metric label
const (
	OutcomeReturning = "returning"
	OutcomeLinked    = "linked"
	OutcomeCreated   = "created"
)

// IdentityService maps an external identity onto a local user account
type IdentityService struct {
	userRepo repositories.UserRepository
	now      func() time.Time
	newID    func() string
	log      *slog.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(userRepo repositories.UserRepository) *IdentityService {
	return &IdentityService{
		userRepo: userRepo,
		now:      time.Now,
		newID:    idgen.GenerateID,
		log:      slog.Default().With(slog.String("service", "identity")),
	}
}

// WithClock replaces the time source
func (s *IdentityService) WithClock(now func() time.Time) *IdentityService {
	s.now = now
	return s
}

// Reconcile finds, links or creates the account for profile, in that
// order. The first matching branch wins:
//
//  1. an account already linked to profile.Subject is reused
//  2. an account with the same email gets the subject and provider fields attached
//  3. otherwise a new active account is created
//
// Two concurrent first logins may both reach step 3; the loser gets
// repositories.ErrConflict from the unique indexes and may retry.
func (s *IdentityService) Reconcile(ctx context.Context, profile entities.Profile) (*entities.User, error) {
	if err := validateProfile(&profile); err != nil {
		metrics.Logins.WithLabelValues("invalid_profile").Inc()
		return nil, err
	}

	user, found, err := s.userRepo.FindByExternalSubject(ctx, profile.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by subject: %w", err)
	}
	if found {
		user.TouchLogin(s.now())
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, s.writeFailed(err, "failed to record login")
		}
		s.record(user, OutcomeReturning)
		return user, nil
	}

	user, found, err = s.userRepo.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if found {
		subject := profile.Subject
		user.ExternalSubject = &subject
		user.GivenName = profile.GivenName
		user.FamilyName = profile.FamilyName
		user.Picture = profile.Picture
		user.Locale = profile.Locale
		user.EmailVerified = profile.Verified()
		user.TouchLogin(s.now())
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, s.writeFailed(err, "failed to link account")
		}
		s.record(user, OutcomeLinked)
		return user, nil
	}

	subject := profile.Subject
	user = &entities.User{
		ID:              s.newID(),
		ExternalSubject: &subject,
		Email:           profile.Email,
		Name:            profile.Name,
		GivenName:       profile.GivenName,
		FamilyName:      profile.FamilyName,
		Picture:         profile.Picture,
		Locale:          profile.Locale,
		EmailVerified:   profile.Verified(),
		IsActive:        true,
	}
	user.TouchLogin(s.now())
	user.CreatedAt = user.LastLogin

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, s.writeFailed(err, "failed to create user")
	}
	s.record(user, OutcomeCreated)
	return user, nil
}

func (s *IdentityService) record(user *entities.User, outcome string) {
	metrics.Logins.WithLabelValues(outcome).Inc()
	s.log.Info("identity reconciled",
		slog.String("user_id", user.ID),
		slog.String("outcome", outcome))
}

func (s *IdentityService) writeFailed(err error, msg string) error {
	if IsConflict(err) {
		metrics.Logins.WithLabelValues("conflict").Inc()
		s.log.Warn("concurrent login lost a unique-constraint race", slog.String("error", err.Error()))
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// validateProfile trims the profile in place and checks the required claims
func validateProfile(p *entities.Profile) error {
	p.Subject = strings.TrimSpace(p.Subject)
	p.Email = entities.NormalizeEmail(p.Email)
	p.Name = strings.TrimSpace(p.Name)

	var missing []string
	if p.Subject == "" {
		missing = append(missing, "subject")
	}
	if p.Email == "" {
		missing = append(missing, "email")
	}
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: profile missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
