package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/repositories"
)

func newTestIdentity(repo *fakeUserRepo) (*IdentityService, *stepClock) {
	clock := &stepClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	return NewIdentityService(repo).WithClock(clock.Now), clock
}

func TestReconcile_CreatesNewAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestIdentity(repo)

	user, err := svc.Reconcile(context.Background(), entities.Profile{
		Subject: "g-1", Email: "a@x.com", Name: "A",
		GivenName: "Ann", Locale: "en",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.True(t, user.Active())
	assert.True(t, user.LinkedTo("g-1"))
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Ann", user.GivenName)
	assert.False(t, user.EmailVerified, "verified defaults to false when absent")
	assert.Equal(t, user.CreatedAt, user.LastLogin)
	assert.Equal(t, 1, repo.count())
}

func TestReconcile_SameSubjectTwice(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestIdentity(repo)
	profile := entities.Profile{Subject: "g-1", Email: "a@x.com", Name: "A"}

	first, err := svc.Reconcile(context.Background(), profile)
	require.NoError(t, err)
	second, err := svc.Reconcile(context.Background(), profile)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.count())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Email, second.Email)
	assert.True(t, second.LastLogin.After(first.LastLogin))

	stored, found, err := repo.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, second.LastLogin, stored.LastLogin)
}

func TestReconcile_ReturningKeepsEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestIdentity(repo)

	first, err := svc.Reconcile(context.Background(), entities.Profile{Subject: "g-1", Email: "a@x.com", Name: "A"})
	require.NoError(t, err)

	// Provider now reports a different address for the same subject.
	again, err := svc.Reconcile(context.Background(), entities.Profile{Subject: "g-1", Email: "new@x.com", Name: "A"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "a@x.com", again.Email)
}

func TestReconcile_FrozenClockStillAdvances(t *testing.T) {
	repo := newFakeUserRepo()
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := NewIdentityService(repo).WithClock(func() time.Time { return fixed })
	profile := entities.Profile{Subject: "g-1", Email: "a@x.com", Name: "A"}

	first, err := svc.Reconcile(context.Background(), profile)
	require.NoError(t, err)
	second, err := svc.Reconcile(context.Background(), profile)
	require.NoError(t, err)

	assert.True(t, second.LastLogin.After(first.LastLogin))
}

func TestReconcile_LinksExistingEmail(t *testing.T) {
	repo := newFakeUserRepo()
	existing := &entities.User{
		ID:        "100",
		Email:     "a@x.com",
		Name:      "Original Name",
		IsActive:  true,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		LastLogin: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	repo.put(existing)
	svc, _ := newTestIdentity(repo)

	verified := true
	user, err := svc.Reconcile(context.Background(), entities.Profile{
		Subject:       "g-9",
		Email:         "A@X.com",
		Name:          "Provider Name",
		GivenName:     "Ann",
		FamilyName:    "Bee",
		Picture:       "https://example.com/a.png",
		Locale:        "fr",
		EmailVerified: &verified,
	})
	require.NoError(t, err)

	assert.Equal(t, "100", user.ID)
	assert.Equal(t, 1, repo.count())
	assert.True(t, user.LinkedTo("g-9"))
	assert.Equal(t, "Ann", user.GivenName)
	assert.Equal(t, "Bee", user.FamilyName)
	assert.Equal(t, "fr", user.Locale)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, "Original Name", user.Name, "linking does not overwrite the stored name")
	assert.Equal(t, existing.CreatedAt, user.CreatedAt)
	assert.True(t, user.LastLogin.After(existing.LastLogin))

	// The linked subject now takes the fast path.
	again, err := svc.Reconcile(context.Background(), entities.Profile{Subject: "g-9", Email: "a@x.com", Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "100", again.ID)
}

func TestReconcile_SubjectWinsOverEmail(t *testing.T) {
	repo := newFakeUserRepo()
	sub := "g-1"
	repo.put(&entities.User{ID: "1", ExternalSubject: &sub, Email: "one@x.com", Name: "One", IsActive: true})
	repo.put(&entities.User{ID: "2", Email: "two@x.com", Name: "Two", IsActive: true})
	svc, _ := newTestIdentity(repo)

	user, err := svc.Reconcile(context.Background(), entities.Profile{Subject: "g-1", Email: "two@x.com", Name: "Two"})
	require.NoError(t, err)
	assert.Equal(t, "1", user.ID)
}

func TestReconcile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		profile entities.Profile
	}{
		{"no subject", entities.Profile{Email: "a@x.com", Name: "A"}},
		{"no email", entities.Profile{Subject: "g-1", Name: "A"}},
		{"blank email", entities.Profile{Subject: "g-1", Email: "   ", Name: "A"}},
		{"no name", entities.Profile{Subject: "g-1", Email: "a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc, _ := newTestIdentity(repo)

			_, err := svc.Reconcile(context.Background(), tt.profile)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 0, repo.count())
		})
	}
}

func TestReconcile_ConcurrentCreateSurfacesConflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestIdentity(repo)

	// A second request creates the same account between our lookups and our insert.
	repo.beforeCreate = func() {
		repo.beforeCreate = nil
		sub := "g-1"
		repo.put(&entities.User{ID: "peer", ExternalSubject: &sub, Email: "a@x.com", Name: "A", IsActive: true})
	}

	_, err := svc.Reconcile(context.Background(), entities.Profile{Subject: "g-1", Email: "a@x.com", Name: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrConflict)
	assert.True(t, IsConflict(err))
	assert.Equal(t, 1, repo.count())

	// Retrying resolves to the winner's account.
	user, err := svc.Reconcile(context.Background(), entities.Profile{Subject: "g-1", Email: "a@x.com", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, "peer", user.ID)
}

func TestReconcile_StorageFailure(t *testing.T) {
	repo := newFakeUserRepo()
	boom := errors.New("connection reset")
	repo.failErr = boom
	svc, _ := newTestIdentity(repo)

	_, err := svc.Reconcile(context.Background(), entities.Profile{Subject: "g-1", Email: "a@x.com", Name: "A"})
	assert.ErrorIs(t, err, boom)
}
