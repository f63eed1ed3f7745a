package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugscape/storefront/internal/auth"
	"github.com/hugscape/storefront/internal/domain/entities"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

type sessionFixture struct {
	repo    *fakeUserRepo
	clock   *stepClock
	session *SessionService
}

func newSessionFixture() *sessionFixture {
	repo := newFakeUserRepo()
	identity, clock := newTestIdentity(repo)
	codec := auth.NewTokenCodec(testSigningKey, time.Hour, "hugscape").WithClock(clock.Now)
	return &sessionFixture{
		repo:    repo,
		clock:   clock,
		session: NewSessionService(identity, repo, codec),
	}
}

var annProfile = entities.Profile{Subject: "g-1", Email: "a@x.com", Name: "A"}

func TestLogin_IssuesTokenForReconciledUser(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "a@x.com", sess.User.Email)

	user, err := f.session.Authenticate(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, user.ID)
}

func TestLogin_TwiceSameAccount(t *testing.T) {
	f := newSessionFixture()

	first, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)
	second, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.True(t, second.User.LastLogin.After(first.User.LastLogin))
	assert.Equal(t, 1, f.repo.count())
}

func TestLogin_RejectsDeactivatedAccount(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)
	require.NoError(t, f.repo.SetActive(context.Background(), sess.User.ID, false, time.Now()))

	_, err = f.session.Login(context.Background(), annProfile)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	stored, found, err := f.repo.FindByID(context.Background(), sess.User.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, stored.IsActive, "login must not reactivate the account")
}

func TestLogin_ValidationPassesThrough(t *testing.T) {
	f := newSessionFixture()
	_, err := f.session.Login(context.Background(), entities.Profile{Subject: "g-1"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate_DeactivatedLooksLikeBadToken(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)
	require.NoError(t, f.repo.SetActive(context.Background(), sess.User.ID, false, time.Now()))

	_, deactivatedErr := f.session.Authenticate(context.Background(), sess.Token)
	_, garbageErr := f.session.Authenticate(context.Background(), "garbage")

	require.Error(t, deactivatedErr)
	require.Error(t, garbageErr)
	assert.ErrorIs(t, deactivatedErr, ErrInvalidCredential)
	assert.ErrorIs(t, garbageErr, ErrInvalidCredential)
	assert.Equal(t, garbageErr.Error(), deactivatedErr.Error())
}

func TestAuthenticate_FailureKinds(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)

	foreign := auth.NewTokenCodec("ffffffffffffffffffffffffffffffff", time.Hour, "hugscape")
	foreignToken, _, err := foreign.Issue("a@x.com", sess.User.ID)
	require.NoError(t, err)

	orphanToken, _, err := auth.NewTokenCodec(testSigningKey, time.Hour, "hugscape").
		WithClock(f.clock.Now).Issue("ghost@x.com", "does-not-exist")
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"foreign secret": foreignToken,
		"unknown user":   orphanToken,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			user, err := f.session.Authenticate(context.Background(), token)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(2 * time.Hour)
	_, err = f.session.Authenticate(context.Background(), sess.Token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestRefresh_GrantsFullLifetime(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(50 * time.Minute)
	refreshed, err := f.session.Refresh(context.Background(), sess.Token)
	require.NoError(t, err)

	assert.Equal(t, sess.User.ID, refreshed.User.ID)
	assert.True(t, refreshed.ExpiresAt.Sub(sess.ExpiresAt) >= 50*time.Minute)

	// Past the old token's expiry only the refreshed one is accepted.
	f.clock.t = f.clock.t.Add(30 * time.Minute)
	_, err = f.session.Authenticate(context.Background(), sess.Token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
	_, err = f.session.Authenticate(context.Background(), refreshed.Token)
	assert.NoError(t, err)
}

func TestRefresh_RejectsDeactivated(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.session.Login(context.Background(), annProfile)
	require.NoError(t, err)
	require.NoError(t, f.repo.SetActive(context.Background(), sess.User.ID, false, time.Now()))

	_, err = f.session.Refresh(context.Background(), sess.Token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
