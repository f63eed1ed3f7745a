package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(clock *fakeClock) *TokenCodec {
	return NewTokenCodec(testSecret, time.Hour, "hugscape").WithClock(clock.Now)
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(clock)

	token, expiresAt, err := codec.Issue("a@x.com", "42")
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(time.Hour), expiresAt)

	clock.t = clock.t.Add(59 * time.Minute)
	userID, err := codec.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "42", userID)
}

func TestValidate_ExpiredAfterLifetime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(clock)

	token, _, err := codec.Issue("a@x.com", "42")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour + time.Second)
	userID, err := codec.Validate(token)
	assert.Empty(t, userID)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_FailsClosed(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(clock)

	valid, _, err := codec.Issue("a@x.com", "42")
	require.NoError(t, err)

	other := NewTokenCodec("ffffffffffffffffffffffffffffffff", time.Hour, "hugscape").WithClock(clock.Now)
	foreign, _, err := other.Issue("a@x.com", "42")
	require.NoError(t, err)

	otherIssuer := NewTokenCodec(testSecret, time.Hour, "someone-else").WithClock(clock.Now)
	wrongIssuer, _, err := otherIssuer.Issue("a@x.com", "42")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "42",
		"iss":     "hugscape",
		"exp":     clock.t.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUserID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a@x.com",
		"iss": "hugscape",
		"exp": clock.t.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "42",
		"iss":     "hugscape",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"foreign secret": foreign,
		"wrong issuer":   wrongIssuer,
		"tampered":       tampered,
		"alg none":       noneToken,
		"no user id":     noUserID,
		"no expiry":      noExpiry,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			userID, err := codec.Validate(token)
			assert.Empty(t, userID)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestIssue_FreshWindowEachTime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(clock)

	_, first, err := codec.Issue("a@x.com", "42")
	require.NoError(t, err)

	clock.t = clock.t.Add(50 * time.Minute)
	_, second, err := codec.Issue("a@x.com", "42")
	require.NoError(t, err)

	assert.Equal(t, 50*time.Minute, second.Sub(first))
}

func TestIssue_RequiresUserID(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour, "hugscape")
	_, _, err := codec.Issue("a@x.com", "")
	assert.Error(t, err)
}
