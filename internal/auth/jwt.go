package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers every validation failure: malformed, bad
	// signature, wrong algorithm, expired, or missing claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is additionally matched for tokens past their expiry
	ErrExpiredToken = fmt.Errorf("%w: token expired", ErrInvalidToken)
)

// Claims represents the JWT claims for a storefront session. Subject holds
// the email and is informational only; UserID is authoritative.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec issues and validates HS256 bearer tokens. It keeps no state
// beyond the secret, so any replica holding the same secret can validate.
type TokenCodec struct {
	secretKey []byte
	lifetime  time.Duration
	issuer    string
	now       func() time.Time
}

// NewTokenCodec creates a codec signing with secretKey. lifetime is fixed
// for every token the codec issues.
func NewTokenCodec(secretKey string, lifetime time.Duration, issuer string) *TokenCodec {
	return &TokenCodec{
		secretKey: []byte(secretKey),
		lifetime:  lifetime,
		issuer:    issuer,
		now:       time.Now,
	}
}

// WithClock returns a copy of the codec reading time from now
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Lifetime returns the validity window of issued tokens
func (c *TokenCodec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue signs a token for the user, valid for the full lifetime from now
func (c *TokenCodec) Issue(email, userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("cannot issue token without user id")
	}

	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.lifetime)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate checks signature, algorithm, issuer and expiry and returns the
// embedded user id. It never returns a partial result.
func (c *TokenCodec) Validate(tokenString string) (string, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (c *TokenCodec) parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}

	return claims, nil
}
