package entities

import (
	"strings"
	"time"
)

// User represents a shopper account. Accounts are never removed; deleting
// one clears IsActive.
type User struct {
	ID              string    `json:"id" db:"id"`
	ExternalSubject *string   `json:"-" db:"external_subject"` // Google 'sub' claim, unique when set
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	GivenName       string    `json:"givenName,omitempty" db:"given_name"`
	FamilyName      string    `json:"familyName,omitempty" db:"family_name"`
	Picture         string    `json:"picture,omitempty" db:"picture"`
	Locale          string    `json:"locale,omitempty" db:"locale"`
	EmailVerified   bool      `json:"emailVerified" db:"email_verified"`
	IsActive        bool      `json:"-" db:"is_active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"-" db:"updated_at"`
	LastLogin       time.Time `json:"lastLogin" db:"last_login"`
}

// Profile is the set of claims an external identity provider asserts about
// the person signing in.
type Profile struct {
	Subject       string `json:"subject"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	GivenName     string `json:"givenName,omitempty"`
	FamilyName    string `json:"familyName,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
	EmailVerified *bool  `json:"emailVerified,omitempty"` // nil when the provider did not say
}

// Verified returns the provider's verified flag, false when absent
func (p *Profile) Verified() bool {
	return p.EmailVerified != nil && *p.EmailVerified
}

// Active returns true if the account has not been deactivated
func (u *User) Active() bool {
	return u.IsActive
}

// DisplayName prefers "given family" and falls back to the full name claim
func (u *User) DisplayName() string {
	if u.GivenName != "" && u.FamilyName != "" {
		return u.GivenName + " " + u.FamilyName
	}
	return u.Name
}

// LinkedTo reports whether the account is attached to the given subject
func (u *User) LinkedTo(subject string) bool {
	return u.ExternalSubject != nil && *u.ExternalSubject == subject
}

// TouchLogin records a login at now. Stored timestamps have microsecond
// precision, so the result is forced strictly past the previous value.
func (u *User) TouchLogin(now time.Time) {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(u.LastLogin) {
		now = u.LastLogin.Add(time.Microsecond)
	}
	u.LastLogin = now
	u.UpdatedAt = now
}

// NormalizeEmail lowercases and trims an address so the unique index
// compares like-for-like.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
