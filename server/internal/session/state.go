package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
)

const (
	// SessionName is the name of the OAuth state cookie
	SessionName = "hugscape_oauth"

	stateKey    = "oauth_state"
	verifierKey = "oauth_code_verifier"

	// stateMaxAge bounds how long a consent screen may stay open
	stateMaxAge = 10 * 60
)

var (
	ErrStateMissing  = errors.New("oauth state missing from session")
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// StateStore keeps the OAuth state and PKCE verifier in a signed,
// encrypted cookie between the login redirect and the callback.
type StateStore struct {
	store *sessions.CookieStore
}

// NewStateStore creates a store. hashKey signs the cookie; encryptKey,
// when set, must be 16, 24 or 32 bytes.
func NewStateStore(hashKey, encryptKey []byte, secure bool) *StateStore {
	var store *sessions.CookieStore
	if len(encryptKey) > 0 {
		store = sessions.NewCookieStore(hashKey, encryptKey)
	} else {
		store = sessions.NewCookieStore(hashKey)
	}

	store.Options = &sessions.Options{
		Path:     "/auth/google",
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &StateStore{store: store}
}

// Begin generates a fresh state and verifier and saves them in the cookie
func (s *StateStore) Begin(w http.ResponseWriter, r *http.Request) (state, verifier string, err error) {
	state, err = randomToken(16)
	if err != nil {
		return "", "", err
	}
	verifier = oauth2.GenerateVerifier()

	// A stale or undecodable cookie is replaced rather than reported.
	sess, _ := s.store.Get(r, SessionName)
	sess.Values[stateKey] = state
	sess.Values[verifierKey] = verifier
	if err := sess.Save(r, w); err != nil {
		return "", "", fmt.Errorf("failed to save oauth state: %w", err)
	}
	return state, verifier, nil
}

// Consume checks the returned state against the cookie and returns the
// PKCE verifier. The cookie is cleared either way, so a state is single use.
func (s *StateStore) Consume(w http.ResponseWriter, r *http.Request, state string) (string, error) {
	sess, err := s.store.Get(r, SessionName)
	if err != nil {
		return "", ErrStateMissing
	}

	saved, _ := sess.Values[stateKey].(string)
	verifier, _ := sess.Values[verifierKey].(string)

	delete(sess.Values, stateKey)
	delete(sess.Values, verifierKey)
	sess.Options.MaxAge = -1
	sess.Save(r, w)

	if saved == "" || verifier == "" {
		return "", ErrStateMissing
	}
	if state == "" || subtle.ConstantTimeCompare([]byte(saved), []byte(state)) != 1 {
		return "", ErrStateMismatch
	}
	return verifier, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
