package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/hugscape/storefront/internal/config"
	"github.com/hugscape/storefront/internal/domain/entities"
)

// UserinfoURL is Google's OpenID Connect userinfo endpoint
const UserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var ErrMissingClaims = errors.New("google userinfo missing required claims")

// Provider runs the Google authorization-code flow and turns the result
// into an entities.Profile.
type Provider struct {
	oauth2Config *oauth2.Config
	userinfoURL  string
	log          *slog.Logger
}

// Option customises a Provider
type Option func(*Provider)

// WithEndpoint overrides Google's OAuth2 endpoints
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *Provider) { p.oauth2Config.Endpoint = endpoint }
}

// WithUserinfoURL overrides the userinfo endpoint
func WithUserinfoURL(url string) Option {
	return func(p *Provider) { p.userinfoURL = url }
}

// New creates a Google provider from config
func New(cfg config.GoogleConfig, opts ...Option) (*Provider, error) {
	if !cfg.Enabled() || cfg.RedirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}

	p := &Provider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       scopes,
		},
		userinfoURL: UserinfoURL,
		log:         slog.Default().With(slog.String("provider", "google")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "google"
}

// AuthCodeURL builds the consent URL for state, bound to the PKCE verifier
func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.oauth2Config.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
	)
}

// userinfo mirrors Google's userinfo response
type userinfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// Exchange trades the authorization code for a token and reads the
// caller's profile from the userinfo endpoint.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*entities.Profile, error) {
	token, err := p.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	resp, err := p.oauth2Config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	if info.Subject == "" || info.Email == "" {
		return nil, ErrMissingClaims
	}

	p.log.Debug("google userinfo fetched",
		slog.Bool("email_verified", info.EmailVerified != nil && *info.EmailVerified),
		slog.Bool("has_name", info.Name != ""))

	return &entities.Profile{
		Subject:       info.Subject,
		Email:         info.Email,
		Name:          info.Name,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		Picture:       info.Picture,
		Locale:        info.Locale,
		EmailVerified: info.EmailVerified,
	}, nil
}
