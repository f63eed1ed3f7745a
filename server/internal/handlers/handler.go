package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/services"
	"github.com/hugscape/storefront/server/internal/session"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// SessionService issues and refreshes bearer tokens
type SessionService interface {
	Login(ctx context.Context, profile entities.Profile) (*services.Session, error)
	Refresh(ctx context.Context, token string) (*services.Session, error)
}

// ProfileService edits the caller's account
type ProfileService interface {
	UpdateProfile(ctx context.Context, userID string, update services.ProfileUpdate) (*entities.User, error)
}

// ProductService is the catalog surface exposed over HTTP
type ProductService interface {
	ListActive(ctx context.Context) ([]*entities.Product, error)
	Get(ctx context.Context, id string) (*entities.Product, error)
	Create(ctx context.Context, in services.ProductInput) (*entities.Product, error)
	Update(ctx context.Context, id string, in services.ProductInput) (*entities.Product, error)
	Delete(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, id string, quantity int) error
}

// OAuthProvider runs the external authorization-code flow
type OAuthProvider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*entities.Profile, error)
}

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the handler settings taken from the application config
type Config struct {
	FrontendCallbackURL string
	AllowProfileLogin   bool
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessions SessionService
	profiles ProfileService
	products ProductService
	google   OAuthProvider // nil when Google login is not configured
	state    *session.StateStore
	db       Pinger
	cfg      Config
	log      *slog.Logger
}

// New creates a new handler. google may be nil.
func New(
	sessions SessionService,
	profiles ProfileService,
	products ProductService,
	google OAuthProvider,
	state *session.StateStore,
	db Pinger,
	cfg Config,
) *Handler {
	return &Handler{
		sessions: sessions,
		profiles: profiles,
		products: products,
		google:   google,
		state:    state,
		db:       db,
		cfg:      cfg,
		log:      slog.Default().With(slog.String("component", "handlers")),
	}
}

// decodeJSON reads a single JSON object from the request body
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", services.ErrValidation, err)
	}
	return nil
}
