package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/repositories"
	"github.com/hugscape/storefront/internal/pkg/idgen"
	"github.com/hugscape/storefront/internal/pkg/metrics"
)

// UserRepository implements the UserRepository interface for PostgreSQL
type UserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repositories.UserRepository {
	return &UserRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "user")),
	}
}

const userColumns = `id, external_subject, email, name, given_name, family_name,
		picture, locale, email_verified, is_active, created_at, updated_at, last_login`

// userRow represents a user as stored in the database
type userRow struct {
	ID              string         `db:"id"`
	ExternalSubject sql.NullString `db:"external_subject"`
	Email           string         `db:"email"`
	Name            string         `db:"name"`
	GivenName       sql.NullString `db:"given_name"`
	FamilyName      sql.NullString `db:"family_name"`
	Picture         sql.NullString `db:"picture"`
	Locale          sql.NullString `db:"locale"`
	EmailVerified   bool           `db:"email_verified"`
	IsActive        bool           `db:"is_active"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	LastLogin       time.Time      `db:"last_login"`
}

func (r *userRow) toEntity() *entities.User {
	user := &entities.User{
		ID:            r.ID,
		Email:         r.Email,
		Name:          r.Name,
		GivenName:     r.GivenName.String,
		FamilyName:    r.FamilyName.String,
		Picture:       r.Picture.String,
		Locale:        r.Locale.String,
		EmailVerified: r.EmailVerified,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		LastLogin:     r.LastLogin,
	}
	if r.ExternalSubject.Valid {
		user.ExternalSubject = &r.ExternalSubject.String
	}
	return user
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func userRowFromEntity(user *entities.User) *userRow {
	row := &userRow{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		GivenName:     nullString(user.GivenName),
		FamilyName:    nullString(user.FamilyName),
		Picture:       nullString(user.Picture),
		Locale:        nullString(user.Locale),
		EmailVerified: user.EmailVerified,
		IsActive:      user.IsActive,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
		LastLogin:     user.LastLogin,
	}
	if user.ExternalSubject != nil {
		row.ExternalSubject = sql.NullString{String: *user.ExternalSubject, Valid: true}
	}
	return row
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "create", time.Since(start), 1, err)
	}()

	if user.ID == "" {
		user.ID = idgen.GenerateID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	r.log.Debug("creating user", slog.String("id", user.ID))

	query := `INSERT INTO users (` + userColumns + `) VALUES (
			:id, :external_subject, :email, :name, :given_name, :family_name,
			:picture, :locale, :email_verified, :is_active, :created_at, :updated_at, :last_login
		)`

	_, err = r.db.NamedExecContext(ctx, query, userRowFromEntity(user))
	if err != nil {
		err = translateError(err, "failed to create user")
		return err
	}
	return nil
}

// Update persists every mutable column of an existing user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("user", "update", time.Since(start), rows, err)
	}()

	query := `UPDATE users SET
			external_subject = :external_subject,
			email = :email,
			name = :name,
			given_name = :given_name,
			family_name = :family_name,
			picture = :picture,
			locale = :locale,
			email_verified = :email_verified,
			is_active = :is_active,
			updated_at = :updated_at,
			last_login = :last_login
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, userRowFromEntity(user))
	if err != nil {
		err = translateError(err, "failed to update user")
		return err
	}

	rows, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		err = repositories.ErrUserNotFound
		return err
	}
	return nil
}

// findOne runs a single-row user query. Absence is reported through the
// boolean, never as an error.
func (r *UserRepository) findOne(ctx context.Context, op, where string, arg any) (*entities.User, bool, error) {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("user", op, time.Since(start), rows, err)
	}()

	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	err = r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed to %s: %w", op, err)
		return nil, false, err
	}

	rows = 1
	return row.toEntity(), true, nil
}

// FindByExternalSubject looks up a user by Google subject, active or not
func (r *UserRepository) FindByExternalSubject(ctx context.Context, subject string) (*entities.User, bool, error) {
	return r.findOne(ctx, "find_by_subject", "external_subject = $1", subject)
}

// FindByEmail looks up a user by email, active or not
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, bool, error) {
	return r.findOne(ctx, "find_by_email", "email = $1", entities.NormalizeEmail(email))
}

// FindActiveByID looks up an active user by id
func (r *UserRepository) FindActiveByID(ctx context.Context, id string) (*entities.User, bool, error) {
	return r.findOne(ctx, "find_active_by_id", "id = $1 AND is_active", id)
}

// FindByID looks up a user by id, active or not
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, bool, error) {
	return r.findOne(ctx, "find_by_id", "id = $1", id)
}

// SetActive flips the active flag
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("user", "set_active", time.Since(start), rows, err)
	}()

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, at, id)
	if err != nil {
		err = fmt.Errorf("failed to set user active flag: %w", err)
		return err
	}

	rows, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		err = repositories.ErrUserNotFound
		return err
	}
	return nil
}
