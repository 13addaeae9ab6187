package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/slavborworld/auth/internal/auth/domain"
	"github.com/slavborworld/auth/internal/auth/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint translates sqlite unique-constraint violations into
// store.ErrAlreadyExists. The driver has no typed error for this.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

type userRow struct {
	id             int64
	username       string
	email          string
	hashedPassword string
	role           string
	twoFAEnabled   bool
	otpSecret      sql.NullString
	lastLogin      sql.NullTime
	createdAt      time.Time
	updatedAt      time.Time
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:               r.id,
		Username:         r.username,
		Email:            r.email,
		HashedPassword:   r.hashedPassword,
		Role:             domain.Role(r.role),
		TwoFactorEnabled: r.twoFAEnabled,
		OTPSecret:        mapNullStringPtr(r.otpSecret),
		LastLogin:        mapNullTimePtr(r.lastLogin),
		CreatedAt:        r.createdAt,
		UpdatedAt:        r.updatedAt,
	}
}
