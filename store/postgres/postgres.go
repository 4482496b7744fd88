// Package postgres provides a UserProvider backed by PostgreSQL through
// a pgx connection pool, for deployments that keep accounts in a shared
// database rather than a local file.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	securelogin "github.com/gourab-0/secure-login-system"
	"github.com/gourab-0/secure-login-system/password"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                 TEXT PRIMARY KEY,
	username           TEXT UNIQUE NOT NULL,
	password_digest    TEXT NOT NULL,
	password_salt      TEXT NOT NULL DEFAULT '',
	two_factor_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	two_factor_secret  BYTEA,
	two_factor_counter BIGINT NOT NULL DEFAULT -1
)`

// Store is a PostgreSQL-backed user store.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool. The pool's lifecycle belongs to
// the caller.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InitSchema creates the users table if it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// GetUserByUsername returns the record or securelogin.ErrUserNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (securelogin.UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_digest, password_salt, two_factor_enabled, two_factor_secret, two_factor_counter
		 FROM users WHERE username = $1`, username)

	var record securelogin.UserRecord
	err := row.Scan(
		&record.UserID, &record.Username,
		&record.Credential.Digest, &record.Credential.Salt,
		&record.TwoFactorEnabled, &record.TwoFactorSecret, &record.TwoFactorCounter,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return securelogin.UserRecord{}, securelogin.ErrUserNotFound
		}
		return securelogin.UserRecord{}, fmt.Errorf("select user: %w", err)
	}
	return record, nil
}

// CreateUser inserts a new row with a generated ID. Duplicate usernames
// return securelogin.ErrAccountExists.
func (s *Store) CreateUser(ctx context.Context, input securelogin.CreateUserInput) (securelogin.UserRecord, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_digest, password_salt) VALUES ($1, $2, $3, $4)`,
		id, input.Username, input.Credential.Digest, input.Credential.Salt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return securelogin.UserRecord{}, securelogin.ErrAccountExists
		}
		return securelogin.UserRecord{}, fmt.Errorf("insert user: %w", err)
	}

	return securelogin.UserRecord{
		UserID:           id,
		Username:         input.Username,
		Credential:       input.Credential,
		TwoFactorCounter: -1,
	}, nil
}

// SetTwoFactor stores the flag and secret together; disabling nulls the
// secret. Either direction resets the replay counter.
func (s *Store) SetTwoFactor(ctx context.Context, username string, enabled bool, secret []byte) error {
	var stored []byte
	if enabled {
		stored = secret
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET two_factor_enabled = $1, two_factor_secret = $2, two_factor_counter = -1 WHERE username = $3`,
		enabled, stored, username,
	)
	if err != nil {
		return fmt.Errorf("update two-factor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return securelogin.ErrUserNotFound
	}
	return nil
}

// UpdateTwoFactorCounter records the last accepted HOTP counter.
func (s *Store) UpdateTwoFactorCounter(ctx context.Context, username string, counter int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET two_factor_counter = $1 WHERE username = $2`, counter, username)
	if err != nil {
		return fmt.Errorf("update counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return securelogin.ErrUserNotFound
	}
	return nil
}

// UpdateCredential replaces the digest and salt as one unit.
func (s *Store) UpdateCredential(ctx context.Context, username string, cred password.Credential) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_digest = $1, password_salt = $2 WHERE username = $3`,
		cred.Digest, cred.Salt, username)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return securelogin.ErrUserNotFound
	}
	return nil
}

// ListUsers returns all accounts ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]securelogin.UserSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, two_factor_enabled FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var out []securelogin.UserSummary
	for rows.Next() {
		var summary securelogin.UserSummary
		if err := rows.Scan(&summary.UserID, &summary.Username, &summary.TwoFactorEnabled); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
