// Package sqlite provides a UserProvider backed by a local SQLite
// database, mirroring the layout the interactive tool has always used:
// one users table carrying the digest, salt, two-factor flag, and
// base32-encoded secret.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	securelogin "github.com/gourab-0/secure-login-system"
	"github.com/gourab-0/secure-login-system/password"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                 TEXT PRIMARY KEY,
	username           TEXT UNIQUE NOT NULL,
	password_digest    TEXT NOT NULL,
	password_salt      TEXT NOT NULL DEFAULT '',
	two_factor_enabled INTEGER NOT NULL DEFAULT 0,
	two_factor_secret  TEXT,
	two_factor_counter INTEGER NOT NULL DEFAULT -1
);
`

// Store is a SQLite-backed user store.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Debug().Str("path", path).Msg("sqlite user store ready")
	return &Store{db: db, log: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetUserByUsername returns the record or securelogin.ErrUserNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (securelogin.UserRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_digest, password_salt, two_factor_enabled, two_factor_secret, two_factor_counter
		 FROM users WHERE username = ?`, username)

	var (
		record  securelogin.UserRecord
		enabled int
		secret  sql.NullString
	)
	err := row.Scan(
		&record.UserID, &record.Username,
		&record.Credential.Digest, &record.Credential.Salt,
		&enabled, &secret, &record.TwoFactorCounter,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return securelogin.UserRecord{}, securelogin.ErrUserNotFound
		}
		return securelogin.UserRecord{}, fmt.Errorf("select user: %w", err)
	}

	record.TwoFactorEnabled = enabled != 0
	if secret.Valid && secret.String != "" {
		raw, err := securelogin.DecodeSecret(secret.String)
		if err != nil {
			return securelogin.UserRecord{}, fmt.Errorf("decode stored secret: %w", err)
		}
		record.TwoFactorSecret = raw
	}
	return record, nil
}

// CreateUser inserts a new row with a generated ID. Duplicate usernames
// return securelogin.ErrAccountExists.
func (s *Store) CreateUser(ctx context.Context, input securelogin.CreateUserInput) (securelogin.UserRecord, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_digest, password_salt) VALUES (?, ?, ?, ?)`,
		id, input.Username, input.Credential.Digest, input.Credential.Salt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return securelogin.UserRecord{}, securelogin.ErrAccountExists
		}
		return securelogin.UserRecord{}, fmt.Errorf("insert user: %w", err)
	}

	s.log.Debug().Str("username", input.Username).Msg("user created")
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
	encoded := sql.NullString{}
	if enabled {
		encoded = sql.NullString{String: securelogin.EncodeSecret(secret), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET two_factor_enabled = ?, two_factor_secret = ?, two_factor_counter = -1 WHERE username = ?`,
		boolToInt(enabled), encoded, username,
	)
	if err != nil {
		return fmt.Errorf("update two-factor: %w", err)
	}
	return requireRow(res)
}

// UpdateTwoFactorCounter records the last accepted HOTP counter.
func (s *Store) UpdateTwoFactorCounter(ctx context.Context, username string, counter int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET two_factor_counter = ? WHERE username = ?`, counter, username)
	if err != nil {
		return fmt.Errorf("update counter: %w", err)
	}
	return requireRow(res)
}

// UpdateCredential replaces the digest and salt as one unit.
func (s *Store) UpdateCredential(ctx context.Context, username string, cred password.Credential) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_digest = ?, password_salt = ? WHERE username = ?`,
		cred.Digest, cred.Salt, username)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	return requireRow(res)
}

// ListUsers returns all accounts ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]securelogin.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, two_factor_enabled FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var out []securelogin.UserSummary
	for rows.Next() {
		var (
			summary securelogin.UserSummary
			enabled int
		)
		if err := rows.Scan(&summary.UserID, &summary.Username, &enabled); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		summary.TwoFactorEnabled = enabled != 0
		out = append(out, summary)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return securelogin.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
