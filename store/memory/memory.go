// Package memory provides an in-process UserProvider for tests, demos,
// and single-shot tools. Data does not survive the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	securelogin "github.com/gourab-0/secure-login-system"
	"github.com/gourab-0/secure-login-system/password"
)

// Store is a map-backed user store, safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	users map[string]securelogin.UserRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users: make(map[string]securelogin.UserRecord),
	}
}

// GetUserByUsername returns the record or securelogin.ErrUserNotFound.
func (s *Store) GetUserByUsername(_ context.Context, username string) (securelogin.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[username]
	if !ok {
		return securelogin.UserRecord{}, securelogin.ErrUserNotFound
	}
	return cloneRecord(record), nil
}

// CreateUser inserts a new record with a generated user ID. Duplicate
// usernames return securelogin.ErrAccountExists.
func (s *Store) CreateUser(_ context.Context, input securelogin.CreateUserInput) (securelogin.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[input.Username]; ok {
		return securelogin.UserRecord{}, securelogin.ErrAccountExists
	}

	record := securelogin.UserRecord{
		UserID:           uuid.NewString(),
		Username:         input.Username,
		Credential:       input.Credential,
		TwoFactorCounter: -1,
	}
	s.users[input.Username] = record
	return cloneRecord(record), nil
}

// SetTwoFactor stores the enabled flag and secret together. Disabling
// destroys the secret; either change resets the replay counter.
func (s *Store) SetTwoFactor(_ context.Context, username string, enabled bool, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[username]
	if !ok {
		return securelogin.ErrUserNotFound
	}

	record.TwoFactorEnabled = enabled
	record.TwoFactorSecret = nil
	record.TwoFactorCounter = -1
	if enabled {
		record.TwoFactorSecret = append([]byte(nil), secret...)
	}
	s.users[username] = record
	return nil
}

// UpdateTwoFactorCounter records the last accepted HOTP counter.
func (s *Store) UpdateTwoFactorCounter(_ context.Context, username string, counter int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[username]
	if !ok {
		return securelogin.ErrUserNotFound
	}
	record.TwoFactorCounter = counter
	s.users[username] = record
	return nil
}

// UpdateCredential replaces the stored digest and salt as one unit.
func (s *Store) UpdateCredential(_ context.Context, username string, cred password.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[username]
	if !ok {
		return securelogin.ErrUserNotFound
	}
	record.Credential = cred
	s.users[username] = record
	return nil
}

// ListUsers returns all accounts ordered by username.
func (s *Store) ListUsers(_ context.Context) ([]securelogin.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]securelogin.UserSummary, 0, len(s.users))
	for _, record := range s.users {
		out = append(out, securelogin.UserSummary{
			UserID:           record.UserID,
			Username:         record.Username,
			TwoFactorEnabled: record.TwoFactorEnabled,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func cloneRecord(record securelogin.UserRecord) securelogin.UserRecord {
	record.TwoFactorSecret = append([]byte(nil), record.TwoFactorSecret...)
	return record
}
