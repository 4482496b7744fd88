package securelogin

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Register hashes the password and creates the account. Duplicate
// usernames return [ErrAccountExists]; empty usernames and passwords are
// rejected before any store call. The password policy here is
// deliberately minimal (non-empty); anything stricter belongs to the
// caller.
func (e *Engine) Register(ctx context.Context, username, plaintext string) (UserRecord, error) {
	if e == nil || e.hasher == nil || e.users == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	username = strings.TrimSpace(username)
	if username == "" {
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrRegistrationInvalid, func() map[string]string {
			return map[string]string{
				"reason": "empty_username",
			}
		})
		return UserRecord{}, ErrRegistrationInvalid
	}
	if plaintext == "" {
		e.emitAudit(ctx, auditEventRegisterFailure, false, username, ErrPasswordPolicy, func() map[string]string {
			return map[string]string{
				"reason": "empty_password",
			}
		})
		return UserRecord{}, ErrPasswordPolicy
	}

	cred, err := e.hasher.Hash(plaintext)
	if err != nil {
		return UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	record, err := e.users.CreateUser(ctx, CreateUserInput{
		Username:   username,
		Credential: cred,
	})
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, username, ErrAccountExists, nil)
			return UserRecord{}, ErrAccountExists
		}
		e.emitAudit(ctx, auditEventStoreUnavailable, false, username, ErrStoreUnavailable, nil)
		return UserRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, username, nil, nil)
	return record, nil
}

// ListUsers returns the credential-free account listing from the store.
func (e *Engine) ListUsers(ctx context.Context) ([]UserSummary, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	users, err := e.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return users, nil
}
