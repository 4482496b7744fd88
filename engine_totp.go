package securelogin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EnableTwoFactor provisions a fresh secret for the user and persists it
// together with the enabled flag. Re-enabling replaces any previous
// secret; secrets are never reused or derived. The returned setup holds
// the base32 secret and the otpauth:// URI for authenticator apps.
func (e *Engine) EnableTwoFactor(ctx context.Context, username string) (*TwoFactorSetup, error) {
	if e == nil || e.users == nil || e.totp == nil {
		return nil, ErrEngineNotReady
	}

	username = strings.TrimSpace(username)
	if _, err := e.lookupUser(ctx, username); err != nil {
		return nil, err
	}

	raw, secretBase32, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}
	if err := e.users.SetTwoFactor(ctx, username, true, raw); err != nil {
		e.emitAudit(ctx, auditEventStoreUnavailable, false, username, ErrTwoFactorUnavailable, nil)
		return nil, fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}

	e.metricInc(MetricTwoFactorEnabled)
	e.emitAudit(ctx, auditEventTwoFactorEnabled, true, username, nil, nil)

	return &TwoFactorSetup{
		SecretBase32: secretBase32,
		URI:          e.totp.ProvisionURI(secretBase32, username),
	}, nil
}

// DisableTwoFactor clears the flag and destroys the stored secret.
func (e *Engine) DisableTwoFactor(ctx context.Context, username string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	username = strings.TrimSpace(username)
	if _, err := e.lookupUser(ctx, username); err != nil {
		return err
	}

	if err := e.users.SetTwoFactor(ctx, username, false, nil); err != nil {
		e.emitAudit(ctx, auditEventStoreUnavailable, false, username, ErrTwoFactorUnavailable, nil)
		return fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}

	e.metricInc(MetricTwoFactorDisabled)
	e.emitAudit(ctx, auditEventTwoFactorDisabled, true, username, nil, nil)
	return nil
}

// VerifyTwoFactor checks a one-time code outside the login flow, for
// callers gating sensitive operations. Replay protection applies the
// same way it does during login.
func (e *Engine) VerifyTwoFactor(ctx context.Context, username, code string) error {
	if e == nil || e.users == nil || e.totp == nil {
		return ErrEngineNotReady
	}

	username = strings.TrimSpace(username)
	record, err := e.lookupUser(ctx, username)
	if err != nil {
		return err
	}
	if !record.TwoFactorEnabled || len(record.TwoFactorSecret) == 0 {
		return ErrTwoFactorNotConfigured
	}
	if code == "" {
		e.metricInc(MetricTwoFactorRequired)
		e.emitAudit(ctx, auditEventTwoFactorRequired, false, username, ErrTwoFactorRequired, nil)
		return ErrTwoFactorRequired
	}

	matched, counter, err := e.totp.VerifyCode(record.TwoFactorSecret, code, time.Now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}
	if !matched {
		e.metricInc(MetricTwoFactorFailure)
		e.emitAudit(ctx, auditEventTwoFactorFailure, false, username, ErrTwoFactorInvalid, nil)
		return ErrTwoFactorInvalid
	}

	if e.config.TOTP.EnforceReplayProtection {
		if record.TwoFactorCounter >= 0 && counter <= record.TwoFactorCounter {
			e.metricInc(MetricTwoFactorReplay)
			e.emitAudit(ctx, auditEventTwoFactorReplayDenied, false, username, ErrTwoFactorInvalid, nil)
			return ErrTwoFactorInvalid
		}
		if err := e.users.UpdateTwoFactorCounter(ctx, username, counter); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	e.metricInc(MetricTwoFactorSuccess)
	e.emitAudit(ctx, auditEventTwoFactorSuccess, true, username, nil, nil)
	return nil
}

// TwoFactorCode returns the code for the current time step of an
// enrolled user. It exists for the enrollment flow, where the freshly
// provisioned code is shown so the user can check their authenticator
// app against it.
func (e *Engine) TwoFactorCode(ctx context.Context, username string) (string, error) {
	if e == nil || e.users == nil || e.totp == nil {
		return "", ErrEngineNotReady
	}

	record, err := e.lookupUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if !record.TwoFactorEnabled || len(record.TwoFactorSecret) == 0 {
		return "", ErrTwoFactorNotConfigured
	}

	code, err := e.totp.GenerateCode(record.TwoFactorSecret, time.Now())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}
	return code, nil
}

func (e *Engine) lookupUser(ctx context.Context, username string) (UserRecord, error) {
	record, err := e.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return record, nil
}
