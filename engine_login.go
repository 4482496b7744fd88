package securelogin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gourab-0/secure-login-system/internal/rate"
	"github.com/gourab-0/secure-login-system/password"
)

// Authenticate evaluates one login attempt and returns a terminal
// [AuthOutcome]. The call is stateless: submitting a password first and
// a password plus code later are two independent evaluations, and no
// partial-auth state is retained in between.
//
// The error return carries infrastructure faults only (store or Redis
// unavailable, malformed stored credential, CSPRNG failure) plus
// [ErrLoginRateLimited]. Verification failures are expressed through the
// outcome, never through the error. Whenever the error is non-nil the
// outcome is OutcomeInvalidCredentials and must not be trusted as a
// decision.
//
// Unknown usernames and wrong passwords produce the same outcome, and
// the unknown-username path verifies against a decoy credential so the
// two cost comparable time.
func (e *Engine) Authenticate(ctx context.Context, attempt LoginAttempt) (AuthOutcome, error) {
	if e == nil || e.hasher == nil || e.users == nil || e.totp == nil {
		return OutcomeInvalidCredentials, ErrEngineNotReady
	}

	username := strings.TrimSpace(attempt.Username)
	ip := clientIPFromContext(ctx)

	if e.limiter != nil {
		if err := e.limiter.CheckLogin(ctx, username, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricLoginRateLimited)
				e.emitAudit(ctx, auditEventLoginRateLimited, false, username, ErrLoginRateLimited, nil)
				return OutcomeInvalidCredentials, ErrLoginRateLimited
			}
			return OutcomeInvalidCredentials, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	record, err := e.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Equalize timing with the wrong-password path.
			_, _ = e.hasher.Verify(attempt.Password, e.decoy)
			e.recordLoginFailure(ctx, username, ip, "unknown_username")
			return OutcomeInvalidCredentials, nil
		}
		e.emitAudit(ctx, auditEventStoreUnavailable, false, username, ErrStoreUnavailable, nil)
		return OutcomeInvalidCredentials, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.hasher.Verify(attempt.Password, record.Credential)
	if err != nil {
		return OutcomeInvalidCredentials, fmt.Errorf("%w: stored credential rejected: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		e.recordLoginFailure(ctx, username, ip, "wrong_password")
		return OutcomeInvalidCredentials, nil
	}

	e.maybeUpgradeCredential(ctx, record, attempt.Password)

	if !record.TwoFactorEnabled {
		e.finishLoginSuccess(ctx, username, ip, false)
		return OutcomeSuccess, nil
	}

	if attempt.TOTPCode == "" {
		e.metricInc(MetricTwoFactorRequired)
		e.emitAudit(ctx, auditEventTwoFactorRequired, false, username, ErrTwoFactorRequired, nil)
		return OutcomeTwoFactorRequired, nil
	}

	if len(record.TwoFactorSecret) == 0 {
		// Enabled flag with no secret is a store inconsistency, not a
		// verification failure.
		e.emitAudit(ctx, auditEventStoreUnavailable, false, username, ErrTwoFactorNotConfigured, nil)
		return OutcomeInvalidCredentials, ErrTwoFactorNotConfigured
	}

	matched, counter, err := e.totp.VerifyCode(record.TwoFactorSecret, attempt.TOTPCode, time.Now())
	if err != nil {
		return OutcomeInvalidCredentials, fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}
	if !matched {
		e.metricInc(MetricTwoFactorFailure)
		e.recordLoginFailure(ctx, username, ip, "two_factor_invalid")
		return OutcomeInvalidTwoFactorCode, nil
	}

	if e.config.TOTP.EnforceReplayProtection {
		if record.TwoFactorCounter >= 0 && counter <= record.TwoFactorCounter {
			e.metricInc(MetricTwoFactorReplay)
			e.metricInc(MetricTwoFactorFailure)
			e.emitAudit(ctx, auditEventTwoFactorReplayDenied, false, username, ErrTwoFactorInvalid, nil)
			return OutcomeInvalidTwoFactorCode, nil
		}
		if err := e.users.UpdateTwoFactorCounter(ctx, username, counter); err != nil {
			return OutcomeInvalidCredentials, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	e.metricInc(MetricTwoFactorSuccess)
	e.finishLoginSuccess(ctx, username, ip, true)
	return OutcomeSuccess, nil
}

func (e *Engine) recordLoginFailure(ctx context.Context, username, ip, reason string) {
	if e.limiter != nil {
		// Best effort: a throttle bookkeeping failure must not change the
		// authentication decision.
		_ = e.limiter.RecordFailure(ctx, username, ip)
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, username, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
}

func (e *Engine) finishLoginSuccess(ctx context.Context, username, ip string, mfa bool) {
	if e.limiter != nil {
		_ = e.limiter.Reset(ctx, username, ip)
	}
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, username, nil, func() map[string]string {
		return map[string]string{
			"mfa": fmt.Sprintf("%t", mfa),
		}
	})
}

// maybeUpgradeCredential re-hashes the just-verified password when the
// active hasher reports the stored credential is below its configured
// work factors. Failures are swallowed: the login already succeeded.
func (e *Engine) maybeUpgradeCredential(ctx context.Context, record UserRecord, plaintext string) {
	if !e.config.Password.UpgradeOnLogin {
		return
	}
	upgrader, ok := e.hasher.(password.Upgrader)
	if !ok {
		return
	}
	needs, err := upgrader.NeedsUpgrade(record.Credential)
	if err != nil || !needs {
		return
	}

	cred, err := e.hasher.Hash(plaintext)
	if err != nil {
		return
	}
	if err := e.users.UpdateCredential(ctx, record.Username, cred); err != nil {
		return
	}

	e.metricInc(MetricCredentialUpgraded)
	e.emitAudit(ctx, auditEventCredentialUpgraded, true, record.Username, nil, nil)
}
