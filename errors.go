package securelogin

import "errors"

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords. The two are intentionally indistinguishable so callers
	// cannot be used as a username oracle.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by UserProvider implementations when no
	// record exists for a username. The engine never surfaces it from
	// Authenticate; it is folded into ErrInvalidCredentials semantics.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountExists is returned when registering a username that is
	// already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrRegistrationInvalid is returned for malformed registration input.
	ErrRegistrationInvalid = errors.New("invalid registration request")
	// ErrPasswordPolicy is returned when a password is rejected by the
	// active hashing strategy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrLoginRateLimited is returned when the login throttle budget for a
	// username or client IP is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrTwoFactorRequired signals that the password verified but a
	// one-time code is needed to finish authentication. It is a
	// continuation signal, not a failure.
	ErrTwoFactorRequired = errors.New("two-factor code required")
	// ErrTwoFactorInvalid is returned for a wrong, expired, or replayed
	// one-time code.
	ErrTwoFactorInvalid = errors.New("invalid two-factor code")
	// ErrTwoFactorNotConfigured is returned when a two-factor operation is
	// attempted for a user without an enrolled secret.
	ErrTwoFactorNotConfigured = errors.New("two-factor not configured")
	// ErrTwoFactorUnavailable is returned when secret generation or
	// persistence fails. It is an infrastructure fault, never a
	// verification result.
	ErrTwoFactorUnavailable = errors.New("two-factor backend unavailable")
	// ErrStoreUnavailable is returned when the user store fails for any
	// reason other than a missing record.
	ErrStoreUnavailable = errors.New("user store unavailable")
	// ErrEngineNotReady is returned when an Engine is used before Build
	// wired its dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
