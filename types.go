package securelogin

import (
	"context"

	"github.com/gourab-0/secure-login-system/password"
)

// AuthOutcome is the terminal result of one authentication attempt. It is
// a closed set: [Engine.Authenticate] returns exactly one of the four
// values below and nothing else. The zero value is
// OutcomeInvalidCredentials so that a forgotten assignment fails closed.
type AuthOutcome uint8

const (
	// OutcomeInvalidCredentials covers unknown username and wrong
	// password. The two cases are indistinguishable by design.
	OutcomeInvalidCredentials AuthOutcome = iota
	// OutcomeTwoFactorRequired means the password verified and a one-time
	// code must be submitted in a fresh attempt.
	OutcomeTwoFactorRequired
	// OutcomeInvalidTwoFactorCode means the password verified but the
	// submitted one-time code did not.
	OutcomeInvalidTwoFactorCode
	// OutcomeSuccess means the attempt is fully authenticated.
	OutcomeSuccess
)

// String returns a stable machine-readable name for the outcome.
func (o AuthOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTwoFactorRequired:
		return "two_factor_required"
	case OutcomeInvalidTwoFactorCode:
		return "invalid_two_factor_code"
	default:
		return "invalid_credentials"
	}
}

// LoginAttempt is the ephemeral input to [Engine.Authenticate]. It is
// never persisted. TOTPCode is empty when the caller has not yet
// collected a second factor.
type LoginAttempt struct {
	Username string
	Password string
	TOTPCode string
}

// UserRecord is the stored account state the engine evaluates a login
// attempt against. TwoFactorSecret is the raw secret bytes; its at-rest
// encoding and protection are the store's concern.
type UserRecord struct {
	UserID           string
	Username         string
	Credential       password.Credential
	TwoFactorEnabled bool
	TwoFactorSecret  []byte
	// TwoFactorCounter is the last HOTP counter accepted for this user,
	// used for replay protection. -1 means no code accepted yet.
	TwoFactorCounter int64
}

// UserSummary is the listing projection returned by
// [UserProvider.ListUsers]. It deliberately omits credential material.
type UserSummary struct {
	UserID           string
	Username         string
	TwoFactorEnabled bool
}

// CreateUserInput is passed to [UserProvider.CreateUser]. The credential
// is already hashed; providers never see plaintext passwords.
type CreateUserInput struct {
	Username   string
	Credential password.Credential
}

// TwoFactorSetup is returned by [Engine.EnableTwoFactor]. SecretBase32 is
// the RFC 4648 base32 secret to show or QR-encode for authenticator
// apps; URI is the equivalent otpauth:// enrollment URI.
type TwoFactorSetup struct {
	SecretBase32 string
	URI          string
}

// UserProvider is the interface callers implement to connect the engine
// to their user database. Implementations must return [ErrUserNotFound]
// for missing records and [ErrAccountExists] for duplicate usernames;
// any other error is treated as an infrastructure fault.
//
// Ready-made providers live in store/memory, store/sqlite, and
// store/postgres.
type UserProvider interface {
	GetUserByUsername(ctx context.Context, username string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	SetTwoFactor(ctx context.Context, username string, enabled bool, secret []byte) error
	UpdateTwoFactorCounter(ctx context.Context, username string, counter int64) error
	UpdateCredential(ctx context.Context, username string, cred password.Credential) error
	ListUsers(ctx context.Context) ([]UserSummary, error)
}
