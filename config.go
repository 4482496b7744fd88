package securelogin

import (
	"errors"
	"strings"
	"time"
)

// Config carries all engine tuning. Configure it once, pass it to
// [Builder.WithConfig], and treat it as immutable afterwards.
type Config struct {
	Password PasswordConfig
	TOTP     TOTPConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// Password hashing algorithm identifiers accepted by
// [PasswordConfig.Algorithm].
const (
	// PasswordAlgorithmArgon2id selects the hardened Argon2id strategy.
	PasswordAlgorithmArgon2id = "argon2id"
	// PasswordAlgorithmSHA256 selects the single-round salted SHA-256
	// baseline. Kept for compatibility with legacy rows; new deployments
	// should prefer argon2id.
	PasswordAlgorithmSHA256 = "sha256"
)

// PasswordConfig selects and tunes the password hashing strategy.
// Memory, Time, Parallelism, and KeyLength apply to argon2id only;
// SaltLength applies to both strategies.
type PasswordConfig struct {
	Algorithm      string // "argon2id" (default) or "sha256"
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig tunes one-time code generation and verification.
//
// Skew is the clock-drift tolerance in time steps: verification accepts
// the current counter plus or minus Skew. Zero restores the strict
// exact-window behavior.
type TOTPConfig struct {
	Issuer                  string
	Digits                  int
	Period                  int
	Algorithm               string // "SHA1" (default), "SHA256", "SHA512"
	Skew                    int
	SecretLength            int // raw secret bytes, >= 10
	EnforceReplayProtection bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls the optional login throttle. The throttle is
// active only when both EnableLoginThrottle is set and a Redis client
// was supplied through [Builder.WithRedis].
type SecurityConfig struct {
	EnableLoginThrottle bool
	EnableIPThrottle    bool
	MaxLoginAttempts    int
	LoginCooldown       time.Duration
}

// AuditConfig controls the async audit dispatcher. With DropIfFull set,
// events are counted and discarded when the buffer is saturated instead
// of blocking the authentication path.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables the in-process counter registry.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Algorithm:      PasswordAlgorithmArgon2id,
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		TOTP: TOTPConfig{
			Issuer:                  "secure-login",
			Digits:                  6,
			Period:                  30,
			Algorithm:               "SHA1",
			Skew:                    1,
			SecretLength:            20,
			EnforceReplayProtection: true,
		},
		Security: SecurityConfig{
			EnableLoginThrottle: false,
			EnableIPThrottle:    true,
			MaxLoginAttempts:    5,
			LoginCooldown:       15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

func validateConfig(cfg Config) error {
	switch strings.ToLower(cfg.Password.Algorithm) {
	case PasswordAlgorithmArgon2id, PasswordAlgorithmSHA256:
	default:
		return errors.New("config: unsupported password algorithm")
	}
	if cfg.Password.SaltLength < 16 {
		return errors.New("config: password salt length must be >= 16")
	}

	if cfg.TOTP.Digits < 6 || cfg.TOTP.Digits > 10 {
		return errors.New("config: totp digits must be between 6 and 10")
	}
	if cfg.TOTP.Period <= 0 {
		return errors.New("config: totp period must be positive")
	}
	if cfg.TOTP.Skew < 0 {
		return errors.New("config: totp skew must not be negative")
	}
	if cfg.TOTP.SecretLength < 10 {
		return errors.New("config: totp secret length must be >= 10 bytes")
	}
	switch strings.ToUpper(cfg.TOTP.Algorithm) {
	case "", "SHA1", "SHA256", "SHA512":
	default:
		return errors.New("config: unsupported totp algorithm")
	}

	if cfg.Security.EnableLoginThrottle {
		if cfg.Security.MaxLoginAttempts <= 0 {
			return errors.New("config: max login attempts must be positive")
		}
		if cfg.Security.LoginCooldown <= 0 {
			return errors.New("config: login cooldown must be positive")
		}
	}

	return nil
}
