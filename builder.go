package securelogin

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/gourab-0/secure-login-system/internal/rate"
	"github.com/gourab-0/secure-login-system/password"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A builder is single-use: Build succeeds
// at most once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	hasher       password.Hasher
	userProvider UserProvider
	auditSink    AuditSink

	built bool
}

// New starts a builder with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithUserProvider sets the user store. Required.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithRedis supplies the Redis client backing the login throttle. The
// throttle stays inert without one.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHasher overrides the password strategy selected by
// Config.Password.Algorithm with a custom [password.Hasher].
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink sets the destination for audit events. Only consulted
// when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the counter registry.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires dependencies, and returns a
// ready engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.config.Security.EnableLoginThrottle && b.redis == nil {
		return nil, errors.New("login throttle requires a redis client")
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		hasher, err = hasherFromConfig(b.config.Password)
		if err != nil {
			return nil, err
		}
	}

	decoy, err := decoyCredential(hasher)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  b.config,
		hasher:  hasher,
		decoy:   decoy,
		totp:    newTOTPManager(b.config.TOTP),
		audit:   newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics: NewMetrics(b.config.Metrics),
		users:   b.userProvider,
	}

	if b.config.Security.EnableLoginThrottle {
		engine.limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: b.config.Security.EnableIPThrottle,
			MaxLoginAttempts: b.config.Security.MaxLoginAttempts,
			LoginCooldown:    b.config.Security.LoginCooldown,
		})
	}

	b.built = true
	return engine, nil
}

func hasherFromConfig(cfg PasswordConfig) (password.Hasher, error) {
	switch strings.ToLower(cfg.Algorithm) {
	case "", PasswordAlgorithmArgon2id:
		return password.NewArgon2(password.Argon2Config{
			Memory:      cfg.Memory,
			Time:        cfg.Time,
			Parallelism: cfg.Parallelism,
			SaltLength:  cfg.SaltLength,
			KeyLength:   cfg.KeyLength,
		})
	case PasswordAlgorithmSHA256:
		return password.NewSHA256(password.SHA256Config{
			SaltLength: cfg.SaltLength,
		})
	default:
		return nil, errors.New("unsupported password algorithm")
	}
}

// decoyCredential is hashed from a random throwaway password at build
// time. Authenticate verifies against it when no record exists, so
// unknown-username and wrong-password attempts cost comparable time.
func decoyCredential(hasher password.Hasher) (password.Credential, error) {
	var raw [24]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return password.Credential{}, err
	}
	return hasher.Hash(hex.EncodeToString(raw[:]))
}
