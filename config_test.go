package securelogin

import (
	"strings"
	"testing"
)

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown password algorithm",
			mutate:  func(c *Config) { c.Password.Algorithm = "md5" },
			wantErr: "password algorithm",
		},
		{
			name:    "short salt",
			mutate:  func(c *Config) { c.Password.SaltLength = 8 },
			wantErr: "salt length",
		},
		{
			name:    "too few digits",
			mutate:  func(c *Config) { c.TOTP.Digits = 4 },
			wantErr: "digits",
		},
		{
			name:    "too many digits",
			mutate:  func(c *Config) { c.TOTP.Digits = 12 },
			wantErr: "digits",
		},
		{
			name:    "zero period",
			mutate:  func(c *Config) { c.TOTP.Period = 0 },
			wantErr: "period",
		},
		{
			name:    "negative skew",
			mutate:  func(c *Config) { c.TOTP.Skew = -1 },
			wantErr: "skew",
		},
		{
			name:    "short totp secret",
			mutate:  func(c *Config) { c.TOTP.SecretLength = 5 },
			wantErr: "secret length",
		},
		{
			name:    "unknown totp algorithm",
			mutate:  func(c *Config) { c.TOTP.Algorithm = "MD5" },
			wantErr: "totp algorithm",
		},
		{
			name: "throttle with zero attempts",
			mutate: func(c *Config) {
				c.Security.EnableLoginThrottle = true
				c.Security.MaxLoginAttempts = 0
			},
			wantErr: "login attempts",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := loginTestConfig()
			tc.mutate(&cfg)

			_, err := New().
				WithConfig(cfg).
				WithUserProvider(newLoginTestProvider(t)).
				Build()
			if err == nil {
				t.Fatal("expected Build to fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestBuildRequiresUserProvider(t *testing.T) {
	if _, err := New().WithConfig(loginTestConfig()).Build(); err == nil {
		t.Fatal("expected Build to fail without a user provider")
	}
}

func TestBuildThrottleRequiresRedis(t *testing.T) {
	cfg := loginTestConfig()
	cfg.Security.EnableLoginThrottle = true
	cfg.Security.MaxLoginAttempts = 5

	_, err := New().
		WithConfig(cfg).
		WithUserProvider(newLoginTestProvider(t)).
		Build()
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected redis requirement error, got %v", err)
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().
		WithConfig(loginTestConfig()).
		WithUserProvider(newLoginTestProvider(t))

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := validateConfig(defaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestAuthOutcomeZeroValueFailsClosed(t *testing.T) {
	var outcome AuthOutcome
	if outcome != OutcomeInvalidCredentials {
		t.Fatalf("zero outcome = %v, want OutcomeInvalidCredentials", outcome)
	}
}

func TestAuthOutcomeStrings(t *testing.T) {
	cases := map[AuthOutcome]string{
		OutcomeInvalidCredentials:   "invalid_credentials",
		OutcomeTwoFactorRequired:    "two_factor_required",
		OutcomeInvalidTwoFactorCode: "invalid_two_factor_code",
		OutcomeSuccess:              "success",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", outcome, got, want)
		}
	}
}
