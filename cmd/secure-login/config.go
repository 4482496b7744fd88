package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	securelogin "github.com/gourab-0/secure-login-system"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk tool configuration. Every field has a
// working default so a missing file is not an error.
type fileConfig struct {
	DBPath            string `yaml:"db_path"`
	RedisAddr         string `yaml:"redis_addr"`
	AuditLog          string `yaml:"audit_log"`
	Issuer            string `yaml:"issuer"`
	PasswordAlgorithm string `yaml:"password_algorithm"`
	TOTPSkew          int    `yaml:"totp_skew"`
	Throttle          struct {
		Enabled         bool `yaml:"enabled"`
		MaxAttempts     int  `yaml:"max_attempts"`
		CooldownMinutes int  `yaml:"cooldown_minutes"`
	} `yaml:"throttle"`
}

func defaultFileConfig() fileConfig {
	cfg := fileConfig{
		DBPath:            defaultDBPath(),
		Issuer:            "secure-login",
		PasswordAlgorithm: securelogin.PasswordAlgorithmArgon2id,
		TOTPSkew:          1,
	}
	cfg.Throttle.MaxAttempts = 5
	cfg.Throttle.CooldownMinutes = 15
	return cfg
}

func loadFileConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

func (c fileConfig) engineConfig() securelogin.Config {
	cfg := securelogin.Config{
		Password: securelogin.PasswordConfig{
			Algorithm:      c.PasswordAlgorithm,
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		TOTP: securelogin.TOTPConfig{
			Issuer:                  c.Issuer,
			Digits:                  6,
			Period:                  30,
			Algorithm:               "SHA1",
			Skew:                    c.TOTPSkew,
			SecretLength:            20,
			EnforceReplayProtection: true,
		},
		Audit: securelogin.AuditConfig{
			Enabled:    c.AuditLog != "",
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: securelogin.MetricsConfig{Enabled: false},
	}

	if c.Throttle.Enabled {
		cfg.Security = securelogin.SecurityConfig{
			EnableLoginThrottle: true,
			EnableIPThrottle:    false,
			MaxLoginAttempts:    c.Throttle.MaxAttempts,
			LoginCooldown:       time.Duration(c.Throttle.CooldownMinutes) * time.Minute,
		}
	}

	return cfg
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func defaultDBPath() string {
	return filepath.Join(configDir(), "users.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".secure-login"
	}
	return filepath.Join(home, ".secure-login")
}
