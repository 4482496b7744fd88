// Command secure-login manages a local account database with password
// and TOTP two-factor authentication.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	securelogin "github.com/gourab-0/secure-login-system"
	"github.com/gourab-0/secure-login-system/store/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

type app struct {
	engine *securelogin.Engine
	store  *sqlite.Store
	log    zerolog.Logger
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)

	var (
		configPath string
		dbPath     string
		verbose    bool
	)

	a := &app{log: logger}

	root := &cobra.Command{
		Use:           "secure-login",
		Short:         "Local account database with password + TOTP login",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "config file path")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			a.log = a.log.Level(zerolog.DebugLevel)
		}

		cfg, err := loadFileConfig(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		return a.init(cfg)
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a.close()
	}

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newEnable2FACmd(a),
		newDisable2FACmd(a),
		newUsersCmd(a),
	)

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func (a *app) init(cfg fileConfig) error {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	st, err := sqlite.Open(cfg.DBPath, a.log)
	if err != nil {
		return err
	}
	a.store = st

	builder := securelogin.New().
		WithConfig(cfg.engineConfig()).
		WithUserProvider(st)

	if cfg.Throttle.Enabled {
		builder = builder.WithRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}
	if cfg.AuditLog != "" {
		f, err := os.OpenFile(cfg.AuditLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		builder = builder.WithAuditSink(securelogin.NewJSONWriterSink(f))
	}

	engine, err := builder.Build()
	if err != nil {
		st.Close()
		return fmt.Errorf("build engine: %w", err)
	}
	a.engine = engine
	return nil
}

func (a *app) close() {
	if a.engine != nil {
		a.engine.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}
