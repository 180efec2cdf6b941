// Root command for the greenhouse CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seedfolk/greenhouse/internal/bus"
	"github.com/seedfolk/greenhouse/internal/paths"
	"github.com/seedfolk/greenhouse/internal/repo"
	"github.com/seedfolk/greenhouse/internal/store"
	"github.com/seedfolk/greenhouse/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagLogLevel  string
	flagJSON      bool
)

// configDataDir and configLogLevel hold values loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use them.
var (
	configDataDir  string
	configLogLevel string
)

var rootCmd = &cobra.Command{
	Use:     "greenhouse",
	Short:   "Greenhouse is a local-first bookmark manager",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configLogLevel = cfg.GetString(cfgKeyLogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: platform data dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (default: info)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(gardenCmd)
	rootCmd.AddCommand(seedCmd)
}

// resolveConfigDir returns the configuration directory following the
// precedence chain: --config-dir flag > GREENHOUSE_CONFIG_DIR env > default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir returns the data directory following the precedence chain:
// --data-dir flag > config.yaml data_dir > GREENHOUSE_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// effectiveLogLevel returns the log level following the precedence chain:
// --log-level flag > config.yaml log_level > "" (meaning info).
func effectiveLogLevel() string {
	if flagLogLevel != "" {
		return flagLogLevel
	}
	return configLogLevel
}

// newLogger builds the CLI logger for the given level name.
func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).With().Timestamp().Logger()
}

// app bundles the wired store, bus, and repositories for one command run.
type app struct {
	store   *store.Store
	bus     *bus.Bus
	gardens *repo.GardenRepo
	seeds   *repo.SeedRepo
}

// openApp resolves and validates the effective configuration, opens the
// store (running migrations), and wires the repositories. The caller must
// call close.
func openApp(ctx context.Context) (*app, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{DataDir: dataDir, LogLevel: effectiveLogLevel()}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	b := bus.New()

	s, err := store.Open(ctx, cfg.DataDir, b, logger)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &app{
		store:   s,
		bus:     b,
		gardens: repo.NewGardenRepo(s, b, logger),
		seeds:   repo.NewSeedRepo(s, b, logger),
	}, nil
}

func (a *app) close() {
	a.bus.Close()
	a.store.Close()
}
