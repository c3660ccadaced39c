package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"AstroSignal/internal/di"
	"AstroSignal/pkg/config"
)

type rootOptions struct {
	configPath string
	backend    string
	zodiac     string
	logLevel   string
}

// NewRootCmd builds the astrosignal command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "astrosignal",
		Short:         "Aspect-based sentiment timelines",
		Long:          "astrosignal samples planetary longitudes over a window, detects aspects and prints the points where the derived sentiment changes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (defaults and ASTRO_* env when empty)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "ephemeris backend override: analytic, almanac, clickhouse")
	root.PersistentFlags().StringVar(&opts.zodiac, "zodiac", "", "zodiac override: tropical, sidereal")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newTimelineCmd(opts), newAspectsCmd(opts), newSeedCmd(opts))
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		if cfg, err = config.LoadWithEnv(o.configPath); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	if o.backend != "" {
		cfg.Ephemeris.Backend = o.backend
	}
	if o.zodiac != "" {
		cfg.Ephemeris.Zodiac = o.zodiac
	}
	cfg.Log.Level = o.logLevel
	cfg.Log.Format = "console"
	cfg.Log.Output = "stderr"
	cfg.Metrics.Enabled = false
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) engine() (*config.Config, *di.Engine, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	eng, err := di.InitializeEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, eng, nil
}
