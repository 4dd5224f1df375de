// Command storefront runs the storefront HTTP service and its offline
// catalog tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/storefront/internal/config"
	"github.com/okian/storefront/pkg/logger"
	"github.com/okian/storefront/pkg/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront product service",
		Long:          `Serves catalog queries that are filtered, sorted and aggregated by a background compute engine.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newComputeCmd(), newGenerateCmd())
	return root
}

// setup loads configuration (defaults -> optional file -> env) and applies
// its logging and metrics settings. Logs go to stderr so command output on
// stdout stays machine readable.
func setup(ctx context.Context) (*config.Config, language.Tag, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, language.Und, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, language.Und, fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.SetEnabled(cfg.MetricsEnabled)

	locale, err := language.Parse(cfg.SortLocale)
	if err != nil {
		return nil, language.Und, fmt.Errorf("invalid sort_locale %q: %w", cfg.SortLocale, err)
	}
	return cfg, locale, nil
}
