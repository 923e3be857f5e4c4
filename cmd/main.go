// Package main provides the showroomctl CLI: the operational tools of the
// showroom site (sitemap, indexation check, TOTP setup, screenshots, asset
// upload and a local preview server) as cobra subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"showroom/internal/config"
	"showroom/pkg/logger"
	"showroom/pkg/serrors"
)

// loadConfig reads the config file named by the persistent --config flag
// into cfg and sets up logging. Subcommands are constructed before flags are
// parsed, so they share cfg by pointer.
func loadConfig(cmd *cobra.Command, cfg *config.Config) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "could not read --config")
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return serrors.Wrap(serrors.ErrInvalidConfig, err, "could not load config %s", configPath)
	}
	*cfg = *loaded

	logger.Setup(cfg.Environment, logger.WithFile(logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}))

	ctx := logger.WithFields(cmd.Context(),
		zap.String("command", cmd.Name()),
		zap.String("run_id", uuid.NewString()),
	)
	cmd.SetContext(ctx)
	logger.Debug(ctx, "config loaded", zap.String("path", configPath))

	return nil
}

// orDefault returns v unless it is empty.
func orDefault(v, def string) string {
	if v != "" {
		return v
	}

	return def
}

// newRootCommand builds the CLI with every subcommand registered.
func newRootCommand() *cobra.Command {
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:           "showroomctl",
		Short:         "Operational tools for the showroom site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd, cfg)
		},
	}
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	rootCmd.AddCommand(
		sitemapCommand(cfg),
		checkIndexCommand(cfg),
		totpCommand(cfg),
		screenshotCommand(cfg),
		screenshotPagesCommand(cfg),
		uploadAssetsCommand(cfg),
		serveCommand(cfg),
	)

	return rootCmd
}

// execute runs root and logs a failure with the context of the command that
// ran, which carries the command and run_id fields set by loadConfig.
func execute(ctx context.Context, root *cobra.Command) error {
	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return nil
	}

	logCtx := ctx
	if cmd != nil && cmd.Context() != nil {
		logCtx = cmd.Context()
	}
	logger.Error(logCtx, "command failed", zap.String("kind", serrors.KindOf(err).Error()), zap.Error(err))

	return err
}

// main executes the CLI. Any command error exits with status 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync()

			panic(p)
		}
	}()

	err := execute(ctx, newRootCommand())
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}
	logger.Sync()
	if err != nil {
		stop()
		os.Exit(1) //nolint: gocritic
	}
}
