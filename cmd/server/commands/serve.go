package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-admin/internal/app"
	"github.com/vovakirdan/wirechat-admin/internal/config"
	"github.com/vovakirdan/wirechat-admin/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the wirechat-admin server",
	RunE:  runServe,
}

var (
	flagAddr   string
	flagDBPath string
)

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&flagDBPath, "db", "", "SQLite database path (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	bootstrapLogger := log.New("info")

	cfg, cfgFile, err := config.Load(bootstrapLogger, cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagDBPath != "" {
		cfg.DatabasePath = flagDBPath
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", cfgFile).Str("addr", cfg.Addr).Msg("starting wirechat-admin")

	if cfg.JWTSecret == "" {
		logger.Warn().Msg("jwt_secret is empty; admin tokens are unsigned-in-practice, set WIRECHAT_ADMIN_JWT_SECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
