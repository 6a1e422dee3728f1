package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-admin/internal/auth"
	"github.com/vovakirdan/wirechat-admin/internal/config"
	"github.com/vovakirdan/wirechat-admin/internal/log"
	"github.com/vovakirdan/wirechat-admin/internal/store/sqlite"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Provisions a dashboard administrator account",
	RunE:  runCreateAdmin,
}

var (
	flagAdminUsername string
	flagAdminFullName string
	flagAdminPassword string
)

func init() {
	RootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&flagAdminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&flagAdminFullName, "full-name", "", "admin display name")
	createAdminCmd.Flags().StringVar(&flagAdminPassword, "password", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	logger := log.New("info")

	cfg, _, err := config.Load(logger, cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	service := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	})

	admin, err := service.CreateAdmin(context.Background(), flagAdminUsername, flagAdminFullName, flagAdminPassword)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info().Int64("admin_id", admin.ID).Str("username", admin.Username).Msg("admin account created")
	return nil
}
