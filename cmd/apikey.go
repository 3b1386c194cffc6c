package cmd

import (
	"fmt"

	"github.com/USA-RedDragon/ota-server/internal/config"
	"github.com/USA-RedDragon/ota-server/internal/db"
	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/USA-RedDragon/ota-server/internal/utils"
	"github.com/spf13/cobra"
)

func newAPIKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apikey <user>",
		Short:         "Issue an admin API key, creating the user if needed",
		Args:          cobra.ExactArgs(1),
		RunE:          runAPIKey,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(cmd)
	return cmd
}

func runAPIKey(cmd *cobra.Command, args []string) error {
	config, err := config.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	err = config.Validate()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	database, err := db.MakeDB(config)
	if err != nil {
		return fmt.Errorf("failed to make database: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	user, err := models.FindOrCreateUser(database, args[0])
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	key, err := utils.GenerateJWT(config.JWT.Secret, user.ID)
	if err != nil {
		return fmt.Errorf("failed to generate API key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}
