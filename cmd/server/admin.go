package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teereserve/golf-booking/internal/config"
	"github.com/teereserve/golf-booking/internal/database"
	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/repository"
)

func createAdminCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(password) < 8 {
				return fmt.Errorf("--password must be at least 8 characters")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(dbSettings(cfg))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			id, err := repository.NewUserRepo(db).Create(cmd.Context(), email, password, model.RoleAdmin, cfg.BcryptCost)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %d created\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
