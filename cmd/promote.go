package cmd

import (
	"fmt"

	"github.com/jon4hz/foxtip/internal/config"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/engine"
	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:     "promote <email>",
	Short:   "Grant the admin role to a member",
	Long:    `Set the role of an existing account to admin. The account must have registered first.`,
	Example: `foxtip promote admin@example.com`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		e, err := engine.New(cfg, db)
		if err != nil {
			return fmt.Errorf("failed to create engine: %w", err)
		}
		defer e.Close() //nolint: errcheck

		user, err := e.PromoteAdmin(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s is now an admin\n", user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}
