package cmd

import (
	"fmt"

	"github.com/jon4hz/foxtip/internal/config"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/engine"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate today's tip once",
	Long:  `Run the tip generation for today, the same way the admin "run robot" button does. The tip is stored unpublished.`,
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

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}

		e, err := engine.New(cfg, db)
		if err != nil {
			return fmt.Errorf("failed to create engine: %w", err)
		}
		defer e.Close() //nolint: errcheck

		res := e.GenerateDailyTip(cmd.Context())
		if res.Err != nil {
			return fmt.Errorf("tip generation failed: %w", res.Err)
		}

		fmt.Printf("Tip #%d for %s\n", res.Tip.ID, res.Date)
		fmt.Printf("  %s | %s (%s)\n", res.Tip.League, res.Tip.Match, res.Tip.MatchTime)
		fmt.Printf("  %s @ %s\n", res.Tip.Prediction, res.Tip.Odds)
		fmt.Printf("  %d candidates out of %d scanned matches\n", res.Candidates, res.Tip.ScannedMatches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
