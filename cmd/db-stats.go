package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jon4hz/foxtip/internal/config"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display statistics about members, tips and the admin chat log.`,
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

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %s\n", humanize.Comma(stats.Users))
		fmt.Printf("Licensed Users: %s\n", humanize.Comma(stats.LicensedUsers))
		fmt.Printf("Tips: %s\n", humanize.Comma(stats.Tips))
		fmt.Printf("Published Tips: %s\n", humanize.Comma(stats.PublishedTips))
		fmt.Printf("Chat Messages: %s\n", humanize.Comma(stats.ChatMessages))

		if stats.LatestTipDate != "" {
			fmt.Printf("Latest Tip: %s\n", stats.LatestTipDate)
		}
		if stats.LatestChatEntry != nil {
			fmt.Printf("Latest Chat Entry: %s (%s)\n", stats.LatestChatEntry.Format(time.RFC3339), humanize.Time(*stats.LatestChatEntry))
		}

		// Recent tips
		tips, err := db.GetTips(cmd.Context(), 5)
		if err == nil && len(tips) > 0 {
			fmt.Println("\nRecent Tips:")
			for _, tip := range tips {
				fmt.Printf("  ID: %d, Date: %s, Match: %s, Odds: %s, Published: %t\n",
					tip.ID, tip.Date, tip.Match, tip.Odds, tip.IsPublished)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
