package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/foxtip/internal/api"
	"github.com/jon4hz/foxtip/internal/config"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/engine"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the foxtip server",
	Long:  `Start the foxtip web server together with the scheduled tip generation and license expiry jobs.`,
	Example: `foxtip serve --config config.yml
foxtip serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint: errcheck

	// a broken store must not keep the site down
	if err := db.Migrate(cmd.Context()); err != nil {
		log.Error("database migration failed, continuing", "error", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	engine, err := engine.New(cfg, db)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}

	server, err := api.New(ctx, cfg, db, engine, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	// Start the engine in a goroutine
	go func() {
		if err := engine.Run(ctx); err != nil {
			log.Error("engine error", "error", err)
		}
	}()

	// Start the API server in a goroutine
	go func() {
		log.Info("starting API server", "listen", cfg.Listen)
		if err := server.Run(); err != nil {
			log.Error("API server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("foxtip started successfully")
	<-c
	log.Info("shutting down gracefully...")

	cancel()
	if err := engine.Close(); err != nil {
		log.Error("failed to stop engine", "error", err)
	}
	// Give the HTTP server time to drain
	time.Sleep(2 * time.Second)
}
