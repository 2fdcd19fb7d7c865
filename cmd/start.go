package cmd

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"forum-indexer/core/config"
	"forum-indexer/core/database"
	"forum-indexer/core/loader"
	"forum-indexer/core/logger"
	"forum-indexer/core/metrics"
	"forum-indexer/core/middleware/auth"
	"forum-indexer/core/middleware/rayid"
	"forum-indexer/core/storage"
	"forum-indexer/feature/forum"
	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/store"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the forum indexer server",
	Long:  `Starts the HTTP server, the event intake and the model query API.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		st := store.New(db)
		if err := st.AutoMigrate(); err != nil {
			logg.Fatal("Failed to migrate schema", zap.Error(err))
		}

		// 4. Initialize Storage (content payloads)
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		resolver := content.NewResolver(client, cfg.Storage.Bucket, cfg.Forum.Content, logg)

		// 5. Load the ledger snapshot backing the authoritative accessor
		snapshot, err := chain.LoadSnapshot(cfg.Forum.Snapshot)
		if err != nil {
			logg.Fatal("Failed to load ledger snapshot", zap.Error(err))
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(forum.NewFeature(db, snapshot, resolver, logg, cfg.Forum))

		// Middleware Registration
		// RayID must be first to trace everything.
		app.Use(rayid.New())

		// Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Metrics listener (empty port disables it)
		if cfg.Server.MetricsPort != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				logg.Info("Starting metrics listener", zap.String("port", cfg.Server.MetricsPort))
				if err := http.ListenAndServe(":"+cfg.Server.MetricsPort, mux); err != nil {
					logg.Error("Metrics listener failed", zap.Error(err))
				}
			}()
		}

		// 10. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 11. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
