package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"log"
	"os"

	"forum-indexer/core/config"
	"forum-indexer/core/database"
	"forum-indexer/core/logger"
	"forum-indexer/core/storage"
	"forum-indexer/feature/forum"
	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/content"
	"forum-indexer/feature/forum/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var replayFile string

// replayCmd drives the engine through a recorded event stream: one JSON
// envelope per line, in source order.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded event stream into the derived model",
	Long: `Reads event envelopes (one JSON object per line) from a file and
processes them in order against the configured database and ledger snapshot.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		st := store.New(db)
		if err := st.AutoMigrate(); err != nil {
			logg.Fatal("Failed to migrate schema", zap.Error(err))
		}

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		resolver := content.NewResolver(client, cfg.Storage.Bucket, cfg.Forum.Content, logg)

		snapshot, err := chain.LoadSnapshot(cfg.Forum.Snapshot)
		if err != nil {
			logg.Fatal("Failed to load ledger snapshot", zap.Error(err))
		}

		engine := forum.NewEngine(st, snapshot, resolver, logg, cfg.Forum)

		file, err := os.Open(replayFile)
		if err != nil {
			logg.Fatal("Failed to open event stream", zap.Error(err))
		}
		defer file.Close()

		ctx := context.Background()
		processed, failed := 0, 0

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var env forum.Envelope
			if err := json.Unmarshal(line, &env); err != nil {
				logg.Error("Skipping malformed envelope", zap.Error(err))
				failed++
				continue
			}

			if err := engine.Dispatch(ctx, env); err != nil {
				logg.Error("Event processing failed",
					zap.String("event", env.Event),
					zap.String("tx", env.Hash),
					zap.Error(err),
				)
				failed++
				continue
			}
			processed++
		}
		if err := scanner.Err(); err != nil {
			logg.Fatal("Failed to read event stream", zap.Error(err))
		}

		logg.Info("Replay finished",
			zap.Int("processed", processed),
			zap.Int("failed", failed),
		)
	},
}

func init() {
	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "events.jsonl", "Path to the event stream (JSON lines)")
	RootCmd.AddCommand(replayCmd)
}
