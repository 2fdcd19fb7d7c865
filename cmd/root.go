package cmd

import (
	"fmt"
	"os"

	"forum-indexer/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "forum-indexer",
	Short: "Forum Indexer Service",
	Long: `Forum Indexer materializes a queryable forum data model from an ordered
stream of ledger events. It keeps counters, ratings, translations, search
blobs and documentation trees consistent with ledger truth.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding for CLI error reporting; the configured logger
		// may not exist yet at this point.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
