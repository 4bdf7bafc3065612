package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"companyclean-engine/internal/store"
)

var (
	runsDB    string
	runsLimit int
	runsShow  string
	runsPrune time.Duration
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, show or prune audit runs stored in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := runsDB
		if path == "" {
			path = storePath(cfg)
		}
		if path == "" {
			return fmt.Errorf("no database: pass --db or set store.path")
		}
		db, err := store.Open(ctx, path)
		if err != nil {
			return err
		}
		defer db.Close()

		if runsPrune > 0 {
			n, err := store.CleanupOldRuns(ctx, db.Pool, runsPrune)
			if err != nil {
				return err
			}
			logger.Info("pruned runs", zap.Int64("deleted", n), zap.Duration("older_than", runsPrune))
		}
		if runsShow != "" {
			rep, err := store.LoadReport(ctx, db.Pool, runsShow)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rep)
		}
		runs, err := store.ListRuns(ctx, db.Pool, runsLimit)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), runs)
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsDB, "db", "", "sqlite database (default store.path from config)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "newest runs to list")
	runsCmd.Flags().StringVar(&runsShow, "show", "", "print the stored report of this run id")
	runsCmd.Flags().DurationVar(&runsPrune, "prune", 0, "delete runs older than this before listing")
}
