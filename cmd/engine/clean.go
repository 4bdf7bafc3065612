package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"companyclean-engine/internal/events"
	"companyclean-engine/internal/pipeline"
	"companyclean-engine/internal/store"
)

var (
	cleanOut     string
	cleanReport  string
	cleanDB      string
	cleanEvents  bool
	cleanNoStore bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [files...]",
	Short: "Clean one or more raw batches into a single canonical batch",
	Long: `Reads raw batches (stdin when no file is given), runs recovery,
resolution, merge, normalization, repair and audit, and writes the cleaned
batch and its quality report.

Example:
  engine clean batch_1.json batch_2.json --out companies.json --report report.json`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanOut, "out", "o", "-", "output file for the cleaned batch")
	cleanCmd.Flags().StringVar(&cleanReport, "report", "", "output file for the quality report (default stderr summary only)")
	cleanCmd.Flags().StringVar(&cleanDB, "db", "", "sqlite database to store the batch and report (default store.path from config)")
	cleanCmd.Flags().BoolVar(&cleanEvents, "events", false, "stream run events to stderr as JSON lines")
	cleanCmd.Flags().BoolVar(&cleanNoStore, "no-store", false, "skip the database even when one is configured")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inputs, err := readInputs(args)
	if err != nil {
		return err
	}

	j := events.NewJournal()
	if cleanEvents {
		stop := streamEvents(j, os.Stderr)
		defer stop()
	}

	p := pipeline.New(cfg, logger, j)
	res, err := p.Run(ctx, inputs...)
	if err != nil {
		return err
	}

	if err := writeFileJSON(ctx, cleanOut, res.Companies); err != nil {
		return err
	}
	if cleanReport != "" {
		if err := writeFileJSON(ctx, cleanReport, map[string]any{
			"report": res.Report,
			"stats":  res.Stats,
		}); err != nil {
			return err
		}
	}

	dbPath := cleanDB
	if dbPath == "" {
		dbPath = storePath(cfg)
	}
	if dbPath != "" && !cleanNoStore {
		db, err := store.Open(ctx, dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := store.SaveBatch(ctx, db.Pool, res.Companies); err != nil {
			return fmt.Errorf("save batch: %w", err)
		}
		runID, err := store.SaveReport(ctx, db.Pool, res.Report, len(res.Companies))
		if err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		logger.Info("stored run", zap.String("db", dbPath), zap.String("run", runID))
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d companies (%d records, %d discarded), %d roles, %d repairs, score %.2f, %d issues\n",
		res.Stats.Companies, res.Stats.Records, res.Stats.Discarded, res.Stats.Roles,
		res.Stats.Corrections, res.Report.Score, res.Report.IssueCount)
	return nil
}
