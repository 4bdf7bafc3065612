package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"companyclean-engine/internal/audit"
	"companyclean-engine/internal/events"
	"companyclean-engine/internal/pipeline"
	"companyclean-engine/internal/store"
)

var (
	auditOut       string
	auditFromDB    string
	auditFailUnder float64
)

var auditCmd = &cobra.Command{
	Use:   "audit [files...]",
	Short: "Score an already-cleaned batch without changing it",
	Long: `Runs only the quality checks over a cleaned batch read from files,
stdin or a database written by "engine clean --db".

Example:
  engine audit companies.json --fail-under 90`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditOut, "out", "o", "-", "output file for the report")
	auditCmd.Flags().StringVar(&auditFromDB, "from-db", "", "audit the companies stored in this sqlite database")
	auditCmd.Flags().Float64Var(&auditFailUnder, "fail-under", 0, "exit non-zero when the score is below this value")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var rep audit.Report
	if auditFromDB != "" {
		db, err := store.Open(ctx, auditFromDB)
		if err != nil {
			return err
		}
		defer db.Close()
		companies, err := store.LoadCompanies(ctx, db.Pool)
		if err != nil {
			return fmt.Errorf("load companies: %w", err)
		}
		rep, err = audit.New(cfg, logger, nil).Audit(ctx, companies, nil)
		if err != nil {
			return err
		}
	} else {
		inputs, err := readInputs(args)
		if err != nil {
			return err
		}
		_, rep, err = pipeline.New(cfg, logger, events.NewJournal()).Audit(ctx, inputs...)
		if err != nil {
			return err
		}
	}

	if err := writeFileJSON(ctx, auditOut, rep); err != nil {
		return err
	}
	if rep.Score < auditFailUnder {
		return fmt.Errorf("score %.2f is below %.2f", rep.Score, auditFailUnder)
	}
	return nil
}
