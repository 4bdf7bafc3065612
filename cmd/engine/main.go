package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"companyclean-engine/internal/config"
)

var (
	verbose   bool
	dataDir   string
	cfgPath   string
	vocabPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Recover, deduplicate and normalize company records",
	Long: `engine cleans noisy machine-generated company batches.

It salvages records from broken JSON, merges records that describe the same
company, maps free text onto fixed vocabularies, repairs salary ranges and
scores the result with a categorized quality report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// data dir: env if provided, else local folder
	defaultDir := os.Getenv("COMPANYCLEAN_DATA_DIR")
	if defaultDir == "" {
		defaultDir = "."
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDir, "directory holding config.yml and the default database")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default <data-dir>/config.yml)")
	rootCmd.PersistentFlags().StringVar(&vocabPath, "vocabulary", "", "extra vocabulary file (default <data-dir>/vocabulary.yml)")

	rootCmd.AddCommand(cleanCmd, auditCmd, runsCmd, configCmd)
}

// loadConfig reads the config file when there is one, overlays the
// vocabulary file and validates the result.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	path := cfgPath
	if path == "" {
		path = filepath.Join(dataDir, "config.yml")
	}
	if _, err := os.Stat(path); err == nil {
		if cfg, err = config.Load(path); err != nil {
			return cfg, fmt.Errorf("config load failed (%s): %w", path, err)
		}
	} else if cfgPath != "" {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	vp := vocabPath
	if vp == "" {
		vp = filepath.Join(dataDir, "vocabulary.yml")
	}
	if err := config.OverlayVocabulary(&cfg, vp); err != nil {
		return cfg, err
	}

	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
