// Package cmd provides the smartspend CLI commands.
package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smartspend/smartspend/internal/catalog"
	"github.com/smartspend/smartspend/internal/classify"
	"github.com/smartspend/smartspend/internal/config"
	"github.com/smartspend/smartspend/internal/importer"
	"github.com/smartspend/smartspend/internal/logger"
	"github.com/smartspend/smartspend/internal/store"
)

var (
	envFile  string
	dbPath   string
	dayFirst bool
)

var rootCmd = &cobra.Command{
	Use:   "smartspend",
	Short: "Import and categorize bank statements",
	Long: `smartspend imports bank statements (CSV, TXT, PDF) into a local
SQLite database, normalizing dates and amounts and assigning categories by
keyword matching with an optional AI fallback.

Example:
  smartspend seed
  smartspend preview statement.csv
  smartspend import statement.csv --account <id> --user <id>`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		l := log()
		l.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides SMARTSPEND_DB env)")
	rootCmd.PersistentFlags().BoolVar(&dayFirst, "day-first", false, "read ambiguous two-digit dates as day-month")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(seedCmd)
}

func log() zerolog.Logger {
	return logger.New()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.DBPath)
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFile(cfg.CatalogPath)
	}
	return catalog.Default(), nil
}

func newParser(logg zerolog.Logger) *importer.StatementParser {
	return importer.NewStatementParser(
		importer.NewRowNormalizer(&importer.DateNormalizer{DayFirst: dayFirst}), logg)
}

func newResolver(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, logg zerolog.Logger) (*classify.Resolver, error) {
	var classifier classify.Classifier
	if cfg.GeminiAPIKey != "" {
		gemini, err := classify.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cat)
		if err != nil {
			return nil, err
		}
		classifier = gemini
	}
	return classify.NewResolver(cat, classifier, logg), nil
}
