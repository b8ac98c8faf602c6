package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smartspend/smartspend/internal/importer"
)

var (
	importAccount string
	importUser    string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a statement file into an account",
	Long: `Parse a statement file (CSV, TXT or PDF), categorize its rows and
commit them to the given account together with the balance update.

Example:
  smartspend import statement.csv --account 6f1c... --user 9a2e...`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importAccount, "account", "", "target account id (required)")
	importCmd.Flags().StringVar(&importUser, "user", "", "owning user id (required)")
	importCmd.MarkFlagRequired("account")
	importCmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) error {
	logg := log()
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	resolver, err := newResolver(ctx, cfg, cat, logg)
	if err != nil {
		return fmt.Errorf("creating resolver: %w", err)
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	candidates, skipped, err := newParser(logg).Parse(data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	reconciler := importer.NewReconciler(st, resolver, nil, logg)
	count, err := reconciler.Import(ctx, importUser, importAccount, candidates)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d transactions (%d rows skipped)\n", count, skipped)
	return nil
}
