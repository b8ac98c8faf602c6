package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Parse a statement file and show what would be imported",
	Long: `Parse a statement file and print the normalized transactions with
their resolved categories, without writing anything to the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	logg := log()
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
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

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, c := range candidates {
		category := resolver.Resolve(ctx, c.Description, c.Category)
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			c.Date.Format("2006-01-02"), c.Type, c.Amount, category, c.Description)
	}
	w.Flush()

	fmt.Printf("\n%d transactions parsed, %d rows skipped\n", len(candidates), skipped)
	return nil
}
