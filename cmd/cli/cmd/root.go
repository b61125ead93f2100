// Package cmd provides the CLI commands for printquote.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"printquote/core/catalog"
	"printquote/db"
	"printquote/internal/logging"
)

var (
	dbPath  string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "printquote",
	Short: "Price book-printing jobs against a rate catalog",
	Long: `printquote is a quotation tool for book printing.

It prices a job specification (trim size, paper, interior color, cover,
page count, copies, add-on services) against an immutable rate catalog
and produces an itemized breakdown.

Examples:
  printquote quote -f request.json
  printquote quote -f request.json --format json --db printquote.db
  printquote catalog show --db printquote.db
  printquote catalog reset --db printquote.db`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "catalog database path (omit to use the built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogging() {
	cfg := logging.DefaultConfig()
	if verbose {
		cfg.Level = "debug"
	}
	_ = logging.Initialize(cfg)
}

// loadCatalog opens the configured database, or falls back to the
// built-in default catalog when no --db is given.
func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if dbPath == "" {
		return catalog.Defaults(), nil
	}

	conn, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		return nil, err
	}
	store := db.NewStore(conn, logging.Logger)
	if err := store.SeedIfEmpty(ctx); err != nil {
		return nil, err
	}
	return store.LoadCatalog(ctx)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("printquote version 1.0.0")
	},
}
