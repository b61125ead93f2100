package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"printquote/api"
	"printquote/db"
	"printquote/internal/logging"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect or reset the rate catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current catalog snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(api.NewCatalogResponse(cat), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var catalogResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace every rate table with the stock defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return fmt.Errorf("catalog reset requires --db")
		}
		conn, err := db.Open(dbPath)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := db.Migrate(conn); err != nil {
			return err
		}

		store := db.NewStore(conn, logging.Logger)
		if err := store.Reset(cmd.Context()); err != nil {
			return err
		}
		cat, err := store.LoadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("catalog reset, snapshot %s\n", cat.ID())
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogResetCmd)
}
