// Tables command lists registered tables.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List registered tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "tables:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		tables, err := db.ListTables()
		if err != nil {
			fmt.Fprintln(os.Stderr, "tables:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(tables)
		}
		if len(tables) == 0 {
			fmt.Println("No tables")
			return nil
		}
		names := make([]string, 0, len(tables))
		for name := range tables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s\t%s\n", name, tables[name])
		}
		return nil
	},
}
