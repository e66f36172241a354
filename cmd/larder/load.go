// Load command reads a JSONL file into a table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <table> <file>",
	Short: "Load a JSONL file into a table",
	Long: `Load reads JSON records from a file, one per line, and upserts them
into an existing table. Records keyed like documents already in the
table replace them; malformed lines are skipped.

Example:
  larder load orders orders.jsonl`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]

		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "load:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		if err := db.LoadTable(name, path); err != nil {
			fmt.Fprintln(os.Stderr, "load:", err)
			os.Exit(exitCode(err))
		}

		if flagJSON {
			return printJSON(map[string]string{"table": name, "file": path})
		}
		fmt.Printf("Loaded %s into table %s\n", path, name)
		return nil
	},
}
