// Dump command writes a table to a JSONL file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <table> <file>",
	Short: "Dump a table to a JSONL file",
	Long: `Dump writes every document of a table to a file, one JSON record
per line. The file is written atomically.

Example:
  larder dump orders orders.jsonl`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]

		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "dump:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		if err := db.DumpTable(name, path); err != nil {
			fmt.Fprintln(os.Stderr, "dump:", err)
			os.Exit(exitCode(err))
		}

		if flagJSON {
			return printJSON(map[string]string{"table": name, "file": path})
		}
		fmt.Printf("Dumped table %s to %s\n", name, path)
		return nil
	},
}
