// Drop command for the larder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropCmd = &cobra.Command{
	Use:   "drop <table>",
	Short: "Drop a table and delete its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "drop:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		if err := db.DropTable(name); err != nil {
			fmt.Fprintln(os.Stderr, "drop:", err)
			os.Exit(exitCode(err))
		}

		if flagJSON {
			return printJSON(map[string]string{"dropped": name})
		}
		fmt.Println("Dropped table:", name)
		return nil
	},
}
