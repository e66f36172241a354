// Create command for the larder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/store"
)

var createType string

var createCmd = &cobra.Command{
	Use:   "create <table>",
	Short: "Create a new table",
	Long: `Create registers a new table of the given type.

Table names must start with a letter and contain only letters, digits,
and underscores.

Example:
  larder create orders
  larder create sessions --type kkv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		if createType != string(store.TypeKV) && createType != string(store.TypeKKV) {
			fmt.Fprintf(os.Stderr, "invalid type %q (valid: kv, kkv)\n", createType)
			os.Exit(exitUserError)
		}

		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		if createType == string(store.TypeKKV) {
			err = db.CreateKKVTable(name)
		} else {
			err = db.CreateKVTable(name)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitCode(err))
		}

		if flagJSON {
			return printJSON(map[string]string{"name": name, "type": createType})
		}
		fmt.Printf("Created %s table: %s\n", createType, name)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createType, "type", string(store.TypeKV), "table type (kv, kkv)")
}
