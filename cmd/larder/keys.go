// Keys command lists keys in a table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/store"
)

var keysCmd = &cobra.Command{
	Use:   "keys <table> [pkey]",
	Short: "List keys in a table",
	Long: `Keys lists the keys of a KV table, or the primary keys of a KKV
table. With a primary key argument it lists the secondary keys stored
under that primary key.

Example:
  larder keys orders
  larder keys sessions
  larder keys sessions alice`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "keys:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		tbl, err := db.GetTable(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, "keys:", err)
			os.Exit(exitCode(err))
		}
		defer tbl.Close()

		var keys []string
		switch table := tbl.(type) {
		case store.KVTable:
			if len(args) == 2 {
				fmt.Fprintf(os.Stderr, "keys: table %q is a kv table and has no primary keys\n", name)
				os.Exit(exitUserError)
			}
			keys, err = table.Keys()
		case store.KKVTable:
			if len(args) == 2 {
				keys, err = table.SecondaryKeys(args[1])
			} else {
				keys, err = table.PrimaryKeys()
			}
		default:
			fmt.Fprintf(os.Stderr, "keys: table %q has an unknown shape\n", name)
			os.Exit(exitSysError)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "keys:", err)
			os.Exit(exitCode(err))
		}

		if flagJSON {
			return printJSON(keys)
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	},
}
