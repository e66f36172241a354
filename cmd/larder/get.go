// Get command reads a value from a table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/store"
)

var getCmd = &cobra.Command{
	Use:   "get <table> <key> [skey]",
	Short: "Get the value under a key",
	Long: `Get reads the value stored under a key. KV tables take one key,
KKV tables take a primary and a secondary key.

Example:
  larder get orders o1
  larder get sessions alice laptop`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "get:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		var (
			value store.Value
			found bool
		)
		if len(args) == 3 {
			kkv, err := db.KKV(name)
			if err != nil {
				fmt.Fprintln(os.Stderr, "get:", err)
				os.Exit(exitCode(err))
			}
			defer kkv.Close()
			value, found, err = kkv.Get(args[1], args[2])
			if err != nil {
				fmt.Fprintln(os.Stderr, "get:", err)
				os.Exit(exitCode(err))
			}
		} else {
			kv, err := db.KV(name)
			if err != nil {
				fmt.Fprintln(os.Stderr, "get:", err)
				os.Exit(exitCode(err))
			}
			defer kv.Close()
			value, found, err = kv.Get(args[1])
			if err != nil {
				fmt.Fprintln(os.Stderr, "get:", err)
				os.Exit(exitCode(err))
			}
		}

		if !found {
			fmt.Fprintf(os.Stderr, "get: key not found in table %q\n", name)
			os.Exit(exitUserError)
		}

		if flagJSON {
			return printJSON(value)
		}
		return printJSON(value.Data)
	},
}
