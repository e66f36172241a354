// Set command writes a value into a table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/store"
)

var setCmd = &cobra.Command{
	Use:   "set <table> <key> [skey] <data>",
	Short: "Set a value under a key",
	Long: `Set writes a JSON object under a key. KV tables take one key,
KKV tables take a primary and a secondary key.

Example:
  larder set orders o1 '{"item": "book", "qty": "3"}'
  larder set sessions alice laptop '{"ip": "10.0.0.1"}'`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		data, err := parseDataJSON(args[len(args)-1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "set:", err)
			os.Exit(exitUserError)
		}

		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "set:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		// Key arity picks the table shape; a mismatch against the registered
		// type surfaces as a wrong-table-type error.
		if len(args) == 4 {
			kkv, err := db.KKV(name)
			if err != nil {
				fmt.Fprintln(os.Stderr, "set:", err)
				os.Exit(exitCode(err))
			}
			defer kkv.Close()
			if err := kkv.Set(args[1], args[2], store.NewValue(data)); err != nil {
				fmt.Fprintln(os.Stderr, "set:", err)
				os.Exit(exitCode(err))
			}
		} else {
			kv, err := db.KV(name)
			if err != nil {
				fmt.Fprintln(os.Stderr, "set:", err)
				os.Exit(exitCode(err))
			}
			defer kv.Close()
			if err := kv.Set(args[1], store.NewValue(data)); err != nil {
				fmt.Fprintln(os.Stderr, "set:", err)
				os.Exit(exitCode(err))
			}
		}

		if flagJSON {
			return printJSON(map[string]string{"table": name, "key": args[1]})
		}
		fmt.Println("OK")
		return nil
	},
}
