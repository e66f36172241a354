// Del command removes a key from a table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var delCmd = &cobra.Command{
	Use:   "del <table> <key> [skey]",
	Short: "Delete the value under a key",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		db, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "del:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		var removed bool
		if len(args) == 3 {
			kkv, err := db.KKV(name)
			if err != nil {
				fmt.Fprintln(os.Stderr, "del:", err)
				os.Exit(exitCode(err))
			}
			defer kkv.Close()
			removed, err = kkv.Delete(args[1], args[2])
			if err != nil {
				fmt.Fprintln(os.Stderr, "del:", err)
				os.Exit(exitCode(err))
			}
		} else {
			kv, err := db.KV(name)
			if err != nil {
				fmt.Fprintln(os.Stderr, "del:", err)
				os.Exit(exitCode(err))
			}
			defer kv.Close()
			removed, err = kv.Delete(args[1])
			if err != nil {
				fmt.Fprintln(os.Stderr, "del:", err)
				os.Exit(exitCode(err))
			}
		}

		if !removed {
			fmt.Fprintf(os.Stderr, "del: key not found in table %q\n", name)
			os.Exit(exitUserError)
		}

		if flagJSON {
			return printJSON(map[string]any{"table": name, "deleted": true})
		}
		fmt.Println("Deleted")
		return nil
	},
}
