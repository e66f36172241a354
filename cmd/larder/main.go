// Package main provides the larder CLI, a thin front end over the table
// registry for creating, inspecting, and moving data in and out of tables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
