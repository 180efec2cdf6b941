// Package main provides the greenhouse CLI, a local-first bookmark
// manager storing gardens of seeds in SQLite.
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
