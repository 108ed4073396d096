// Package main provides the entry point for the dirsearch CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/dirsearch/cmd/dirsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
