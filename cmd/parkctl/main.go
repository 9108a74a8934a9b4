package main

import (
	"os"
)

func main() {
	rootCmd.AddCommand(newQuoteCmd(), newURLCmd(), newCleanupCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
