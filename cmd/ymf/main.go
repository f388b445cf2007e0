// Package main provides the entry point for the ymf CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/raphaelgruber/ymfactory/internal/cli"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
