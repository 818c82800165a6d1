package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/reenignearcher/pagegate/cli"
)

var version = "dev"

func main() {
	// Populate the environment from .env when running locally.
	_ = godotenv.Load()

	// Bootstrap logger with JSON/stdout defaults (before config is available)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
