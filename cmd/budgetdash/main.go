package main

import (
	"os"

	"github.com/joho/godotenv"

	"budgetdash/internal/commands"
)

func main() {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
