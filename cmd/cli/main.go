package main

import (
	"os"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
