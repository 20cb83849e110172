// Package main is the entry point for oct, the OpenAI cost tracker.
package main

import (
	"os"

	"github.com/j-veylop/openai-cost-tui/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
