// Package main provides the entry point for the research agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "research_agent",
	Short: "Autonomous research paper generation pipeline",
	Long:  "research_agent runs a five stage pipeline that searches literature, identifies a research problem, formulates a hypothesis, designs an experiment, simulates its analysis, and generates a full research paper draft.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
