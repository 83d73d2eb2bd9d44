package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/research-lab/internal/literature"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search arXiv for papers matching a query",
	Long:  "Runs the literature search stage standalone and prints the matched papers. Useful for checking what the problem finder would see for a domain.",
	RunE:  runSearch,
}

var (
	searchQuery      string
	searchMaxResults int
	searchUseBrowser bool
	searchVerbose    bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Search query (required)")
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 10, "Maximum results to return")
	searchCmd.Flags().BoolVar(&searchUseBrowser, "use-browser", false, "Use headless browser for the scrape fallback (requires Chrome)")
	searchCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Print fetch details")

	if err := searchCmd.MarkFlagRequired("query"); err != nil {
		panic(fmt.Sprintf("failed to mark query flag as required: %v", err))
	}

	rootCmd.AddCommand(searchCmd)
}

func runSearch(_ *cobra.Command, _ []string) error {
	opts := literature.DefaultArxivOptions()
	opts.UseBrowser = searchUseBrowser
	opts.Verbose = searchVerbose

	client := literature.NewArxivClient(opts)
	papers, err := client.Search(context.Background(), searchQuery, searchMaxResults)
	if err != nil {
		return fmt.Errorf("literature search failed: %w", err)
	}

	if len(papers) == 0 {
		fmt.Println("No papers found.")
		return nil
	}

	fmt.Printf("Found %d papers:\n\n", len(papers))
	for i, paper := range papers {
		fmt.Printf("%d. %s\n", i+1, paper.Title)
		fmt.Printf("   %s\n", paper.Identifier)
		if paper.AbstractExcerpt != "" {
			fmt.Printf("   %s\n", paper.AbstractExcerpt)
		}
		fmt.Println()
	}
	return nil
}
