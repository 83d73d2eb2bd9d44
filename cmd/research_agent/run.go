package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/research-lab/internal/artifacts"
	"github.com/jonathan/research-lab/internal/config"
	"github.com/jonathan/research-lab/internal/db"
	"github.com/jonathan/research-lab/internal/literature"
	"github.com/jonathan/research-lab/internal/llm"
	"github.com/jonathan/research-lab/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full research pipeline end-to-end",
	Long: `Orchestrates the entire research process: problem finding -> hypothesis generation -> experiment design -> data analysis -> paper writing.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runResearchCmd,
}

var (
	runConfigPath     string
	runDomain         string
	runOutputDir      string
	runMaxResults     int
	runMinWords       int
	runMaxWords       int
	runRetries        int
	runTimeoutSeconds int
	runSeed           int64
	runAPIKey         string
	runDatabaseURL    string
	runSearchProvider string
	runUseBrowser     bool
	runVerbose        bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runDomain, "domain", "d", "", "Research domain to investigate")
	runCommand.Flags().StringVarP(&runOutputDir, "output", "o", "", "Base directory for run artifacts")
	runCommand.Flags().IntVar(&runMaxResults, "max-results", 0, "Maximum literature search results")
	runCommand.Flags().IntVar(&runMinWords, "min-words", 0, "Target paper word count lower bound")
	runCommand.Flags().IntVar(&runMaxWords, "max-words", 0, "Target paper word count upper bound")
	runCommand.Flags().IntVar(&runRetries, "retries", 0, "Extra attempts for transient stage failures")
	runCommand.Flags().IntVar(&runTimeoutSeconds, "timeout", 0, "Paper generation timeout in seconds")
	runCommand.Flags().Int64Var(&runSeed, "seed", 0, "Simulation seed (0 uses the default)")
	runCommand.Flags().StringVar(&runSearchProvider, "search-provider", "", "Literature backend: arxiv or google")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for the arXiv scrape fallback (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed stage output")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run history persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

// runDefaults are applied after the config file and flags are merged.
func runDefaults() config.Config {
	return config.Config{
		OutputDir:      "output",
		MaxResults:     10,
		MinWords:       2500,
		MaxWords:       3000,
		Retries:        pipeline.DefaultRetries,
		TimeoutSeconds: int(pipeline.DefaultTimeout / time.Second),
		SearchProvider: "arxiv",
	}
}

func runResearchCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("domain") {
		cfg.Domain = runDomain
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("max-results") {
		cfg.MaxResults = runMaxResults
	}
	if cmd.Flags().Changed("min-words") {
		cfg.MinWords = runMinWords
	}
	if cmd.Flags().Changed("max-words") {
		cfg.MaxWords = runMaxWords
	}
	if cmd.Flags().Changed("retries") {
		cfg.Retries = runRetries
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = runTimeoutSeconds
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = runSeed
	}
	if cmd.Flags().Changed("search-provider") {
		cfg.SearchProvider = runSearchProvider
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults for unset values, then validate
	cfg = cfg.MergeWithDefaults(runDefaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: Validate required fields
	if cfg.Domain == "" {
		return fmt.Errorf("--domain must be provided (via flag or config)")
	}

	// Step 5: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 6: Database URL handling (optional)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	var store *db.Store
	if cfg.DatabaseURL != "" {
		var err error
		store, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
		} else {
			defer store.Close()
		}
	}

	searcher, err := newSearcher(ctx, cfg)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	pipeCfg := pipelineConfigFrom(cfg)
	runner := pipeline.NewRunner(pipeCfg, pipeline.DefaultStages(searcher, client, pipeCfg), artifacts.NewWriter(cfg.OutputDir), store)

	result := runner.Run(ctx)
	return resultError(result)
}

// newSearcher picks the literature backend. Google Custom Search needs
// both GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_CX.
func newSearcher(ctx context.Context, cfg config.Config) (literature.Searcher, error) {
	if cfg.SearchProvider == "google" {
		apiKey := os.Getenv("GOOGLE_SEARCH_API_KEY")
		cx := os.Getenv("GOOGLE_SEARCH_CX")
		if apiKey == "" || cx == "" {
			return nil, fmt.Errorf("google search provider requires GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_CX environment variables")
		}
		return literature.NewGoogleProvider(ctx, apiKey, cx)
	}

	opts := literature.DefaultArxivOptions()
	opts.UseBrowser = cfg.UseBrowser
	opts.Verbose = cfg.Verbose
	return literature.NewArxivClient(opts), nil
}

func pipelineConfigFrom(cfg config.Config) pipeline.Config {
	return pipeline.Config{
		Domain:     cfg.Domain,
		OutputDir:  cfg.OutputDir,
		MaxResults: cfg.MaxResults,
		MinWords:   cfg.MinWords,
		MaxWords:   cfg.MaxWords,
		Retries:    cfg.Retries,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		Seed:       cfg.Seed,
		Verbose:    cfg.Verbose,
	}
}

// resultError maps a terminal run state to the process exit behavior:
// persisted runs exit zero, everything else names the failing stage.
func resultError(result *pipeline.RunResult) error {
	switch result.State {
	case pipeline.StatePersisted:
		return nil
	case pipeline.StatePersistFailed:
		return fmt.Errorf("pipeline completed but persistence failed: %s", result.Reason)
	default:
		if result.FailedStage != "" {
			return fmt.Errorf("pipeline failed at stage %s: %s", result.FailedStage, result.Reason)
		}
		return fmt.Errorf("pipeline failed: %s", result.Reason)
	}
}
