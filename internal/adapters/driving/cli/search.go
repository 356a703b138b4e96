package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

var (
	searchLimit int
	searchMode  string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search across all providers",
	Long: `Runs a query through every enabled provider (applications,
calculator, system commands, clipboard history, plugins) and prints the
merged, ranked results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 uses the configured default)")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "search mode: fuzzy or exact")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		MaxResults: searchLimit,
		Mode:       domain.SearchMode(searchMode),
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = settingsStore.Settings().MaxResults
	}
	if opts.Mode == "" {
		opts.Mode = settingsStore.Settings().SearchMode
	}
	if !opts.Mode.IsValid() {
		return fmt.Errorf("unknown search mode %q", searchMode)
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		provider := results[i].OwningProvider()
		title := results[i].Title

		cmd.Printf("  [%d] %s\n", i+1, title)
		if results[i].Subtitle != "" {
			cmd.Printf("      %s\n", results[i].Subtitle)
		}
		if provider != "" {
			cmd.Printf("      Provider: %s\n", provider)
		}
		cmd.Println()
	}
	return nil
}
