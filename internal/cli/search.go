package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search explored topics",
	Long: `Search explored topics by title, description and tags.

Results are ranked by text relevance; without a text index the search falls
back to a case-insensitive substring match.

Examples:
  akiliquest search "black holes"
  akiliquest search jazz --limit 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var popularLimit int

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most explored topics",
	Args:  cobra.NoArgs,
	RunE:  runPopular,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "max results")
	popularCmd.Flags().IntVarP(&popularLimit, "limit", "n", 20, "max results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	results, err := be.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) > 0 {
		fmt.Fprintf(out, "Found %d results:\n\n", len(results))
	}
	renderTopics(out, results)
	return nil
}

func runPopular(cmd *cobra.Command, args []string) error {
	topics, err := be.Popular(cmd.Context(), popularLimit)
	if err != nil {
		return fmt.Errorf("popular topics: %w", err)
	}
	renderTopics(cmd.OutOrStdout(), topics)
	return nil
}
