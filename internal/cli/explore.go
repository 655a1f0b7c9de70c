package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/akiliquest/akiliquest/internal/service"
	"github.com/spf13/cobra"
)

var exploreCmd = &cobra.Command{
	Use:   "explore <topic>",
	Short: "Explore a topic and save its curiosity trail",
	Long: `Validate a topic, ask the AI model for a summary and five connections,
and save the result as a curiosity trail.

When the model is unavailable a fallback answer is shown and no trail is saved.

Examples:
  akiliquest explore "black holes"
  akiliquest explore jazz --session my-session`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplore,
}

var deeperCmd = &cobra.Command{
	Use:   "deeper <topic-id>",
	Short: "Extend the latest trail of a topic by one level",
	Long: `Ask the AI model for more advanced connections that build on the latest
trail of a topic and save the extended trail.

Examples:
  akiliquest deeper 6a1f0c2e9b3d4e5f60718293`,
	Args: cobra.ExactArgs(1),
	RunE: runDeeper,
}

var validateCmd = &cobra.Command{
	Use:   "validate <input>",
	Short: "Check whether an input is a sensible topic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var suggestCount int

var suggestCmd = &cobra.Command{
	Use:   "suggest [explored-topic...]",
	Short: "Suggest new topics to explore",
	Long: `Suggest new topics, avoiding the given ones and, with --session, the
topics already explored in that session.

Examples:
  akiliquest suggest
  akiliquest suggest "Jazz" "Black Holes" --count 3`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestCount, "count", "n", 5, "number of suggestions")
}

func runExplore(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	res, err := withSpinner(cmd.Context(), out, fmt.Sprintf("Exploring %q...", topic),
		func(ctx context.Context) (*service.ExploreResult, error) {
			return be.Explore(ctx, service.ExploreRequest{Topic: topic, SessionID: sessionID})
		})
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	renderResult(out, res)
	return nil
}

func runDeeper(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	res, err := withSpinner(cmd.Context(), out, "Going deeper...",
		func(ctx context.Context) (*service.ExploreResult, error) {
			return be.ExploreDeeper(ctx, service.DeeperRequest{TopicID: args[0], SessionID: sessionID})
		})
	if err != nil {
		return fmt.Errorf("explore deeper: %w", err)
	}

	renderResult(out, res)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	verdict, err := be.Validate(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	v := verdict.Value
	if v.IsValid {
		fmt.Fprintln(out, defaultTheme.completedStyle().Render("✓ Valid topic: "+v.CleanedTopic))
	} else {
		fmt.Fprintln(out, defaultTheme.errorStyle().Render("✗ Not a topic: "+v.Reason))
	}
	if len(v.Suggestions) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Try instead:")
		for _, s := range v.Suggestions {
			fmt.Fprintf(out, "  • %s\n", s)
		}
	}
	if verdict.Degraded && verbose {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("(model unavailable: "+verdict.Reason+")"))
	}
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	ideas, err := be.Suggest(cmd.Context(), sessionID, args, suggestCount)
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}

	for i, s := range ideas.Value {
		fmt.Fprintf(out, "%d. %s\n", i+1, s)
	}
	if ideas.Degraded && verbose {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("(model unavailable, showing defaults)"))
	}
	return nil
}
