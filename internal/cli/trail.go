package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trailsLimit int

var trailsCmd = &cobra.Command{
	Use:   "trails",
	Short: "List the most recent curiosity trails",
	Args:  cobra.NoArgs,
	RunE:  runTrails,
}

var trailCmd = &cobra.Command{
	Use:   "trail <topic-id>",
	Short: "Show the latest curiosity trail of a topic",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrail,
}

func init() {
	trailsCmd.Flags().IntVarP(&trailsLimit, "limit", "n", 10, "max results")
}

func runTrails(cmd *cobra.Command, args []string) error {
	trails, err := be.RecentTrails(cmd.Context(), trailsLimit)
	if err != nil {
		return fmt.Errorf("recent trails: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(trails) == 0 {
		fmt.Fprintln(out, "No trails yet.")
		return nil
	}
	for i, t := range trails {
		fmt.Fprintf(out, "%d. %s [topic %s] depth %d, %d connections, %s\n",
			i+1, t.Topic, t.TopicID, t.MaxDepth, t.TotalConnections, t.GeneratedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runTrail(cmd *cobra.Command, args []string) error {
	trail, err := be.Trail(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trail: %w", err)
	}
	renderTrail(cmd.OutOrStdout(), trail)
	return nil
}
