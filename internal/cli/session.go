package cli

import (
	"fmt"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/spf13/cobra"
)

var (
	sessionScore        int
	sessionTrails       int
	sessionTime         int
	sessionAchievements []string
)

var sessionCmd = &cobra.Command{
	Use:   "session [session-id]",
	Short: "Show or update exploration progress",
	Long: `Show the progress of a session. Any of the update flags writes those
fields first; missing sessions are created.

The session id defaults to --session / AKILIQUEST_SESSION_ID.

Examples:
  akiliquest session my-session
  akiliquest session my-session --score 0 --achievements ""`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSession,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check store and model status",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store counts and runtime metrics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	sessionCmd.Flags().IntVar(&sessionScore, "score", 0, "set the curiosity score")
	sessionCmd.Flags().IntVar(&sessionTrails, "trails", 0, "set the generated trail count")
	sessionCmd.Flags().IntVar(&sessionTime, "time", 0, "set the exploration time in minutes")
	sessionCmd.Flags().StringSliceVar(&sessionAchievements, "achievements", nil, "set the achievements")
}

func runSession(cmd *cobra.Command, args []string) error {
	id := sessionID
	if len(args) == 1 {
		id = args[0]
	}
	if id == "" {
		return fmt.Errorf("session id required: pass it as argument or with --session")
	}

	ctx := cmd.Context()
	flags := cmd.Flags()

	u := models.SessionUpdate{SessionID: id}
	changed := false
	if flags.Changed("score") {
		u.CuriosityScore = &sessionScore
		changed = true
	}
	if flags.Changed("trails") {
		u.TrailsGenerated = &sessionTrails
		changed = true
	}
	if flags.Changed("time") {
		u.TotalExplorationTime = &sessionTime
		changed = true
	}
	if flags.Changed("achievements") {
		u.Achievements = append([]string{}, sessionAchievements...)
		changed = true
	}

	var (
		sess *models.UserSession
		err  error
	)
	if changed {
		sess, err = be.UpdateSession(ctx, u)
	} else {
		sess, err = be.Session(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	renderSession(cmd.OutOrStdout(), sess)
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	h, err := be.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}

	out := cmd.OutOrStdout()
	if h.Status == "healthy" {
		fmt.Fprintln(out, defaultTheme.completedStyle().Render("✓ healthy"))
	} else {
		fmt.Fprintln(out, defaultTheme.errorStyle().Render("✗ "+h.Status))
	}
	fmt.Fprintf(out, "  Database: %t\n", h.Database)
	if h.Model != "" {
		fmt.Fprintf(out, "  Model:    %s\n", h.Model)
	}
	if h.Version != "" {
		fmt.Fprintf(out, "  Version:  %s\n", h.Version)
	}
	if h.Status != "healthy" {
		return fmt.Errorf("store is unreachable")
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := be.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Topics:   %d\n", st.Store.Topics)
	fmt.Fprintf(out, "Trails:   %d\n", st.Store.Trails)
	fmt.Fprintf(out, "Sessions: %d\n", st.Store.Sessions)

	if r := st.Runtime; r != nil {
		fmt.Fprintf(out, "\nUptime:       %s\n", time.Duration(r.UptimeSeconds*float64(time.Second)).Round(time.Second))
		fmt.Fprintf(out, "AI calls:     %d (%d degraded)\n", r.AICalls, r.Degraded)
		if r.LLMGenerate != nil {
			fmt.Fprintf(out, "LLM generate: %d calls, avg %.0f ms\n", r.LLMGenerate.Count, r.LLMGenerate.AvgTimeMs)
		}
		if r.DBWrite != nil {
			fmt.Fprintf(out, "DB writes:    %d, avg %.1f ms\n", r.DBWrite.Count, r.DBWrite.AvgTimeMs)
		}
		if r.DBRead != nil {
			fmt.Fprintf(out, "DB reads:     %d, avg %.1f ms\n", r.DBRead.Count, r.DBRead.AvgTimeMs)
		}
	}
	return nil
}
