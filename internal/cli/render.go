package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Title   lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Title:   lipgloss.Color("#FFAF00"), // amber
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

// nodeIcon marks each node type in trail listings.
var nodeIcon = map[models.NodeType]string{
	models.NodeConcept:     "◆",
	models.NodeConnection:  "↳",
	models.NodeApplication: "⚙",
	models.NodeDeepDive:    "⤓",
}

// renderResult prints an exploration result.
func renderResult(w io.Writer, res *service.ExploreResult) {
	t := defaultTheme
	if res.Degraded {
		fmt.Fprintln(w, t.errorStyle().Render("⚠ AI unavailable, showing a fallback answer"))
		if verbose && res.Reason != "" {
			fmt.Fprintln(w, t.hintStyle().Render("  reason: "+res.Reason))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, t.titleStyle().Render(res.Topic.Title))
	meta := []string{fmt.Sprintf("id %s", res.Topic.ID), fmt.Sprintf("explored %d×", res.Topic.ExplorationCount)}
	if res.AI.Difficulty != "" {
		meta = append(meta, string(res.AI.Difficulty))
	}
	if res.AI.EstimatedReadingTime > 0 {
		meta = append(meta, fmt.Sprintf("~%d min", res.AI.EstimatedReadingTime))
	}
	fmt.Fprintln(w, t.hintStyle().Render(strings.Join(meta, " · ")))
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.AI.Summary)
	fmt.Fprintln(w)

	renderNodes(w, res.Trail)

	if len(res.AI.Keywords) > 0 {
		fmt.Fprintf(w, "\nKeywords: %s\n", strings.Join(res.AI.Keywords, ", "))
	}
	if res.Session != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.statusStyle().Render(fmt.Sprintf("Score %d · %d trails · %d topics",
			res.Session.CuriosityScore, res.Session.TrailsGenerated, len(res.Session.TopicsExplored))))
	}
	fmt.Fprintln(w)
	if res.Degraded {
		fmt.Fprintln(w, t.hintStyle().Render("Trail not saved."))
	} else {
		fmt.Fprintln(w, t.completedStyle().Render(fmt.Sprintf("✓ Trail saved (depth %d)", res.Trail.MaxDepth)))
	}
}

// renderNodes prints the nodes of a trail indented by level.
func renderNodes(w io.Writer, trail *models.CuriosityTrail) {
	if trail == nil {
		return
	}
	for _, n := range trail.Nodes {
		if n.Level == 0 {
			continue
		}
		icon := nodeIcon[n.NodeType]
		if icon == "" {
			icon = "•"
		}
		indent := strings.Repeat("  ", n.Level)
		fmt.Fprintf(w, "%s%s %s\n", indent, icon, n.Title)
		if n.Description != "" {
			fmt.Fprintf(w, "%s  %s\n", indent, defaultTheme.hintStyle().Render(n.Description))
		}
	}
}

// renderTrail prints a stored trail with its header.
func renderTrail(w io.Writer, trail *models.CuriosityTrail) {
	t := defaultTheme
	fmt.Fprintln(w, t.titleStyle().Render(trail.Topic))
	fmt.Fprintln(w, t.hintStyle().Render(fmt.Sprintf("trail %s · depth %d · %d connections · %s",
		trail.ID, trail.MaxDepth, trail.TotalConnections, trail.GeneratedAt.Format("2006-01-02 15:04"))))
	if trail.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", trail.Summary)
	}
	fmt.Fprintln(w)
	renderNodes(w, trail)
}

// renderTopics prints a numbered topic list.
func renderTopics(w io.Writer, topics []models.Topic) {
	if len(topics) == 0 {
		fmt.Fprintln(w, "No topics found.")
		return
	}
	for i, t := range topics {
		fmt.Fprintf(w, "%d. %s [%s] (explored %d×)\n", i+1, t.Title, t.ID, t.ExplorationCount)
		if t.Description != "" {
			desc := t.Description
			if len(desc) > 100 {
				desc = desc[:100] + "..."
			}
			fmt.Fprintf(w, "   %s\n", desc)
		}
		if verbose && len(t.Tags) > 0 {
			fmt.Fprintf(w, "   Tags: %v\n", t.Tags)
		}
	}
}

// renderSession prints session progress.
func renderSession(w io.Writer, s *models.UserSession) {
	fmt.Fprintln(w, defaultTheme.titleStyle().Render("Session "+s.SessionID))
	fmt.Fprintf(w, "  Curiosity score:  %d\n", s.CuriosityScore)
	fmt.Fprintf(w, "  Trails generated: %d\n", s.TrailsGenerated)
	fmt.Fprintf(w, "  Topics explored:  %d\n", len(s.TopicsExplored))
	fmt.Fprintf(w, "  Time exploring:   %d min\n", s.TotalExplorationTime)
	if len(s.Achievements) > 0 {
		fmt.Fprintf(w, "  Achievements:     %s\n", strings.Join(s.Achievements, ", "))
	}
	fmt.Fprintf(w, "  Last active:      %s\n", s.LastActiveAt.Format("2006-01-02 15:04"))
}
