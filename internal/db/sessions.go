package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/surrealdb/surrealdb.go"
	"golang.org/x/sync/errgroup"
)

// UpdateUserSession upserts a session. Supplied fields overwrite, missing ones
// keep their stored value or get seeded on insert.
func (c *Client) UpdateUserSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error) {
	if u.SessionID == "" {
		return nil, fmt.Errorf("update user session: empty session id")
	}
	sets, vars := sessionAssignments(u)
	sql := fmt.Sprintf(`UPSERT type::record("user_session", $id) SET %s RETURN AFTER`, strings.Join(sets, ", "))

	results, err := surrealdb.Query[[]sessionRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("update user session: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return nil, fmt.Errorf("update user session: %w", ErrNoResult)
	}
	row := firstRow((*results)[0].Result)
	if row == nil {
		return nil, fmt.Errorf("update user session: %w", ErrNoResult)
	}
	sess := row.toModel()
	return &sess, nil
}

// sessionAssignments builds the SET clauses and bindings for a session upsert.
func sessionAssignments(u models.SessionUpdate) ([]string, map[string]any) {
	sets := []string{"session_id = $id"}
	vars := map[string]any{"id": u.SessionID}

	list := func(field string, v []string) {
		if v == nil {
			sets = append(sets, fmt.Sprintf("%s = %s ?? []", field, field))
			return
		}
		sets = append(sets, fmt.Sprintf("%s = $%s", field, field))
		vars[field] = v
	}
	counter := func(field string, v *int) {
		if v == nil {
			sets = append(sets, fmt.Sprintf("%s = %s ?? 0", field, field))
			return
		}
		sets = append(sets, fmt.Sprintf("%s = $%s", field, field))
		vars[field] = *v
	}

	list("topics_explored", u.TopicsExplored)
	counter("trails_generated", u.TrailsGenerated)
	counter("total_exploration_time", u.TotalExplorationTime)
	counter("curiosity_score", u.CuriosityScore)
	list("achievements", u.Achievements)
	sets = append(sets, "created_at = created_at ?? time::now()", "last_active_at = time::now()")
	return sets, vars
}

// GetUserSession returns the session or nil.
func (c *Client) GetUserSession(ctx context.Context, id string) *models.UserSession {
	results, err := surrealdb.Query[[]sessionRow](ctx, c.db, `
		SELECT * FROM type::record("user_session", $id)
	`, map[string]any{"id": id})
	if err != nil {
		c.logger.Warn("get session failed", "session", id, "error", err)
		return nil
	}
	if results == nil || len(*results) == 0 {
		return nil
	}
	row := firstRow((*results)[0].Result)
	if row == nil {
		return nil
	}
	sess := row.toModel()
	return &sess
}

type countRow struct {
	C int64 `json:"c"`
}

// GetStats counts the three tables concurrently. Returns nil on failure.
func (c *Client) GetStats(ctx context.Context) *models.Stats {
	stats := &models.Stats{}
	g, gctx := errgroup.WithContext(ctx)
	for table, dst := range map[string]*int64{
		tableTopic:   &stats.Topics,
		tableTrail:   &stats.Trails,
		tableSession: &stats.Sessions,
	} {
		g.Go(func() error {
			n, err := c.count(gctx, table)
			if err != nil {
				return fmt.Errorf("count %s: %w", table, err)
			}
			*dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Warn("stats failed", "error", err)
		return nil
	}
	stats.Timestamp = time.Now()
	return stats
}

func (c *Client) count(ctx context.Context, table string) (int64, error) {
	results, err := surrealdb.Query[[]countRow](ctx, c.db,
		fmt.Sprintf("SELECT count() AS c FROM %s GROUP ALL", table), nil)
	if err != nil {
		return 0, err
	}
	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	if row := firstRow((*results)[0].Result); row != nil {
		return row.C, nil
	}
	return 0, nil
}
