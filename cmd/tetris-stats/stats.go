package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"

	"golang.org/x/sync/errgroup"
)

type summary struct {
	Sessions    int64
	Landings    int64
	BestSession string
	BestScore   int64
	AvgLines    float64
	// Clears[n] counts landings that completed n rows.
	Clears [5]int64
	Pieces map[string]int64
}

// summarize runs the archive queries concurrently. Each query fills its own
// fields of the result.
func summarize(ctx context.Context, db *sql.DB) (summary, error) {
	var s summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return db.QueryRowContext(ctx,
			`SELECT COUNT(DISTINCT session_id), COUNT(*) FROM landings`).Scan(&s.Sessions, &s.Landings)
	})
	g.Go(func() error {
		var id sql.NullString
		var best sql.NullInt64
		err := db.QueryRowContext(ctx, `
			SELECT session_id, MAX(score) AS final
			FROM landings
			GROUP BY session_id
			ORDER BY final DESC, session_id
			LIMIT 1`).Scan(&id, &best)
		if err == sql.ErrNoRows {
			return nil
		}
		s.BestSession, s.BestScore = id.String, best.Int64
		return err
	})
	g.Go(func() error {
		return db.QueryRowContext(ctx, `
			SELECT COALESCE(AVG(lines), 0)::DOUBLE
			FROM (SELECT session_id, SUM(rows_cleared) AS lines FROM landings GROUP BY session_id)`).Scan(&s.AvgLines)
	})
	g.Go(func() error {
		rows, err := db.QueryContext(ctx, `
			SELECT rows_cleared, COUNT(*)
			FROM landings
			WHERE rows_cleared BETWEEN 1 AND 4
			GROUP BY rows_cleared`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var n, count int64
			if err := rows.Scan(&n, &count); err != nil {
				return err
			}
			s.Clears[n] = count
		}
		return rows.Err()
	})
	pieces := make(map[string]int64)
	g.Go(func() error {
		rows, err := db.QueryContext(ctx, `SELECT piece, COUNT(*) FROM landings GROUP BY piece`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var piece string
			var count int64
			if err := rows.Scan(&piece, &count); err != nil {
				return err
			}
			pieces[piece] = count
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return summary{}, fmt.Errorf("query archive: %w", err)
	}
	s.Pieces = pieces
	return s, nil
}

func (s summary) print(w io.Writer) {
	fmt.Fprintf(w, "Sessions:        %d\n", s.Sessions)
	fmt.Fprintf(w, "Landings:        %d\n", s.Landings)
	if s.BestSession != "" {
		fmt.Fprintf(w, "Best score:      %d (%s)\n", s.BestScore, s.BestSession)
	}
	fmt.Fprintf(w, "Avg lines/game:  %.2f\n", s.AvgLines)
	fmt.Fprintln(w, "Row clears:")
	for n := 1; n < len(s.Clears); n++ {
		fmt.Fprintf(w, "  %d: %d\n", n, s.Clears[n])
	}
	if len(s.Pieces) > 0 {
		names := make([]string, 0, len(s.Pieces))
		for name := range s.Pieces {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "Pieces:")
		for _, name := range names {
			fmt.Fprintf(w, "  %-6s %d\n", name, s.Pieces[name])
		}
	}
}
