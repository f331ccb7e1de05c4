// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/linknotes/pkg/types"
)

const defaultRunLimit = 20

// Runs returns the most recent runs, newest first, with per-outcome counts.
// A limit of zero or less returns the default of 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, csv_path, out_dir, total FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.CSVPath, &r.OutDir, &r.Total); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.Counts = make(map[types.Outcome]int)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		if err := s.countOutcomes(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) countOutcomes(ctx context.Context, r *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, count(*) FROM attempts WHERE run_id = ? GROUP BY outcome`, r.ID)
	if err != nil {
		return fmt.Errorf("counting outcomes for run %d: %w", r.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return fmt.Errorf("scanning outcome count: %w", err)
		}
		r.Counts[types.Outcome(outcome)] = n
	}
	return rows.Err()
}

// Unresolved returns, in URL order, every URL whose most recent attempt
// ended with a basic note or a failure.
func (s *Store) Unresolved(ctx context.Context) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.url, a.outcome, a.path, a.error, a.run_id, r.started_at
		 FROM attempts a JOIN runs r ON r.id = a.run_id
		 WHERE a.rowid IN (
			SELECT max(rowid) FROM attempts WHERE outcome != ? GROUP BY url
		 )
		 AND a.outcome IN (?, ?)
		 ORDER BY a.url`,
		string(types.OutcomeSkipped), string(types.OutcomeFallback), string(types.OutcomeFailed))
	if err != nil {
		return nil, fmt.Errorf("querying unresolved URLs: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var outcome, runAt string
		if err := rows.Scan(&a.URL, &outcome, &a.Path, &a.Error, &a.RunID, &runAt); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		a.Outcome = types.Outcome(outcome)
		a.RunAt, _ = time.Parse(time.RFC3339Nano, runAt)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attempts: %w", err)
	}
	return out, nil
}
