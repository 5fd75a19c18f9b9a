package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// GetRun loads a run and its haplotypes in result order.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var run RunRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, contig, span_start, span_end, mode, fallback, created_at
		FROM runs WHERE id = ?
	`, id).Scan(
		&run.ID,
		&run.Scenario,
		&run.Contig,
		&run.SpanStart,
		&run.SpanEnd,
		&run.Mode,
		&run.Fallback,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT bases, cigar, ref, use_ref, determined, ambiguity
		FROM haplotypes WHERE run_id = ? ORDER BY idx
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: haplotypes: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hap HaplotypeRecord
		if err := rows.Scan(&hap.Bases, &hap.Cigar, &hap.Ref, &hap.UseRef, &hap.Determined, &hap.Ambiguity); err != nil {
			return nil, fmt.Errorf("get run %s: scan haplotype: %w", id, err)
		}
		run.Haplotypes = append(run.Haplotypes, hap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns run rows without their haplotypes, newest first.
// UUIDv7 IDs order chronologically, so the sort key is the ID itself.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, contig, span_start, span_end, mode, fallback, created_at
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		if err := rows.Scan(
			&run.ID,
			&run.Scenario,
			&run.Contig,
			&run.SpanStart,
			&run.SpanEnd,
			&run.Mode,
			&run.Fallback,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// CountHaplotypes returns the number of stored haplotypes for a run.
func (s *Store) CountHaplotypes(ctx context.Context, id string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM haplotypes WHERE run_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count haplotypes for %s: %w", id, err)
	}
	return n, nil
}
