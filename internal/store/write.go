package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run and its haplotypes in one transaction. The run's
// ID must be set; duplicate IDs are rejected, a run is written exactly
// once. CreatedAt is assigned by the database.
func (s *Store) WriteRun(ctx context.Context, run RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("write run: ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, contig, span_start, span_end, mode, fallback)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Scenario,
		run.Contig,
		run.SpanStart,
		run.SpanEnd,
		run.Mode,
		run.Fallback,
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}

	for idx, hap := range run.Haplotypes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO haplotypes (run_id, idx, bases, cigar, ref, use_ref, determined, ambiguity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			idx,
			hap.Bases,
			hap.Cigar,
			hap.Ref,
			hap.UseRef,
			hap.Determined,
			hap.Ambiguity,
		)
		if err != nil {
			return fmt.Errorf("write run %s: haplotype %d: %w", run.ID, idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return nil
}

// DeleteRun removes a run and, through the cascade, its haplotypes.
// Deleting a missing run is a no-op.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}
