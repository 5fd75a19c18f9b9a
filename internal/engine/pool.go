package engine

import (
	"github.com/strandbio/hapgen/internal/genome"
)

// BuildEventPool merges assembly-derived events with events admitted from
// the per-position caller into one ordered pool.
//
// Assembly events matching a flagged-removal event (by position and both
// alleles) are dropped. Admitted substitutions lying within
// snpAdjacencyLimit bases of any surviving assembly indel are dropped;
// admitted indels are always kept. The remainder is deduplicated and
// sorted by the SNP-first comparator. Empty input is legal and yields an
// empty pool.
func BuildEventPool(assembly, removals, admitted []genome.Event, snpAdjacencyLimit int) []genome.Event {
	kept := make([]genome.Event, 0, len(assembly)+len(admitted))
	for _, ev := range assembly {
		flagged := false
		for _, rm := range removals {
			if ev.Matches(rm) {
				flagged = true
				break
			}
		}
		if !flagged {
			kept = append(kept, ev)
		}
	}

	var assemblyIndels []genome.Event
	for _, ev := range kept {
		if ev.IsIndel() {
			assemblyIndels = append(assemblyIndels, ev)
		}
	}

	for _, ev := range admitted {
		if !ev.IsIndel() {
			nearIndel := false
			for _, indel := range assemblyIndels {
				if ev.WithinDistanceOf(indel, snpAdjacencyLimit) {
					nearIndel = true
					break
				}
			}
			if nearIndel {
				continue
			}
		}
		kept = append(kept, ev)
	}

	genome.SortEvents(kept)

	// Both sources may report the same edit; keep one.
	pool := kept[:0]
	for _, ev := range kept {
		if len(pool) == 0 || pool[len(pool)-1] != ev {
			pool = append(pool, ev)
		}
	}
	return pool
}
