package engine

import (
	"bytes"

	"github.com/strandbio/hapgen/internal/align"
	"github.com/strandbio/hapgen/internal/genome"
)

// proveForbiddenSets searches for small sets of events that are
// interchangeable with other known events. Every non-overlapping pair with
// at least one indel is built into an artificial two-event haplotype,
// re-aligned against the reference, and its event map re-derived; if the
// combination collapses to the reference exactly, or re-derives an event
// that is in the pool but was not one of the inputs, the pair is recorded
// as forbidden. Triples built from indel-bearing pairs are then tested the
// same way, skipping combinations whose 2-subsets are already forbidden.
//
// The triple search's transitive pruning is a deliberate approximation
// carried over from the heuristic this implements: a triple is skipped
// only when one of its 2-subsets is forbidden at the moment the triple is
// considered, so completeness over all transitive chains is not
// guaranteed.
func (e *Engine) proveForbiddenSets(ref *genome.Haplotype, pool []genome.Event) ([][]genome.Event, error) {
	var forbidden [][]genome.Event

	for i, first := range pool {
		if !first.IsIndel() {
			continue
		}
		for j, second := range pool {
			if j == i || first.Overlaps(second, true) || (second.IsIndel() && j <= i) {
				continue
			}
			pair := []genome.Event{first, second}
			genome.SortEvents(pair)
			equivalent, err := e.testEquivalentEvents(ref, pool, pair)
			if err != nil {
				return nil, err
			}
			if equivalent {
				forbidden = append(forbidden, pair)
			}
		}
	}

	for i, first := range pool {
		if !first.IsIndel() {
			continue
		}
		for j, second := range pool {
			if j == i || first.Overlaps(second, true) || (second.IsIndel() && j <= i) {
				continue
			}
			if anySetContainsBoth(forbidden, first, second) {
				continue
			}
			for k := j + 1; k < len(pool); k++ {
				third := pool[k]
				if k == i || third.Overlaps(first, true) || third.Overlaps(second, true) {
					continue
				}
				if anySetContainsBoth(forbidden, first, third) || anySetContainsBoth(forbidden, second, third) {
					continue
				}
				triple := []genome.Event{first, second, third}
				genome.SortEvents(triple)
				equivalent, err := e.testEquivalentEvents(ref, pool, triple)
				if err != nil {
					return nil, err
				}
				if equivalent {
					forbidden = append(forbidden, triple)
				}
			}
		}
	}

	return forbidden, nil
}

// testEquivalentEvents builds the artificial haplotype carrying exactly
// the candidate events and decides whether the combination is equivalent
// to something else the region already knows about.
func (e *Engine) testEquivalentEvents(ref *genome.Haplotype, pool, candidates []genome.Event) (bool, error) {
	hap, err := ConstructHaplotype(ref, candidates)
	if err != nil {
		return false, err
	}

	// Combinations that reduce exactly to the reference have an empty
	// event map; they are degenerate, not erroneous, and are forbidden
	// without consulting the aligner.
	if bytes.Equal(hap.Bases, ref.Bases) {
		e.log.Debug("events collapse to the reference", "events", eventStrings(candidates))
		return true, nil
	}

	cig, err := e.aligner.Align(ref.Bases, hap.Bases, e.alignParams, align.OverhangIndel)
	if err != nil {
		return false, err
	}
	derived, err := genome.BuildEventMap(hap.Bases, cig, ref.Bases, ref.Contig, ref.Start)
	if err != nil {
		return false, err
	}

	for _, d := range derived {
		if matchesAny(d, candidates) {
			continue
		}
		if matchesAny(d, pool) {
			e.log.Debug("events realign to a known other event",
				"events", eventStrings(candidates), "derived", d.String())
			return true, nil
		}
	}
	return false, nil
}

func matchesAny(ev genome.Event, list []genome.Event) bool {
	for _, other := range list {
		if ev.Matches(other) {
			return true
		}
	}
	return false
}

func anySetContainsBoth(sets [][]genome.Event, a, b genome.Event) bool {
	for _, set := range sets {
		hasA, hasB := false, false
		for _, ev := range set {
			if ev == a {
				hasA = true
			}
			if ev == b {
				hasB = true
			}
		}
		if hasA && hasB {
			return true
		}
	}
	return false
}

func eventStrings(events []genome.Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.String()
	}
	return out
}
