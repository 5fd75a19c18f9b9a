package engine

import (
	"github.com/strandbio/hapgen/internal/genome"
)

// MaxGroupSize is the largest event group the mutual-exclusion solver will
// accept. Legality tables are indexed by subset bitmasks held in a native
// integer, so membership must fit a native bit width; 17 leaves headroom
// below it.
const MaxGroupSize = 17

// EventAssignment pairs an event with a truth value: whether the event is
// present in a particular subset or fixed by the branch generator.
type EventAssignment struct {
	Event    genome.Event
	Included bool
}

// EventGroup is a cluster of events whose legality of co-occurrence must be
// solved jointly: its members are transitively overlapping or connected
// through a forbidden set.
//
// A group is mutable while the pipeline is still grouping and merging;
// building the legality table freezes the member order (bit i of a subset
// index refers to member i in canonical order). Any later mutation
// invalidates the table and the memoized no-assignment query.
type EventGroup struct {
	members   []genome.Event
	memberSet map[genome.Event]struct{}

	// allowed indexes every subset of members by bitmask; nil until the
	// table is built or when the group is too small to need one.
	allowed []bool

	// cachedPatterns memoizes AllowedPatterns for the empty fixed
	// assignment, the overwhelmingly common query. Indexed by the
	// dropNonMaximal flag so the two query shapes never share an entry.
	cachedPatterns [2][][]EventAssignment
}

// NewEventGroup creates a group seeded with the given events.
func NewEventGroup(events ...genome.Event) *EventGroup {
	g := &EventGroup{memberSet: make(map[genome.Event]struct{})}
	for _, ev := range events {
		g.Add(ev)
	}
	return g
}

// Add appends an event to the group, invalidating any built table.
func (g *EventGroup) Add(ev genome.Event) {
	if _, ok := g.memberSet[ev]; ok {
		return
	}
	g.members = append(g.members, ev)
	g.memberSet[ev] = struct{}{}
	g.invalidate()
}

// Merge absorbs the other group's members, invalidating any built table.
func (g *EventGroup) Merge(other *EventGroup) {
	for _, ev := range other.members {
		g.Add(ev)
	}
	g.invalidate()
}

func (g *EventGroup) invalidate() {
	g.allowed = nil
	g.cachedPatterns = [2][][]EventAssignment{}
}

// Contains reports whether the event is a member of this group.
func (g *EventGroup) Contains(ev genome.Event) bool {
	_, ok := g.memberSet[ev]
	return ok
}

// Size returns the number of member events.
func (g *EventGroup) Size() int { return len(g.members) }

// Events returns the members in their current order. Callers must not
// mutate the returned slice.
func (g *EventGroup) Events() []genome.Event { return g.members }

// CausesBranching reports whether the group can force the branch generator
// to fork: singleton groups never do.
func (g *EventGroup) CausesBranching() bool { return len(g.members) > 1 }

// BuildLegalityTable freezes the group and builds the bit-indexed table of
// which member subsets may legally co-occur. Subsets containing a pair of
// events with overlapping indel-adjusted spans are illegal, as is any
// subset containing all members of a forbidden set. Substitution pairs are
// never treated as overlapping here; the branch generator's per-site fixed
// assignments already keep two substitutions at one base apart.
//
// Returns a *BoundError when the group exceeds MaxGroupSize. Groups with
// fewer than two members trivially succeed with no table.
func (g *EventGroup) BuildLegalityTable(forbidden [][]genome.Event) error {
	n := len(g.members)
	if n > MaxGroupSize {
		return &BoundError{Code: ErrCodeGroupTooLarge, Count: n, Limit: MaxGroupSize}
	}
	if n < 2 {
		return nil
	}

	genome.SortEvents(g.members)
	g.cachedPatterns = [2][][]EventAssignment{}

	var masks []int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.members[i].Overlaps(g.members[j], false) {
				masks = append(masks, 1<<i|1<<j)
			}
		}
	}
	for _, set := range forbidden {
		touches := false
		for _, ev := range set {
			if g.Contains(ev) {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		mask := 0
		for _, ev := range set {
			idx := g.indexOf(ev)
			if idx < 0 {
				return internalErrorf("event %s is in a forbidden set touching group %v but is not a member; group merging missed it", ev, g.members)
			}
			mask |= 1 << idx
		}
		masks = append(masks, mask)
	}

	g.allowed = make([]bool, 1<<n)
	for idx := 1; idx < 1<<n; idx++ {
		g.allowed[idx] = true
		for _, mask := range masks {
			if idx&mask == mask {
				g.allowed[idx] = false
				break
			}
		}
	}
	return nil
}

func (g *EventGroup) indexOf(ev genome.Event) int {
	for i, m := range g.members {
		if m == ev {
			return i
		}
	}
	return -1
}

// AllowedPatterns returns the legal member subsets consistent with the
// given partial assignment, each expanded to a full run of per-member
// assignments in bit order. Fixed assignments over events outside the
// group are ignored. Subsets are visited from the full set downward, so
// with dropNonMaximal set any subset strictly contained in an earlier
// result is discarded. The empty subset is never returned; callers handle
// the all-absent case themselves.
//
// Results for the empty fixed assignment are memoized per dropNonMaximal
// value until the group's membership changes.
func (g *EventGroup) AllowedPatterns(fixed []EventAssignment, dropNonMaximal bool) ([][]EventAssignment, error) {
	if g.allowed == nil {
		return nil, internalErrorf("allowed-pattern query on group %v before its legality table was built", g.members)
	}

	cache := 0
	if dropNonMaximal {
		cache = 1
	}
	eventMask, maskValues := 0, 0
	for _, fa := range fixed {
		if idx := g.indexOf(fa.Event); idx >= 0 {
			eventMask |= 1 << idx
			if fa.Included {
				maskValues |= 1 << idx
			}
		}
	}
	if eventMask == 0 && g.cachedPatterns[cache] != nil {
		return g.cachedPatterns[cache], nil
	}

	n := len(g.members)
	var kept []int
scan:
	for idx := 1<<n - 1; idx >= 1; idx-- {
		if !g.allowed[idx] {
			continue
		}
		if eventMask != 0 && idx&eventMask != maskValues {
			continue
		}
		if dropNonMaximal {
			for _, prior := range kept {
				if idx|prior == prior {
					continue scan
				}
			}
		}
		kept = append(kept, idx)
	}

	patterns := make([][]EventAssignment, 0, len(kept))
	for _, idx := range kept {
		pattern := make([]EventAssignment, n)
		for i, ev := range g.members {
			pattern[i] = EventAssignment{Event: ev, Included: idx&(1<<i) != 0}
		}
		patterns = append(patterns, pattern)
	}
	if eventMask == 0 {
		g.cachedPatterns[cache] = patterns
	}
	return patterns, nil
}
