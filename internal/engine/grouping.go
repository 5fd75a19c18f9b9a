package engine

import (
	"github.com/strandbio/hapgen/internal/genome"
)

// GroupEvents partitions a canonically ordered pool into groups of
// positionally chained events with a single left-to-right scan. An event
// joins the current group when its canonical coordinate, taken relative to
// the reference start, lies within half a base of the furthest reference
// end seen so far; otherwise it starts a new group.
//
// Equivalence-based constraints between non-adjacent events are not
// considered here; MergeGroupsByForbidden applies those afterwards.
func GroupEvents(pool []genome.Event, refStart int) []*EventGroup {
	var groups []*EventGroup
	lastEventEnd := -1.0
	for _, ev := range pool {
		key := ev.CanonicalCoord() - float64(refStart)
		if len(groups) > 0 && key <= lastEventEnd+0.5 {
			groups[len(groups)-1].Add(ev)
		} else {
			groups = append(groups, NewEventGroup(ev))
		}
		if end := float64(ev.End() - refStart); end > lastEventEnd {
			lastEventEnd = end
		}
	}
	return groups
}

// MergeGroupsByForbidden unions groups that are connected by a forbidden
// set, so that one legality table later sees every constraint relevant to
// its members. Every forbidden event must already belong to some group;
// anything else is an internal inconsistency.
func MergeGroupsByForbidden(groups []*EventGroup, forbidden [][]genome.Event) ([]*EventGroup, error) {
	for _, set := range forbidden {
		var target *EventGroup
		for _, ev := range set {
			var found *EventGroup
			for _, g := range groups {
				if g.Contains(ev) {
					found = g
					break
				}
			}
			if found == nil {
				return nil, internalErrorf("forbidden event %s belongs to no group", ev)
			}
			if target == nil {
				target = found
			} else if target != found {
				target.Merge(found)
				groups = removeGroup(groups, found)
			}
		}
	}
	return groups, nil
}

func removeGroup(groups []*EventGroup, victim *EventGroup) []*EventGroup {
	out := groups[:0]
	for _, g := range groups {
		if g != victim {
			out = append(out, g)
		}
	}
	return out
}
