package genome

import (
	"fmt"
	"sort"
	"strings"
)

// Event is a single candidate edit against the reference: a substitution,
// an insertion, or a deletion, carrying exactly one alternate allele.
//
// Events are immutable values. Two events are equal exactly when contig,
// start and both alleles are equal, so Event can be used directly as a map
// key and compared with ==.
//
// Indel events follow the anchored VCF convention: the first base of both
// alleles is the shared anchor base immediately left of the inserted or
// deleted bases.
type Event struct {
	Contig string
	Start  int    // 1-based genomic position of the first reference base.
	Ref    string // Reference allele bases.
	Alt    string // Alternate allele bases.
}

// End returns the 1-based genomic position of the last reference base the
// event spans.
func (e Event) End() int {
	return e.Start + len(e.Ref) - 1
}

// IsIndel reports whether the alleles differ in length.
func (e Event) IsIndel() bool {
	return len(e.Ref) != len(e.Alt)
}

// IsSNP reports whether the event substitutes a single base.
func (e Event) IsSNP() bool {
	return len(e.Ref) == 1 && len(e.Alt) == 1
}

// IsInsertion reports whether the event is a pure anchored insertion.
func (e Event) IsInsertion() bool {
	return len(e.Ref) == 1 && len(e.Alt) > 1
}

// IsDeletion reports whether the event is a pure anchored deletion.
func (e Event) IsDeletion() bool {
	return len(e.Ref) > 1 && len(e.Alt) == 1
}

// CanonicalCoord returns the event's position on the indel-aware axis used
// for ordering and clustering: insertions sit half a base right of their
// anchor, deletions one full base right, everything else at its start.
// All values are integers or exact halves, so float comparison is exact.
func (e Event) CanonicalCoord() float64 {
	switch {
	case e.IsInsertion():
		return float64(e.Start) + 0.5
	case e.IsDeletion():
		return float64(e.Start) + 1
	default:
		return float64(e.Start)
	}
}

// fracSpan returns the indel-adjusted closed interval the event occupies on
// the canonical axis. Insertions span [start+0.5, end+0.5] so that they
// only touch deletions crossing them or other insertions at the same base;
// deletions give up their anchor base and span [start+1, end].
func (e Event) fracSpan() (start, end float64) {
	start = float64(e.Start)
	end = float64(e.End())
	if e.IsIndel() {
		if e.IsDeletion() {
			start++
		} else {
			start += 0.5
		}
	}
	if e.IsInsertion() {
		end += 0.5
	}
	return start, end
}

// Overlaps reports whether two events' indel-adjusted spans intersect.
// When snpsOverlap is false two substitution events never overlap; the
// pairing search in the equivalence prover wants that behavior while
// legality tables want substitutions at one base to exclude each other.
func (e Event) Overlaps(other Event, snpsOverlap bool) bool {
	if !snpsOverlap && e.IsSNP() && other.IsSNP() {
		return false
	}
	if e.Contig != other.Contig {
		return false
	}
	aStart, aEnd := e.fracSpan()
	bStart, bEnd := other.fracSpan()
	return (bStart >= aStart && bStart <= aEnd) ||
		(bEnd >= aStart && bEnd <= aEnd) ||
		(aStart >= bStart && aEnd <= bEnd)
}

// WithinDistanceOf reports whether the unadjusted reference spans of the
// two events come within dist bases of one another.
func (e Event) WithinDistanceOf(other Event, dist int) bool {
	return e.Contig == other.Contig &&
		e.Start-dist <= other.End() &&
		e.End()+dist >= other.Start
}

// Matches reports whether the two events describe the same edit: same
// start and identical alleles. Contig is deliberately ignored; all events
// within one region share a contig.
func (e Event) Matches(other Event) bool {
	return e.Start == other.Start && e.Ref == other.Ref && e.Alt == other.Alt
}

func (e Event) String() string {
	return fmt.Sprintf("%s:%d %s>%s", e.Contig, e.Start, e.Ref, e.Alt)
}

// CompareEvents is the ordering used everywhere events are iterated: start
// position, then reference-allele length, then alternate-allele length,
// then the alternate bases lexicographically. At one position this places
// substitutions before indels, which makes compound edits at a shared
// anchor base straightforward to stitch during haplotype construction.
func CompareEvents(a, b Event) int {
	if a.Start != b.Start {
		return a.Start - b.Start
	}
	if len(a.Ref) != len(b.Ref) {
		return len(a.Ref) - len(b.Ref)
	}
	if len(a.Alt) != len(b.Alt) {
		return len(a.Alt) - len(b.Alt)
	}
	return strings.Compare(a.Alt, b.Alt)
}

// SortEvents sorts events in place by CompareEvents.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return CompareEvents(events[i], events[j]) < 0
	})
}

// Span is a closed 1-based genomic interval.
type Span struct {
	Contig string
	Start  int
	End    int
}

// ContainsPosition reports whether pos lies within the span.
func (s Span) ContainsPosition(pos int) bool {
	return pos >= s.Start && pos <= s.End
}
