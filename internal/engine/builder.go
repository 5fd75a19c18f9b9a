package engine

import (
	"github.com/strandbio/hapgen/internal/genome"
)

// checkBase verifies the reference haplotype all construction starts from:
// it must be reference-flagged and align as one uninterrupted match run.
func checkBase(ref *genome.Haplotype) error {
	if !ref.IsRef || len(ref.Cigar) != 1 || ref.Cigar[0].Type != genome.CigarMatch {
		return internalErrorf("base haplotype for construction must be a single-run reference haplotype, got cigar %s", ref.Cigar)
	}
	return nil
}

// ConstructHaplotype builds the concrete haplotype carrying exactly the
// given events, which must be sorted by CompareEvents. The walk keeps a
// cursor on the reference: each event emits the match run since the
// cursor, then its own substitution, insertion or deletion run, taking
// care not to re-emit an indel's anchor base when an adjacent event
// already produced it.
//
// An event beginning before the cursor allows is an internal error, not a
// recoverable condition.
func ConstructHaplotype(ref *genome.Haplotype, events []genome.Event) (*genome.Haplotype, error) {
	if err := checkBase(ref); err != nil {
		return nil, err
	}

	nextRefBase := ref.Start // genomic position of the next reference base to emit
	var cig genome.CigarBuilder
	bases := make([]byte, 0, len(ref.Bases))

	for _, ev := range events {
		gapStart := nextRefBase - ref.Start
		gapEnd := ev.Start - ref.Start
		if gap := gapEnd - gapStart; (ev.IsIndel() && gap < -1) || (!ev.IsIndel() && gap < 0) {
			return nil, internalErrorf("event %s is out of order in the construction list", ev)
		}
		cig.Add(genome.CigarMatch, gapEnd-gapStart)
		if gapEnd-gapStart > 0 {
			bases = append(bases, ref.Bases[gapStart:gapEnd]...)
		}

		// An indel contributes its anchor base only when the base at its
		// start was not already emitted by an adjacent event.
		includeAnchor := ev.IsIndel() && gapStart <= gapEnd

		if !ev.IsIndel() {
			cig.Add(genome.CigarMismatch, len(ev.Ref))
			bases = append(bases, ev.Alt...)
		} else {
			if includeAnchor {
				cig.Add(genome.CigarMatch, 1)
				bases = append(bases, ev.Alt...)
			} else {
				bases = append(bases, ev.Alt[1:]...)
			}
			if len(ev.Ref) > len(ev.Alt) {
				cig.Add(genome.CigarDeletion, len(ev.Ref)-len(ev.Alt))
			} else {
				cig.Add(genome.CigarInsertion, len(ev.Alt)-len(ev.Ref))
			}
		}
		nextRefBase = ev.End() + 1
	}

	tail := nextRefBase - ref.Start
	bases = append(bases, ref.Bases[tail:]...)
	cig.Add(genome.CigarMatch, len(ref.Bases)-tail)

	return &genome.Haplotype{
		Bases:  bases,
		IsRef:  false,
		Start:  ref.Start,
		Contig: ref.Contig,
		Cigar:  cig.Cigar(),
	}, nil
}

// ConstructPartiallyDetermined builds a haplotype in which only the
// determined event is concretely resolved. Every other constituent event
// contributes its longest allele's bases, so sequence length is preserved,
// tagged with per-base ambiguity codes instead of being resolved. With
// useRef set the determined site resolves to the reference allele and
// events at that site are dropped entirely.
//
// Constituents must be sorted by CompareEvents; an out-of-order event is
// an internal error. A substitution landing on the base emitted by an
// immediately preceding ambiguous substitution folds its ambiguity bits
// into that base rather than emitting a new one.
func ConstructPartiallyDetermined(ref *genome.Haplotype, determined genome.Event, useRef bool, constituents []genome.Event) (*genome.PartiallyDetermined, error) {
	if err := checkBase(ref); err != nil {
		return nil, err
	}

	nextRefBase := ref.Start
	var cig genome.CigarBuilder
	bases := make([]byte, 0, len(ref.Bases))
	amb := make([]byte, 0, len(ref.Bases))

	for _, ev := range constituents {
		gapStart := nextRefBase - ref.Start
		gapEnd := ev.Start - ref.Start

		if ev.IsSNP() && gapEnd-gapStart == -1 && len(amb) > 0 && amb[len(amb)-1]&genome.AmbiguousSNP != 0 {
			code, err := genome.AmbiguityBytes(ev.Ref, ev.Alt)
			if err != nil {
				return nil, internalErrorf("event %s: %v", ev, err)
			}
			amb[len(amb)-1] |= code[0]
			continue
		}

		if ev.Start == determined.Start && useRef {
			continue
		}

		if gap := gapEnd - gapStart; (ev.IsIndel() && gap < -1) || (!ev.IsIndel() && gap < 0) {
			return nil, internalErrorf("event %s is out of order in the construction list", ev)
		}
		if gapEnd-gapStart > 0 {
			cig.Add(genome.CigarMatch, gapEnd-gapStart)
			bases = append(bases, ref.Bases[gapStart:gapEnd]...)
			amb = append(amb, make([]byte, gapEnd-gapStart)...)
		}

		includeAnchor := ev.IsIndel() && gapStart <= gapEnd
		isInsertion := len(ev.Alt) > len(ev.Ref)
		isDetermined := ev.Start == determined.Start

		var toAdd []byte
		if isDetermined {
			toAdd = []byte(ev.Alt)
		} else if len(ev.Ref) >= len(ev.Alt) {
			toAdd = []byte(ev.Ref)
		} else {
			toAdd = []byte(ev.Alt)
		}
		if ev.IsIndel() && !includeAnchor {
			toAdd = toAdd[1:]
		}

		longest := len(ev.Ref)
		if len(ev.Alt) > longest {
			longest = len(ev.Alt)
		}
		if isDetermined {
			if !ev.IsIndel() {
				cig.Add(genome.CigarMismatch, len(ev.Ref))
			} else {
				if includeAnchor {
					cig.Add(genome.CigarMatch, 1)
				}
				if isInsertion {
					cig.Add(genome.CigarInsertion, longest-1)
				} else {
					cig.Add(genome.CigarDeletion, longest-1)
				}
			}
		} else {
			if !ev.IsIndel() {
				cig.Add(genome.CigarMatch, len(ev.Ref))
			} else {
				if includeAnchor {
					cig.Add(genome.CigarMatch, 1)
				}
				if isInsertion {
					// Undetermined insertions keep their bases relative
					// to the reference.
					cig.Add(genome.CigarInsertion, len(ev.Alt)-len(ev.Ref))
				} else {
					// Undetermined deletions keep their reference bases,
					// so they stay matches in the alignment.
					cig.Add(genome.CigarMatch, len(ev.Ref)-len(ev.Alt))
				}
			}
		}

		bases = append(bases, toAdd...)
		if includeAnchor {
			amb = append(amb, 0)
		}
		if isDetermined {
			amb = append(amb, make([]byte, len(toAdd)-boolToInt(includeAnchor))...)
		} else {
			var code []byte
			var err error
			if isInsertion {
				code, err = genome.AmbiguityBytes(ev.Alt, ev.Ref)
			} else {
				code, err = genome.AmbiguityBytes(ev.Ref, ev.Alt)
			}
			if err != nil {
				return nil, internalErrorf("event %s: %v", ev, err)
			}
			amb = append(amb, code...)
		}
		nextRefBase = ev.End() + 1
	}

	tail := nextRefBase - ref.Start
	bases = append(bases, ref.Bases[tail:]...)
	amb = append(amb, make([]byte, len(ref.Bases)-tail)...)
	cig.Add(genome.CigarMatch, len(ref.Bases)-tail)

	return &genome.PartiallyDetermined{
		Haplotype: genome.Haplotype{
			Bases:  bases,
			IsRef:  false,
			Start:  ref.Start,
			Contig: ref.Contig,
			Cigar:  cig.Cigar(),
		},
		Ambiguity:    amb,
		Determined:   determined,
		UseRef:       useRef,
		Constituents: constituents,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
