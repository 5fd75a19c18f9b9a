package genome

import (
	"fmt"
)

// BuildEventMap derives the list of events that separate an aligned
// sequence from the reference, by walking the sequence's cigar. Mismatching
// bases inside match runs become individual substitution events; insertion
// and deletion runs become anchored indel events. Indels with no reference
// base to their left cannot be anchored and are skipped.
//
// The returned events are sorted by CompareEvents.
func BuildEventMap(bases []byte, cig Cigar, ref []byte, contig string, refStart int) ([]Event, error) {
	var events []Event
	refIdx, seqIdx := 0, 0
	for _, op := range cig {
		switch op.Type {
		case CigarMatch, CigarMismatch:
			if refIdx+op.Len > len(ref) || seqIdx+op.Len > len(bases) {
				return nil, fmt.Errorf("cigar %s overruns sequence bounds", cig)
			}
			for k := 0; k < op.Len; k++ {
				if ref[refIdx+k] != bases[seqIdx+k] {
					events = append(events, Event{
						Contig: contig,
						Start:  refStart + refIdx + k,
						Ref:    string(ref[refIdx+k]),
						Alt:    string(bases[seqIdx+k]),
					})
				}
			}
			refIdx += op.Len
			seqIdx += op.Len
		case CigarInsertion:
			if seqIdx+op.Len > len(bases) {
				return nil, fmt.Errorf("cigar %s overruns sequence bounds", cig)
			}
			if refIdx > 0 {
				anchor := ref[refIdx-1]
				events = append(events, Event{
					Contig: contig,
					Start:  refStart + refIdx - 1,
					Ref:    string(anchor),
					Alt:    string(anchor) + string(bases[seqIdx:seqIdx+op.Len]),
				})
			}
			seqIdx += op.Len
		case CigarDeletion:
			if refIdx+op.Len > len(ref) {
				return nil, fmt.Errorf("cigar %s overruns reference bounds", cig)
			}
			if refIdx > 0 {
				anchor := ref[refIdx-1]
				events = append(events, Event{
					Contig: contig,
					Start:  refStart + refIdx - 1,
					Ref:    string(anchor) + string(ref[refIdx:refIdx+op.Len]),
					Alt:    string(anchor),
				})
			}
			refIdx += op.Len
		default:
			return nil, fmt.Errorf("unsupported cigar op %s in event map construction", op)
		}
	}
	SortEvents(events)
	return events, nil
}
