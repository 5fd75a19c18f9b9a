package genome

import (
	"fmt"
	"strings"
)

// CigarOpType identifies one kind of alignment operation.
type CigarOpType byte

const (
	CigarMatch     CigarOpType = iota // Alignment match; bases consumed on both sequences.
	CigarInsertion                    // Insertion relative to the reference.
	CigarDeletion                     // Deletion relative to the reference.
	CigarMismatch                     // Substituted bases (same length on both sequences).
	lastCigarOp
)

var cigarOpNames = []string{"M", "I", "D", "X", "?"}

// String returns the single-letter CIGAR code for the operation type.
func (t CigarOpType) String() string {
	if t >= lastCigarOp {
		t = lastCigarOp
	}
	return cigarOpNames[t]
}

// consumesQuery reports whether the operation advances through query bases.
func (t CigarOpType) consumesQuery() bool {
	return t == CigarMatch || t == CigarInsertion || t == CigarMismatch
}

// consumesReference reports whether the operation advances through reference bases.
func (t CigarOpType) consumesReference() bool {
	return t == CigarMatch || t == CigarDeletion || t == CigarMismatch
}

// CigarOp is one run-length alignment operation.
type CigarOp struct {
	Type CigarOpType
	Len  int
}

func (op CigarOp) String() string {
	return fmt.Sprintf("%d%s", op.Len, op.Type)
}

// Cigar is a run-length list of alignment operations describing how a
// sequence maps onto the reference.
type Cigar []CigarOp

// String renders the cigar in standard text form, e.g. "3M1X8M".
func (c Cigar) String() string {
	if len(c) == 0 {
		return "*"
	}
	var sb strings.Builder
	for _, op := range c {
		sb.WriteString(op.String())
	}
	return sb.String()
}

// ReferenceLength returns the number of reference bases the cigar spans.
func (c Cigar) ReferenceLength() int {
	n := 0
	for _, op := range c {
		if op.Type.consumesReference() {
			n += op.Len
		}
	}
	return n
}

// QueryLength returns the number of query bases the cigar spans.
func (c Cigar) QueryLength() int {
	n := 0
	for _, op := range c {
		if op.Type.consumesQuery() {
			n += op.Len
		}
	}
	return n
}

// CigarBuilder accumulates operations, merging adjacent runs of the same
// type and dropping zero-length runs. Appending is the only mutation.
type CigarBuilder struct {
	ops Cigar
}

// Add appends a run of n operations of type t.
func (b *CigarBuilder) Add(t CigarOpType, n int) {
	if n <= 0 {
		return
	}
	if last := len(b.ops) - 1; last >= 0 && b.ops[last].Type == t {
		b.ops[last].Len += n
		return
	}
	b.ops = append(b.ops, CigarOp{Type: t, Len: n})
}

// Cigar returns the accumulated operations. The builder must not be used
// after calling Cigar.
func (b *CigarBuilder) Cigar() Cigar {
	return b.ops
}

// ReplayCigar applies a cigar to reference bases using the provided query
// bases for inserted and substituted spans, reconstructing the query
// sequence. It is the inverse bookkeeping of haplotype construction and is
// used to verify that a built haplotype and its cigar agree.
func ReplayCigar(c Cigar, ref, query []byte) ([]byte, error) {
	out := make([]byte, 0, len(query))
	refIdx, queryIdx := 0, 0
	for _, op := range c {
		switch op.Type {
		case CigarMatch:
			if refIdx+op.Len > len(ref) {
				return nil, fmt.Errorf("cigar %s overruns reference at op %s", c, op)
			}
			out = append(out, ref[refIdx:refIdx+op.Len]...)
			refIdx += op.Len
			queryIdx += op.Len
		case CigarMismatch, CigarInsertion:
			if queryIdx+op.Len > len(query) {
				return nil, fmt.Errorf("cigar %s overruns query at op %s", c, op)
			}
			out = append(out, query[queryIdx:queryIdx+op.Len]...)
			queryIdx += op.Len
			if op.Type == CigarMismatch {
				refIdx += op.Len
			}
		case CigarDeletion:
			refIdx += op.Len
		default:
			return nil, fmt.Errorf("unsupported cigar op %s", op)
		}
	}
	return out, nil
}
