// Package align provides the pairwise alignment capability consumed by the
// haplotype reconstruction engine: a scoring parameter set, an overhang
// strategy, the Aligner interface, and a concrete affine-gap implementation.
package align

import (
	"fmt"

	"github.com/strandbio/hapgen/internal/genome"
)

// Parameters holds affine-gap alignment scores. Penalties are negative.
// A gap of length L costs GapOpen + (L-1)*GapExtend.
type Parameters struct {
	Match     int
	Mismatch  int
	GapOpen   int
	GapExtend int
}

// HaplotypeToReference is the scoring used when re-aligning artificial
// haplotypes against the reference during equivalence proving.
var HaplotypeToReference = Parameters{Match: 200, Mismatch: -150, GapOpen: -260, GapExtend: -11}

// OverhangStrategy controls how unaligned sequence ends are represented.
type OverhangStrategy int

const (
	// OverhangIndel forces a global alignment: leading and trailing
	// overhangs are emitted as insertion or deletion operations rather
	// than clipped. This is the strategy used for equivalence proving,
	// where every base must stay accounted for.
	OverhangIndel OverhangStrategy = iota

	// OverhangSoftClip leaves overhangs unaligned. Not needed by the
	// reconstruction engine and unimplemented here.
	OverhangSoftClip
)

// Aligner computes an alignment of query against ref and reports it as a
// cigar over the reference.
type Aligner interface {
	Align(ref, query []byte, p Parameters, strategy OverhangStrategy) (genome.Cigar, error)
}

// AffineGap is a deterministic affine-gap pairwise aligner (Gotoh's
// algorithm). It implements the OverhangIndel strategy with a full global
// alignment; match and mismatch columns are both reported as M, matching
// what the event-map builder expects to walk.
type AffineGap struct{}

// dp cell states during traceback.
const (
	stateMain = iota
	stateIns  // gap in the reference, consuming query bases
	stateDel  // gap in the query, consuming reference bases
)

const negInf = -(1 << 30)

// Align computes the best-scoring global alignment of query onto ref.
func (AffineGap) Align(ref, query []byte, p Parameters, strategy OverhangStrategy) (genome.Cigar, error) {
	if strategy != OverhangIndel {
		return nil, fmt.Errorf("align: overhang strategy %d not supported", strategy)
	}
	if len(ref) == 0 || len(query) == 0 {
		return nil, fmt.Errorf("align: empty sequence")
	}

	n, m := len(ref), len(query)
	// main[i][j]: best score for ref[:i] vs query[:j].
	// ins[i][j]: best score ending in a gap in the reference.
	// del[i][j]: best score ending in a gap in the query.
	main := newMatrix(n+1, m+1)
	ins := newMatrix(n+1, m+1)
	del := newMatrix(n+1, m+1)

	main[0][0] = 0
	for j := 1; j <= m; j++ {
		ins[0][j] = p.GapOpen + (j-1)*p.GapExtend
		main[0][j] = ins[0][j]
		del[0][j] = negInf
	}
	for i := 1; i <= n; i++ {
		del[i][0] = p.GapOpen + (i-1)*p.GapExtend
		main[i][0] = del[i][0]
		ins[i][0] = negInf
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			s := p.Mismatch
			if ref[i-1] == query[j-1] {
				s = p.Match
			}
			ins[i][j] = max2(main[i][j-1]+p.GapOpen, ins[i][j-1]+p.GapExtend)
			del[i][j] = max2(main[i-1][j]+p.GapOpen, del[i-1][j]+p.GapExtend)
			main[i][j] = max2(main[i-1][j-1]+s, max2(ins[i][j], del[i][j]))
		}
	}

	// Traceback from (n, m), preferring the diagonal on ties so runs of
	// matches stay contiguous.
	ops := make([]genome.CigarOpType, 0, n+m)
	i, j := n, m
	state := stateMain
	for i > 0 || j > 0 {
		switch state {
		case stateMain:
			switch {
			case i == 0:
				state = stateIns
			case j == 0:
				state = stateDel
			default:
				s := p.Mismatch
				if ref[i-1] == query[j-1] {
					s = p.Match
				}
				switch main[i][j] {
				case main[i-1][j-1] + s:
					ops = append(ops, genome.CigarMatch)
					i--
					j--
				case ins[i][j]:
					state = stateIns
				default:
					state = stateDel
				}
			}
		case stateIns:
			ops = append(ops, genome.CigarInsertion)
			if j == 1 || ins[i][j] == main[i][j-1]+p.GapOpen {
				state = stateMain
			}
			j--
		case stateDel:
			ops = append(ops, genome.CigarDeletion)
			if i == 1 || del[i][j] == main[i-1][j]+p.GapOpen {
				state = stateMain
			}
			i--
		}
	}

	var b genome.CigarBuilder
	for k := len(ops) - 1; k >= 0; k-- {
		b.Add(ops[k], 1)
	}
	return b.Cigar(), nil
}

func newMatrix(rows, cols int) [][]int {
	backing := make([]int, rows*cols)
	mat := make([][]int, rows)
	for i := range mat {
		mat[i] = backing[i*cols : (i+1)*cols]
	}
	return mat
}

func max2(a, b int) int {
	if a >= b {
		return a
	}
	return b
}
