package genome

import (
	"bytes"
)

// Haplotype is one candidate reconstructed sequence for a region together
// with its alignment against the reference. Haplotypes are immutable once
// built.
type Haplotype struct {
	Bases []byte
	IsRef bool
	Start int    // Genomic position of the first base.
	Contig string
	Cigar Cigar
}

// NewReferenceHaplotype returns the reference-matching haplotype for the
// given bases: a single match run covering everything.
func NewReferenceHaplotype(contig string, start int, bases []byte) *Haplotype {
	return &Haplotype{
		Bases:  append([]byte(nil), bases...),
		IsRef:  true,
		Start:  start,
		Contig: contig,
		Cigar:  Cigar{{Type: CigarMatch, Len: len(bases)}},
	}
}

// Location returns the genomic span the haplotype's alignment covers.
func (h *Haplotype) Location() Span {
	return Span{Contig: h.Contig, Start: h.Start, End: h.Start + h.Cigar.ReferenceLength() - 1}
}

// BaseSequence returns the haplotype's bases.
func (h *Haplotype) BaseSequence() []byte { return h.Bases }

// Alignment returns the haplotype's alignment against the reference.
func (h *Haplotype) Alignment() Cigar { return h.Cigar }

// Reference reports whether this is the reference haplotype.
func (h *Haplotype) Reference() bool { return h.IsRef }

// Reconstruction is a candidate sequence a region reconstruction emits:
// either a concrete *Haplotype or a *PartiallyDetermined.
type Reconstruction interface {
	BaseSequence() []byte
	Alignment() Cigar
	Reference() bool
}

// CompareHaplotypes orders haplotypes by sequence length and then
// lexicographically by bases. This is the installation order of a rebuilt
// haplotype set.
func CompareHaplotypes(a, b *Haplotype) int {
	if len(a.Bases) != len(b.Bases) {
		return len(a.Bases) - len(b.Bases)
	}
	return bytes.Compare(a.Bases, b.Bases)
}
