// Package testutil provides event and reference fixtures shared by tests.
package testutil

import (
	"github.com/strandbio/hapgen/internal/genome"
)

// Contig is the contig name all fixtures share.
const Contig = "chr1"

// Ref builds a single-run reference haplotype from a base string.
func Ref(start int, bases string) *genome.Haplotype {
	return genome.NewReferenceHaplotype(Contig, start, []byte(bases))
}

// SNP builds a single-base substitution event.
func SNP(pos int, ref, alt string) genome.Event {
	return genome.Event{Contig: Contig, Start: pos, Ref: ref, Alt: alt}
}

// Ins builds an anchored insertion: anchor is the reference base at pos,
// inserted the bases that follow it on the alternate allele.
func Ins(pos int, anchor, inserted string) genome.Event {
	return genome.Event{Contig: Contig, Start: pos, Ref: anchor, Alt: anchor + inserted}
}

// Del builds an anchored deletion: anchor is the reference base at pos,
// deleted the reference bases removed after it.
func Del(pos int, anchor, deleted string) genome.Event {
	return genome.Event{Contig: Contig, Start: pos, Ref: anchor + deleted, Alt: anchor}
}
