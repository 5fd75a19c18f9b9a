package genome

import (
	"fmt"
)

// Per-base ambiguity code for partially-determined haplotypes. An 8-bit
// field per output base:
//
//	bit 0       AmbiguousSNP - the base may be substituted
//	bits 1-2    deletion span markers (start, end; both set for length 1)
//	bits 3-7    which bases remain possible when AmbiguousSNP is set
//
// A zero byte is a fully resolved position.
const (
	AmbiguousSNP byte = 1 << iota
	DelStart
	DelEnd
	BaseA
	BaseC
	BaseG
	BaseT
	BaseN
)

// PartiallyDetermined is a haplotype in which exactly one event (the
// determined event) is concretely resolved while every other constituent
// event is represented symbolically through the per-base ambiguity codes.
type PartiallyDetermined struct {
	Haplotype

	// Ambiguity holds one code byte per base of Bases. A zero byte means
	// the base is resolved.
	Ambiguity []byte

	// Determined is the anchor event resolved in this haplotype. For a
	// reference branch it is the site's first event, with UseRef set.
	Determined Event
	UseRef     bool

	// Constituents are all events, determined and symbolic, that shaped
	// this haplotype, in canonical order.
	Constituents []Event

	// SiteEvents are all events sharing the determined site, recorded for
	// downstream genotyping.
	SiteEvents []Event
}

// AmbiguityBytes returns the code bytes describing the undetermined form of
// an alternate allele against its reference allele: one flagged byte for a
// substitution, deletion span markers across the longest allele for an
// indel. The caller passes alleles longest-first for indels.
func AmbiguityBytes(ref, alt string) ([]byte, error) {
	if len(alt) == len(ref) {
		code, err := baseBit(alt[0])
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(ref))
		out[0] = AmbiguousSNP | code
		return out, nil
	}
	// Indel: the anchor base is resolved, the remainder is a possible
	// deletion span.
	out := make([]byte, len(ref)-1)
	out[0] |= DelStart
	out[len(out)-1] |= DelEnd
	return out, nil
}

func baseBit(b byte) (byte, error) {
	switch b {
	case 'A':
		return BaseA, nil
	case 'C':
		return BaseC, nil
	case 'G':
		return BaseG, nil
	case 'T':
		return BaseT, nil
	default:
		// 'N' included: an undetermined substitution must name a concrete
		// replacement base.
		return 0, fmt.Errorf("unexpected base %q in alternate allele", b)
	}
}

// DisplayBases renders the sequence with every SNP-ambiguous or deletable
// base masked as 'P', mirroring how downstream tooling prints these.
func (p *PartiallyDetermined) DisplayBases() []byte {
	out := append([]byte(nil), p.Bases...)
	for i, code := range p.Ambiguity {
		if code&^(AmbiguousSNP|DelStart) != 0 {
			out[i] = 'P'
		}
	}
	return out
}
