package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmbiguityBytes_SNP(t *testing.T) {
	testCases := []struct {
		alt  string
		want byte
	}{
		{"A", AmbiguousSNP | BaseA},
		{"C", AmbiguousSNP | BaseC},
		{"G", AmbiguousSNP | BaseG},
		{"T", AmbiguousSNP | BaseT},
	}
	for _, tc := range testCases {
		t.Run(tc.alt, func(t *testing.T) {
			got, err := AmbiguityBytes("A", tc.alt)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0])
		})
	}
}

func TestAmbiguityBytes_Deletion(t *testing.T) {
	// Longest allele first: a 4-base reference allele against a 1-base
	// alternate yields three deletable positions past the anchor.
	got, err := AmbiguityBytes("TTCC", "T")
	require.NoError(t, err)
	require.Equal(t, []byte{DelStart, 0, DelEnd}, got)
}

func TestAmbiguityBytes_SingleBaseDeletion(t *testing.T) {
	got, err := AmbiguityBytes("TA", "T")
	require.NoError(t, err)
	require.Equal(t, []byte{DelStart | DelEnd}, got, "length-1 spans carry both markers")
}

func TestAmbiguityBytes_UnexpectedBase(t *testing.T) {
	for _, alt := range []string{"X", "N"} {
		t.Run(alt, func(t *testing.T) {
			_, err := AmbiguityBytes("A", alt)
			assert.Error(t, err)
		})
	}
}

func TestDisplayBases(t *testing.T) {
	pd := &PartiallyDetermined{
		Haplotype: Haplotype{Bases: []byte("ACGT")},
		Ambiguity: []byte{0, AmbiguousSNP | BaseT, DelStart, DelEnd},
	}
	assert.Equal(t, "APGP", string(pd.DisplayBases()))
}
