package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCigarBuilder_MergesAndDropsZero(t *testing.T) {
	var b CigarBuilder
	b.Add(CigarMatch, 3)
	b.Add(CigarMatch, 1)
	b.Add(CigarInsertion, 0) // dropped
	b.Add(CigarMismatch, 1)
	b.Add(CigarMatch, 2)
	b.Add(CigarDeletion, 4)

	c := b.Cigar()
	assert.Equal(t, "4M1X2M4D", c.String())
}

func TestCigarLengths(t *testing.T) {
	c := Cigar{
		{CigarMatch, 4},
		{CigarMismatch, 1},
		{CigarInsertion, 2},
		{CigarDeletion, 3},
		{CigarMatch, 5},
	}
	assert.Equal(t, 13, c.ReferenceLength())
	assert.Equal(t, 12, c.QueryLength())
}

func TestCigarString_Empty(t *testing.T) {
	assert.Equal(t, "*", Cigar(nil).String())
}

func TestReplayCigar(t *testing.T) {
	ref := []byte("AAAATTTTCCCC")

	testCases := []struct {
		name  string
		cigar Cigar
		query string
	}{
		{"pure match", Cigar{{CigarMatch, 12}}, "AAAATTTTCCCC"},
		{"substitution", Cigar{{CigarMatch, 3}, {CigarMismatch, 1}, {CigarMatch, 8}}, "AAAGTTTTCCCC"},
		{"insertion", Cigar{{CigarMatch, 4}, {CigarInsertion, 2}, {CigarMatch, 8}}, "AAAAGGTTTTCCCC"},
		{"deletion", Cigar{{CigarMatch, 7}, {CigarDeletion, 3}, {CigarMatch, 2}}, "AAAATTTCC"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReplayCigar(tc.cigar, ref, []byte(tc.query))
			require.NoError(t, err)
			assert.Equal(t, tc.query, string(got), "replaying the alignment must reconstruct the query")
		})
	}
}

func TestReplayCigar_Overrun(t *testing.T) {
	_, err := ReplayCigar(Cigar{{CigarMatch, 99}}, []byte("ACGT"), []byte("ACGT"))
	assert.Error(t, err)
}
