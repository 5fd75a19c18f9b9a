package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandbio/hapgen/internal/genome"
	"github.com/strandbio/hapgen/internal/testutil"
)

func TestBuildEventPool_Empty(t *testing.T) {
	pool := BuildEventPool(nil, nil, nil, 5)
	assert.Empty(t, pool)
}

func TestBuildEventPool_RemovesFlaggedAssemblyEvents(t *testing.T) {
	keep := testutil.SNP(103, "A", "G")
	drop := testutil.Del(106, "T", "TCC")
	pool := BuildEventPool(
		[]genome.Event{keep, drop},
		[]genome.Event{testutil.Del(106, "T", "TCC")},
		nil, 5)
	assert.Equal(t, []genome.Event{keep}, pool)
}

func TestBuildEventPool_RemovalMatchesByPositionAndAlleles(t *testing.T) {
	ev := testutil.SNP(103, "A", "G")
	pool := BuildEventPool(
		[]genome.Event{ev},
		[]genome.Event{testutil.SNP(103, "A", "T")}, // different alt, no match
		nil, 5)
	assert.Equal(t, []genome.Event{ev}, pool)
}

func TestBuildEventPool_DropsAdmittedSNPsNearAssemblyIndels(t *testing.T) {
	indel := testutil.Del(106, "T", "TCC") // spans 106-109
	nearSNP := testutil.SNP(111, "C", "G")
	farSNP := testutil.SNP(120, "C", "G")
	admittedIndel := testutil.Ins(111, "C", "AA") // indels are always admitted

	pool := BuildEventPool(
		[]genome.Event{indel},
		nil,
		[]genome.Event{nearSNP, farSNP, admittedIndel},
		5)

	assert.NotContains(t, pool, nearSNP)
	assert.Contains(t, pool, farSNP)
	assert.Contains(t, pool, admittedIndel)
	assert.Contains(t, pool, indel)
}

func TestBuildEventPool_AdjacencyUsesSurvivingIndelsOnly(t *testing.T) {
	indel := testutil.Del(106, "T", "TCC")
	snp := testutil.SNP(108, "C", "G")
	pool := BuildEventPool(
		[]genome.Event{indel},
		[]genome.Event{indel}, // the indel is flagged away first
		[]genome.Event{snp},
		5)
	assert.Equal(t, []genome.Event{snp}, pool)
}

func TestBuildEventPool_SortedAndDeduplicated(t *testing.T) {
	a := testutil.SNP(103, "A", "G")
	b := testutil.Del(103, "A", "TT")
	c := testutil.SNP(101, "A", "T")
	pool := BuildEventPool(
		[]genome.Event{b, a},
		nil,
		[]genome.Event{c, a}, // a arrives from both sources
		0)
	require.Equal(t, []genome.Event{c, a, b}, pool, "SNP-first order, duplicates collapsed")
}
