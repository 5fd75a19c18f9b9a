package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandbio/hapgen/internal/genome"
	"github.com/strandbio/hapgen/internal/testutil"
)

func regionSpan(start, end int) genome.Span {
	return genome.Span{Contig: testutil.Contig, Start: start, End: end}
}

func baseStrings(rs *ResultSet) []string {
	out := make([]string, len(rs.Haplotypes))
	for i, h := range rs.Haplotypes {
		out[i] = string(h.BaseSequence())
	}
	return out
}

func TestReconstruct_PartiallyDetermined(t *testing.T) {
	e := newTestEngine(t)
	var rs ResultSet
	snp := testutil.SNP(103, "A", "G")
	del := testutil.Del(106, "T", "TCC")

	err := e.Reconstruct(&rs, Input{
		Reference:      testutil.Ref(100, "AAAATTTTCCCC"),
		CallingSpan:    regionSpan(100, 111),
		AssemblyEvents: []genome.Event{snp, del},
	})
	require.NoError(t, err)
	assert.True(t, rs.PartiallyDeterminedMode)

	// One ref branch and one alt branch per site. Sorted by length then
	// bases; the two reference-base haplotypes differ only in ambiguity.
	require.Equal(t, []string{
		"AAAATTTCC",
		"AAAATTTTCCCC",
		"AAAATTTTCCCC",
		"AAAGTTTTCCCC",
	}, baseStrings(&rs))

	delMarkers := make([]byte, 12)
	delMarkers[7] = genome.DelStart
	delMarkers[9] = genome.DelEnd
	snpMarker := make([]byte, 12)
	snpMarker[3] = genome.AmbiguousSNP | genome.BaseG

	pds := make([]*genome.PartiallyDetermined, len(rs.Haplotypes))
	for i, h := range rs.Haplotypes {
		pd, ok := h.(*genome.PartiallyDetermined)
		require.True(t, ok)
		pds[i] = pd
	}

	assert.Equal(t, del, pds[0].Determined)
	assert.False(t, pds[0].UseRef)
	assert.Equal(t, snpMarker[:9], pds[0].Ambiguity)

	assert.True(t, pds[1].UseRef)
	assert.Equal(t, delMarkers, pds[1].Ambiguity)

	assert.True(t, pds[2].UseRef)
	assert.Equal(t, snpMarker, pds[2].Ambiguity)

	assert.Equal(t, snp, pds[3].Determined)
	assert.Equal(t, delMarkers, pds[3].Ambiguity)
	assert.Equal(t, "3M1X8M", pds[3].Alignment().String())
}

func TestReconstruct_MutuallyExclusiveDeletions(t *testing.T) {
	e := newTestEngine(t)
	var rs ResultSet
	short := testutil.Del(106, "T", "TC")
	long := testutil.Del(106, "T", "TCC")

	err := e.Reconstruct(&rs, Input{
		Reference:      testutil.Ref(100, "AAAATTTTCCCC"),
		CallingSpan:    regionSpan(100, 111),
		AssemblyEvents: []genome.Event{short, long},
	})
	require.NoError(t, err)

	// The deletions overlap, so no haplotype may carry both: one ref branch
	// plus one branch per deletion.
	assert.Equal(t, []string{
		"AAAATTTCC",
		"AAAATTTCCC",
		"AAAATTTTCCCC",
	}, baseStrings(&rs))
}

func TestReconstruct_GroupTooLargeLeavesResultsUntouched(t *testing.T) {
	e := newTestEngine(t)
	ref := testutil.Ref(100, "AAAATTTTCCCCGGGGAAAATTTT")

	var events []genome.Event
	for n := 1; n <= MaxGroupSize+1; n++ {
		events = append(events, testutil.Del(103, "A", string(ref.Bases[4:4+n])))
	}

	sentinel := testutil.Ref(100, "AAAA")
	rs := ResultSet{Haplotypes: []genome.Reconstruction{sentinel}}

	err := e.Reconstruct(&rs, Input{
		Reference:      ref,
		CallingSpan:    regionSpan(100, 123),
		AssemblyEvents: events,
	})
	require.Error(t, err)
	require.True(t, IsBoundError(err))
	var be *BoundError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeGroupTooLarge, be.Code)

	assert.Equal(t, []genome.Reconstruction{sentinel}, rs.Haplotypes, "fallback must not disturb the caller's set")
	assert.False(t, rs.PartiallyDeterminedMode)
}

func TestReconstruct_BranchLimit(t *testing.T) {
	e := newTestEngine(t, WithMaxBranchesPerSite(1))
	var rs ResultSet

	err := e.Reconstruct(&rs, Input{
		Reference:   testutil.Ref(100, "AAAATTTTCCCC"),
		CallingSpan: regionSpan(100, 111),
		AssemblyEvents: []genome.Event{
			testutil.SNP(103, "A", "G"),
			testutil.Del(106, "T", "TC"),
			testutil.Del(106, "T", "TCC"),
		},
	})
	require.Error(t, err)
	var be *BoundError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeBranchLimit, be.Code)
	assert.Empty(t, rs.Haplotypes)
}

func TestReconstruct_HaplotypeLimit(t *testing.T) {
	e := newTestEngine(t, WithMaxHaplotypes(2))
	var rs ResultSet

	err := e.Reconstruct(&rs, Input{
		Reference:   testutil.Ref(100, "AAAATTTTCCCC"),
		CallingSpan: regionSpan(100, 111),
		AssemblyEvents: []genome.Event{
			testutil.SNP(103, "A", "G"),
			testutil.Del(106, "T", "TCC"),
		},
	})
	require.Error(t, err)
	var be *BoundError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeHaplotypeLimit, be.Code)
	assert.Empty(t, rs.Haplotypes)
}

func TestReconstruct_CallingSpanRestrictsAnchors(t *testing.T) {
	e := newTestEngine(t)
	var rs ResultSet
	snp := testutil.SNP(103, "A", "G")
	del := testutil.Del(106, "T", "TCC")

	err := e.Reconstruct(&rs, Input{
		Reference:      testutil.Ref(100, "AAAATTTTCCCC"),
		CallingSpan:    regionSpan(100, 104),
		AssemblyEvents: []genome.Event{snp, del},
	})
	require.NoError(t, err)

	// The deletion's site lies outside the calling span, so it never
	// anchors a branch, but it still contributes ambiguity everywhere.
	require.Len(t, rs.Haplotypes, 2)
	for _, h := range rs.Haplotypes {
		pd, ok := h.(*genome.PartiallyDetermined)
		require.True(t, ok)
		assert.Equal(t, snp.Start, pd.Determined.Start)
		assert.Equal(t, byte(genome.DelStart), pd.Ambiguity[7])
		assert.Equal(t, byte(genome.DelEnd), pd.Ambiguity[9])
	}
}

func TestReconstruct_DeterminedMode(t *testing.T) {
	e := newTestEngine(t)
	var rs ResultSet

	err := e.Reconstruct(&rs, Input{
		Reference:   testutil.Ref(100, "AAAATTTTCCCC"),
		CallingSpan: regionSpan(100, 111),
		AssemblyEvents: []genome.Event{
			testutil.SNP(103, "A", "G"),
			testutil.Del(106, "T", "TCC"),
		},
		MakeDetermined: true,
	})
	require.NoError(t, err)
	assert.False(t, rs.PartiallyDeterminedMode)

	assert.Equal(t, []string{
		"AAAATTTCC",
		"AAAGTTTCC",
		"AAAATTTTCCCC",
		"AAAGTTTTCCCC",
	}, baseStrings(&rs))

	refCount := 0
	for _, h := range rs.Haplotypes {
		if _, ok := h.(*genome.PartiallyDetermined); ok {
			t.Fatalf("determined mode emitted a partially determined haplotype")
		}
		if h.Reference() {
			refCount++
		}
	}
	assert.Equal(t, 1, refCount)
}

func TestReconstruct_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	in := Input{
		Reference:   testutil.Ref(100, "AAAATTTTCCCC"),
		CallingSpan: regionSpan(100, 111),
		AssemblyEvents: []genome.Event{
			testutil.SNP(103, "A", "G"),
			testutil.Del(106, "T", "TC"),
			testutil.Del(106, "T", "TCC"),
		},
	}

	var first, second ResultSet
	require.NoError(t, e.Reconstruct(&first, in))
	require.NoError(t, e.Reconstruct(&second, in))
	assert.Equal(t, baseStrings(&first), baseStrings(&second))
}

func TestReconstruct_RejectsNonReferenceBase(t *testing.T) {
	e := newTestEngine(t)
	base := testutil.Ref(100, "AAAATTTTCCCC")
	base.IsRef = false

	var rs ResultSet
	err := e.Reconstruct(&rs, Input{Reference: base, CallingSpan: regionSpan(100, 111)})
	require.Error(t, err)
	assert.True(t, IsInternalError(err))
}
