// Package engine generates bounded sets of candidate haplotypes for a
// genomic region by combining assembly-derived variant events with events
// discovered by an independent per-position caller.
//
// ARCHITECTURE:
//
// Reconstruction is a fixed pipeline per region:
//
//  1. Pool: merge the two event sources, dropping assembly events flagged
//     as artifacts and admitted substitutions too close to assembled
//     indels, ordered by the SNP-first comparator.
//  2. Group: a single left-to-right scan chains positionally connected
//     events into event groups on the indel-aware coordinate axis.
//  3. Prove: pairs and triples containing an indel are rebuilt into
//     artificial haplotypes, re-aligned against the reference, and
//     recorded as forbidden sets when they collapse to the reference or
//     re-derive some other known event.
//  4. Merge: groups connected by a forbidden set are unioned so each
//     group's legality table sees every constraint on its members.
//  5. Solve: each group builds a bit-indexed table over all non-empty
//     member subsets, disallowing overlapping pairs and forbidden sets.
//  6. Branch and build: for every anchor site and allele choice, group
//     patterns are expanded combinatorially into branches, and each
//     branch is built into a concrete or partially-determined haplotype.
//
// The pipeline is pure and single-threaded per region: no shared mutable
// state crosses region boundaries, so independent regions may be
// reconstructed concurrently by independent calls.
//
// TERMINATION AND FALLBACK:
//
// Every loop is bounded by the input event list and three heuristic caps
// (MaxGroupSize, MaxBranchesPerSite, MaxHaplotypes). Exceeding a cap is an
// expected outcome for complex regions, reported as a *BoundError; the
// caller's result set is left untouched and downstream code falls back to
// the assembly haplotypes. Re-invocation with identical input always
// reproduces the same result or the same fallback.
package engine
