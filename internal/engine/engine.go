package engine

import (
	"io"
	"log/slog"
	"sort"

	"github.com/strandbio/hapgen/internal/align"
	"github.com/strandbio/hapgen/internal/genome"
)

// Default heuristic caps. These bound the combinatorial expansion for
// complex regions; crossing one aborts the region and the caller keeps its
// original haplotype set.
const (
	// MaxHaplotypes caps the total candidate haplotypes emitted per region.
	MaxHaplotypes = 512

	// MaxBranchesPerSite caps the branches expanded for one anchor site.
	MaxBranchesPerSite = 128
)

// ResultSet is the external container reconstruction installs into. It is
// private to one region; the engine never retains a reference to it.
type ResultSet struct {
	Haplotypes []genome.Reconstruction

	// PartiallyDeterminedMode records whether the installed set contains
	// symbolically ambiguous haplotypes, for the downstream likelihood
	// engine.
	PartiallyDeterminedMode bool
}

// Replace atomically installs a new haplotype set.
func (rs *ResultSet) Replace(haps []genome.Reconstruction, pdMode bool) {
	rs.Haplotypes = haps
	rs.PartiallyDeterminedMode = pdMode
}

// Input carries everything one region reconstruction consumes.
type Input struct {
	// Reference is the ungapped reference haplotype for the region; it
	// must be reference-flagged with a single match run.
	Reference *genome.Haplotype

	// CallingSpan restricts which positions may anchor a determined
	// allele; events outside it still contribute as undetermined events.
	CallingSpan genome.Span

	AssemblyEvents []genome.Event
	RemovalEvents  []genome.Event // Assembly events flagged as artifacts.
	AdmittedEvents []genome.Event // From the per-position caller.

	// SNPAdjacency drops admitted substitutions within this many bases of
	// an assembled indel.
	SNPAdjacency int

	// MakeDetermined selects fully concrete haplotypes instead of
	// partially-determined ones. Concrete mode expands combinatorially
	// and fails more often on complex regions.
	MakeDetermined bool
}

// Engine drives haplotype reconstruction for one region at a time. It is
// stateless between calls; a single Engine may be shared by goroutines
// reconstructing independent regions concurrently.
type Engine struct {
	aligner     align.Aligner
	alignParams align.Parameters
	maxHaps     int
	maxBranches int
	log         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger directs the engine's diagnostics to the given logger.
// Diagnostics have no behavioral effect.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithAlignmentParameters overrides the scoring used for equivalence
// re-alignment.
func WithAlignmentParameters(p align.Parameters) Option {
	return func(e *Engine) { e.alignParams = p }
}

// WithMaxHaplotypes overrides the per-region haplotype cap.
func WithMaxHaplotypes(n int) Option {
	return func(e *Engine) { e.maxHaps = n }
}

// WithMaxBranchesPerSite overrides the per-site branch cap.
func WithMaxBranchesPerSite(n int) Option {
	return func(e *Engine) { e.maxBranches = n }
}

// New creates an Engine using the given aligner for equivalence proving.
func New(aligner align.Aligner, opts ...Option) *Engine {
	e := &Engine{
		aligner:     aligner,
		alignParams: align.HaplotypeToReference,
		maxHaps:     MaxHaplotypes,
		maxBranches: MaxBranchesPerSite,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// site is one anchor position with every pooled event starting there, in
// pool order (substitutions before indels).
type site struct {
	start  int
	events []genome.Event
}

func collectSites(pool []genome.Event) []site {
	var sites []site
	for _, ev := range pool {
		if n := len(sites); n > 0 && sites[n-1].start == ev.Start {
			sites[n-1].events = append(sites[n-1].events, ev)
		} else {
			sites = append(sites, site{start: ev.Start, events: []genome.Event{ev}})
		}
	}
	return sites
}

// Reconstruct runs the full pipeline for one region and, on success,
// atomically replaces rs's haplotype set with the reconstructed one,
// deduplicated and sorted by length then bases.
//
// A *BoundError return means a heuristic cap was exceeded; rs is left
// untouched and the condition has been logged. Any other error is an
// internal inconsistency. The operation is deterministic: identical input
// always reproduces the same result or the same fallback.
func (e *Engine) Reconstruct(rs *ResultSet, in Input) error {
	ref := in.Reference
	if err := checkBase(ref); err != nil {
		return err
	}

	pool := BuildEventPool(in.AssemblyEvents, in.RemovalEvents, in.AdmittedEvents, in.SNPAdjacency)
	e.log.Debug("event pool built", "events", len(pool))

	groups := GroupEvents(pool, ref.Start)
	forbidden, err := e.proveForbiddenSets(ref, pool)
	if err != nil {
		return err
	}
	e.log.Debug("equivalence proving done", "groups", len(groups), "forbidden_sets", len(forbidden))

	groups, err = MergeGroupsByForbidden(groups, forbidden)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := g.BuildLegalityTable(forbidden); err != nil {
			if IsBoundError(err) {
				e.log.Info("region reconstruction abandoned", "reason", err.Error())
			}
			return err
		}
	}

	out := newCollector()
	if in.MakeDetermined {
		// Concrete sets carry the reference haplotype explicitly;
		// partially-determined sets represent it through ref branches.
		out.add(ref)
	}

	sites := collectSites(pool)
	for siteIdx, st := range sites {
		if !in.CallingSpan.ContainsPosition(st.start) {
			e.log.Debug("site outside calling span, not determined", "site", st.start)
			continue
		}

		firstAllele := -1 // -1 selects the reference allele at the site.
		if in.MakeDetermined {
			firstAllele = 0
		}
		for alleleIdx := firstAllele; alleleIdx < len(st.events); alleleIdx++ {
			useRef := alleleIdx == -1
			determined := st.events[0]
			if !useRef {
				determined = st.events[alleleIdx]
			}

			fixed := make([]EventAssignment, len(st.events))
			for i, ev := range st.events {
				fixed[i] = EventAssignment{Event: ev, Included: i == alleleIdx}
			}

			branches, err := e.expandBranches(groups, fixed, st.start)
			if err != nil {
				if IsBoundError(err) {
					e.log.Info("region reconstruction abandoned", "reason", err.Error())
				}
				return err
			}

			for _, exclude := range branches {
				if in.MakeDetermined {
					err = e.buildDeterminedBranch(out, ref, sites, siteIdx, determined, exclude)
				} else {
					err = e.buildPartialBranch(out, ref, sites, siteIdx, determined, useRef, exclude)
				}
				if err != nil {
					if IsBoundError(err) {
						e.log.Info("region reconstruction abandoned", "reason", err.Error())
					}
					return err
				}
			}
		}
	}

	result := out.haplotypes()
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].BaseSequence(), result[j].BaseSequence()
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return string(a) < string(b)
	})
	rs.Replace(result, !in.MakeDetermined)
	e.log.Debug("haplotype set installed", "haplotypes", len(result), "partially_determined", !in.MakeDetermined)
	return nil
}

// expandBranches asks every branching group for its maximal patterns
// consistent with the fixed per-site assignment and combinatorially
// expands them into exclusion sets. The first pattern a group returns is
// folded into every existing branch; each further pattern forks a copy.
// That keeps the default combination from being enumerated twice.
func (e *Engine) expandBranches(groups []*EventGroup, fixed []EventAssignment, sitePos int) ([]map[genome.Event]struct{}, error) {
	branches := []map[genome.Event]struct{}{{}}
	for _, g := range groups {
		if !g.CausesBranching() {
			continue
		}
		patterns, err := g.AllowedPatterns(fixed, true)
		if err != nil {
			return nil, err
		}
		var forks []map[genome.Event]struct{}
		for _, branch := range branches {
			for i := 1; i < len(patterns); i++ {
				fork := make(map[genome.Event]struct{}, len(branch)+len(patterns[i]))
				for ev := range branch {
					fork[ev] = struct{}{}
				}
				addExcluded(fork, patterns[i])
				forks = append(forks, fork)
			}
			if len(patterns) > 0 {
				addExcluded(branch, patterns[0])
			}
		}
		branches = append(branches, forks...)
		if len(branches) > e.maxBranches {
			return nil, &BoundError{Code: ErrCodeBranchLimit, Count: len(branches), Limit: e.maxBranches, Site: sitePos}
		}
	}
	return branches, nil
}

func addExcluded(set map[genome.Event]struct{}, pattern []EventAssignment) {
	for _, pa := range pattern {
		if !pa.Included {
			set[pa.Event] = struct{}{}
		}
	}
}

// buildPartialBranch assembles the event list for one branch and emits a
// single partially-determined haplotype: the determined allele at the
// anchor site plus every non-excluded event elsewhere.
func (e *Engine) buildPartialBranch(out *collector, ref *genome.Haplotype, sites []site, siteIdx int, determined genome.Event, useRef bool, exclude map[genome.Event]struct{}) error {
	var branch []genome.Event
	for i, st := range sites {
		if i == siteIdx {
			branch = append(branch, determined)
			continue
		}
		// Events overlapping the determined allele were excluded by the
		// solver; reference alleles may still overlap undetermined events.
		for _, ev := range st.events {
			if _, skip := exclude[ev]; !skip {
				branch = append(branch, ev)
			}
		}
	}
	genome.SortEvents(branch)

	pd, err := ConstructPartiallyDetermined(ref, determined, useRef, branch)
	if err != nil {
		return err
	}
	pd.SiteEvents = sites[siteIdx].events
	out.add(pd)
	if out.size() > e.maxHaps {
		return &BoundError{Code: ErrCodeHaplotypeLimit, Count: out.size(), Limit: e.maxHaps}
	}
	return nil
}

// buildDeterminedBranch expands one branch into fully concrete haplotypes:
// every haplotype carries the determined allele, and sites to its right
// fork the expansion per non-excluded event. Anchoring each expansion at
// the determined site keeps earlier sites from re-enumerating it.
func (e *Engine) buildDeterminedBranch(out *collector, ref *genome.Haplotype, sites []site, siteIdx int, determined genome.Event, exclude map[genome.Event]struct{}) error {
	expansion := [][]genome.Event{{determined}}
	for si := siteIdx + 1; si < len(sites); si++ {
		if len(expansion) > e.maxBranches {
			return &BoundError{Code: ErrCodeBranchLimit, Count: len(expansion), Limit: e.maxBranches, Site: sites[siteIdx].start}
		}
		var forks [][]genome.Event
		for _, ev := range sites[si].events {
			if _, skip := exclude[ev]; skip {
				continue
			}
			for _, events := range expansion {
				fork := make([]genome.Event, len(events), len(events)+1)
				copy(fork, events)
				forks = append(forks, append(fork, ev))
			}
		}
		expansion = append(expansion, forks...)
	}

	for _, events := range expansion {
		genome.SortEvents(events)
		hap, err := ConstructHaplotype(ref, events)
		if err != nil {
			return err
		}
		out.add(hap)
	}
	if out.size() > e.maxHaps {
		return &BoundError{Code: ErrCodeHaplotypeLimit, Count: out.size(), Limit: e.maxHaps}
	}
	return nil
}

// collector accumulates reconstructions in insertion order, deduplicating
// by bases, ambiguity bytes and reference flag.
type collector struct {
	seen map[string]struct{}
	haps []genome.Reconstruction
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) add(h genome.Reconstruction) {
	key := string(h.BaseSequence())
	if pd, ok := h.(*genome.PartiallyDetermined); ok {
		key += "\x00" + string(pd.Ambiguity)
	}
	if h.Reference() {
		key += "\x00ref"
	}
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.haps = append(c.haps, h)
}

func (c *collector) size() int { return len(c.haps) }

func (c *collector) haplotypes() []genome.Reconstruction {
	return c.haps
}
