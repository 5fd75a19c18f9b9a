// Package harness runs reconstruction scenarios end to end and renders
// their results as deterministic traces for golden-file comparison.
//
// A scenario is a YAML description of one region: the reference window,
// the event lists, and the reconstruction mode. Running it drives the real
// engine; nothing is stubbed. Because the engine is deterministic, the
// rendered trace is stable across runs and machines, which is what makes
// golden files trustworthy here.
package harness

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/strandbio/hapgen/internal/align"
	"github.com/strandbio/hapgen/internal/engine"
	"github.com/strandbio/hapgen/internal/genome"
)

// Result is the rendered outcome of one scenario run.
type Result struct {
	Scenario string `json:"scenario"`

	// Mode is "partial" or "determined".
	Mode string `json:"mode"`

	// Fallback carries the bound-error code when reconstruction was
	// abandoned; the haplotype list is empty in that case.
	Fallback string `json:"fallback,omitempty"`

	Haplotypes []HaplotypeRecord `json:"haplotypes"`
}

// HaplotypeRecord is one reconstructed haplotype in trace form.
type HaplotypeRecord struct {
	Bases string `json:"bases"`
	Cigar string `json:"cigar"`

	// Ref marks the explicit reference haplotype of a determined-mode set.
	Ref bool `json:"ref,omitempty"`

	// Partially-determined fields.
	Display    string `json:"display,omitempty"`   // bases with ambiguous positions masked as P
	Ambiguity  string `json:"ambiguity,omitempty"` // hex-encoded per-base codes
	Determined string `json:"determined,omitempty"`
	UseRef     bool   `json:"use_ref,omitempty"`
}

// Run executes a scenario against a fresh engine and renders the result.
// A bound-error fallback is part of the result, not an error; errors are
// reserved for internal inconsistencies and malformed scenarios.
func Run(scenario *Scenario) (*Result, error) {
	opts := []engine.Option{}
	if scenario.MaxHaplotypes > 0 {
		opts = append(opts, engine.WithMaxHaplotypes(scenario.MaxHaplotypes))
	}
	if scenario.MaxBranches > 0 {
		opts = append(opts, engine.WithMaxBranchesPerSite(scenario.MaxBranches))
	}
	eng := engine.New(align.AffineGap{}, opts...)

	ref := genome.NewReferenceHaplotype(
		scenario.Reference.Contig,
		scenario.Reference.Start,
		[]byte(scenario.Reference.Bases),
	)
	span := genome.Span{
		Contig: scenario.Reference.Contig,
		Start:  scenario.Reference.Start,
		End:    scenario.Reference.Start + len(scenario.Reference.Bases) - 1,
	}
	if scenario.CallingSpan != nil {
		span.Start = scenario.CallingSpan.Start
		span.End = scenario.CallingSpan.End
	}

	in := engine.Input{
		Reference:      ref,
		CallingSpan:    span,
		AssemblyEvents: specEvents(scenario.Assembly, scenario.Reference.Contig),
		RemovalEvents:  specEvents(scenario.Removals, scenario.Reference.Contig),
		AdmittedEvents: specEvents(scenario.Admitted, scenario.Reference.Contig),
		SNPAdjacency:   scenario.SNPAdjacency,
		MakeDetermined: scenario.Determined,
	}

	result := &Result{Scenario: scenario.Name, Mode: "partial"}
	if scenario.Determined {
		result.Mode = "determined"
	}

	var rs engine.ResultSet
	if err := eng.Reconstruct(&rs, in); err != nil {
		var be *engine.BoundError
		if errors.As(err, &be) {
			result.Fallback = string(be.Code)
			result.Haplotypes = []HaplotypeRecord{}
			return result, nil
		}
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result.Haplotypes = make([]HaplotypeRecord, 0, len(rs.Haplotypes))
	for _, h := range rs.Haplotypes {
		result.Haplotypes = append(result.Haplotypes, renderHaplotype(h))
	}
	return result, nil
}

func renderHaplotype(h genome.Reconstruction) HaplotypeRecord {
	rec := HaplotypeRecord{
		Bases: string(h.BaseSequence()),
		Cigar: h.Alignment().String(),
		Ref:   h.Reference(),
	}
	if pd, ok := h.(*genome.PartiallyDetermined); ok {
		rec.Display = string(pd.DisplayBases())
		rec.Ambiguity = hex.EncodeToString(pd.Ambiguity)
		rec.Determined = pd.Determined.String()
		rec.UseRef = pd.UseRef
	}
	return rec
}

func specEvents(specs []EventSpec, contig string) []genome.Event {
	if len(specs) == 0 {
		return nil
	}
	events := make([]genome.Event, len(specs))
	for i, s := range specs {
		events[i] = s.Event(contig)
	}
	return events
}

// MarshalTrace renders a result as indented JSON with a trailing newline,
// the byte form golden files store.
func MarshalTrace(result *Result) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
