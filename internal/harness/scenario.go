package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/strandbio/hapgen/internal/genome"
)

// Scenario describes one region reconstruction: the reference window, the
// variant events feeding the pipeline, and the reconstruction mode.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// file the trace is compared against.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Reference is the ungapped reference window.
	Reference ReferenceSpec `yaml:"reference"`

	// CallingSpan restricts which positions may anchor a determined
	// allele. Defaults to the full reference window when omitted.
	CallingSpan *SpanSpec `yaml:"calling_span,omitempty"`

	// Assembly lists the events found by assembly.
	Assembly []EventSpec `yaml:"assembly"`

	// Removals lists assembly events flagged as artifacts.
	Removals []EventSpec `yaml:"removals,omitempty"`

	// Admitted lists events recovered by the per-position caller.
	Admitted []EventSpec `yaml:"admitted,omitempty"`

	// SNPAdjacency drops admitted substitutions within this many bases of
	// an assembled indel.
	SNPAdjacency int `yaml:"snp_adjacency,omitempty"`

	// Determined selects fully concrete output instead of
	// partially-determined haplotypes.
	Determined bool `yaml:"determined,omitempty"`

	// MaxHaplotypes and MaxBranches override the engine's default caps
	// when positive. Small values make fallback scenarios cheap to write.
	MaxHaplotypes int `yaml:"max_haplotypes,omitempty"`
	MaxBranches   int `yaml:"max_branches,omitempty"`
}

// ReferenceSpec is the reference window of a scenario.
type ReferenceSpec struct {
	Contig string `yaml:"contig"`
	Start  int    `yaml:"start"`
	Bases  string `yaml:"bases"`
}

// SpanSpec is a closed genomic interval on the scenario's contig.
type SpanSpec struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// EventSpec is one variant event in VCF-style anchored notation.
type EventSpec struct {
	Pos int    `yaml:"pos"`
	Ref string `yaml:"ref"`
	Alt string `yaml:"alt"`
}

// Event converts the EventSpec to an engine event on the given contig.
func (e EventSpec) Event(contig string) genome.Event {
	return genome.Event{Contig: contig, Start: e.Pos, Ref: e.Ref, Alt: e.Alt}
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently dropping input.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and event plausibility.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Reference.Contig == "" {
		return fmt.Errorf("reference.contig is required")
	}
	if s.Reference.Bases == "" {
		return fmt.Errorf("reference.bases is required")
	}
	for _, b := range s.Reference.Bases {
		switch b {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return fmt.Errorf("reference.bases contains non-nucleotide %q", b)
		}
	}
	if s.CallingSpan != nil && s.CallingSpan.End < s.CallingSpan.Start {
		return fmt.Errorf("calling_span end %d precedes start %d", s.CallingSpan.End, s.CallingSpan.Start)
	}
	if len(s.Assembly) == 0 && len(s.Admitted) == 0 {
		return fmt.Errorf("at least one assembly or admitted event is required")
	}

	refEnd := s.Reference.Start + len(s.Reference.Bases) - 1
	check := func(section string, events []EventSpec) error {
		for i, ev := range events {
			if ev.Ref == "" || ev.Alt == "" {
				return fmt.Errorf("%s[%d]: ref and alt are required", section, i)
			}
			if ev.Pos < s.Reference.Start || ev.Pos+len(ev.Ref)-1 > refEnd {
				return fmt.Errorf("%s[%d]: event at %d spans outside the reference window", section, i, ev.Pos)
			}
			if got := s.Reference.Bases[ev.Pos-s.Reference.Start:][:len(ev.Ref)]; got != ev.Ref {
				return fmt.Errorf("%s[%d]: ref allele %q does not match reference bases %q at %d", section, i, ev.Ref, got, ev.Pos)
			}
		}
		return nil
	}
	if err := check("assembly", s.Assembly); err != nil {
		return err
	}
	if err := check("removals", s.Removals); err != nil {
		return err
	}
	return check("admitted", s.Admitted)
}
