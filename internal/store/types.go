package store

// RunRecord is one logged region reconstruction.
type RunRecord struct {
	ID        string
	Scenario  string
	Contig    string
	SpanStart int
	SpanEnd   int

	// Mode is "partial" or "determined".
	Mode string

	// Fallback holds the bound-error code when the region was abandoned;
	// empty on success.
	Fallback string

	// CreatedAt is assigned by the database on insert (UTC, RFC 3339).
	CreatedAt string

	Haplotypes []HaplotypeRecord
}

// HaplotypeRecord is one stored haplotype, in result order.
type HaplotypeRecord struct {
	Bases string
	Cigar string

	// Ref marks the explicit reference haplotype of a determined-mode run.
	Ref bool

	// Partially-determined fields; zero for concrete haplotypes.
	UseRef     bool
	Determined string
	Ambiguity  []byte
}
