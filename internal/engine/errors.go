package engine

import (
	"errors"
	"fmt"
)

// BoundErrorCode categorizes which heuristic cap was exceeded.
type BoundErrorCode string

const (
	// ErrCodeGroupTooLarge indicates an event group grew past MaxGroupSize
	// members, so its legality table cannot be indexed by a native word.
	ErrCodeGroupTooLarge BoundErrorCode = "GROUP_TOO_LARGE"

	// ErrCodeBranchLimit indicates combinatorial expansion at one anchor
	// site produced more than MaxBranchesPerSite branches.
	ErrCodeBranchLimit BoundErrorCode = "BRANCH_LIMIT"

	// ErrCodeHaplotypeLimit indicates the region accumulated more than
	// MaxHaplotypes candidate haplotypes.
	ErrCodeHaplotypeLimit BoundErrorCode = "HAPLOTYPE_LIMIT"
)

// BoundError reports that reconstruction of a region hit one of the
// heuristic caps and was abandoned. This is an expected outcome for
// complex regions, not a defect: the caller's haplotype set is left
// unchanged and downstream code proceeds with the assembly haplotypes.
type BoundError struct {
	Code  BoundErrorCode
	Count int // Observed value that crossed the cap.
	Limit int // The cap itself.
	Site  int // Anchor position for branch overflows, 0 otherwise.
}

// Error implements the error interface.
func (e *BoundError) Error() string {
	if e.Site != 0 {
		return fmt.Sprintf("%s: %d > %d at site %d", e.Code, e.Count, e.Limit, e.Site)
	}
	return fmt.Sprintf("%s: %d > %d", e.Code, e.Count, e.Limit)
}

// IsBoundError reports whether err is a heuristic-cap fallback.
// Uses errors.As to handle wrapped errors.
func IsBoundError(err error) bool {
	var be *BoundError
	return errors.As(err, &be)
}

// InternalError reports an internal-consistency violation: a precondition
// the pipeline guarantees was broken. These are not recoverable and
// indicate a bug in the caller or the engine itself.
type InternalError struct {
	Message string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "internal inconsistency: " + e.Message
}

// IsInternalError reports whether err is an internal-consistency error.
func IsInternalError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

func internalErrorf(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
