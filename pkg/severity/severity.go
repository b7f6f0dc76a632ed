// Package severity defines the ordered outcome type used to aggregate the
// result of an import operation. Outcomes form a strict total order from
// Success (best) to Error (worst); combining two outcomes always yields the
// more severe one, so a single Level can summarize an arbitrary number of
// import steps.
package severity

// Level represents the outcome of an import step.
type Level uint8

// Levels in increasing order of severity. Error terminates a search-term
// import early; Failure and Incomplete allow continuation.
const (
	// Success indicates the step completed with nothing left to do.
	Success Level = iota
	// Incomplete indicates the step completed but some data could not be
	// imported (unmatched parameters, skipped candidates).
	Incomplete
	// Failure indicates a matching or resolution failure for the primary
	// entity (category could not be resolved, candidate finalization failed).
	Failure
	// Error indicates a transport or API failure.
	Error
)

// Combine returns the more severe of two levels. It is commutative,
// associative, and idempotent, and Error absorbs everything.
func Combine(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// Worst folds Combine over any number of levels. Worst() is Success.
func Worst(levels ...Level) Level {
	out := Success
	for _, l := range levels {
		out = Combine(out, l)
	}
	return out
}

// String returns a human-readable name for the level.
func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Incomplete:
		return "incomplete"
	case Failure:
		return "failure"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
