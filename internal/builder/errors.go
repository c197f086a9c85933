package builder

import (
	"errors"
	"fmt"
)

// ErrBuildFailed matches every *BuildFailedError via errors.Is.
var ErrBuildFailed = errors.New("graph build failed")

// Reason distinguishes the two failed-build outcomes.
type Reason int

const (
	// ReasonNoData means the catalogue failed before yielding any rule.
	ReasonNoData Reason = iota + 1
	// ReasonPartialData means the catalogue failed after yielding some rules.
	ReasonPartialData
)

func (r Reason) String() string {
	switch r {
	case ReasonNoData:
		return "no data"
	case ReasonPartialData:
		return "partial data"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// BuildFailedError reports a build that produced no snapshot.
type BuildFailedError struct {
	Reason Reason
	// Rules is how many host rules were read before the failure.
	Rules int
	// Diagnostics holds ingestion diagnostics for the rules that were read.
	Diagnostics []Diagnostic
	Err         error
}

func (e *BuildFailedError) Error() string {
	if e.Reason == ReasonPartialData {
		return fmt.Sprintf("%s: %s after %d rules (%d diagnostics): %v", ErrBuildFailed, e.Reason, e.Rules, len(e.Diagnostics), e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrBuildFailed, e.Reason, e.Err)
}

func (e *BuildFailedError) Unwrap() error { return e.Err }

// Is reports whether target is ErrBuildFailed.
func (e *BuildFailedError) Is(target error) bool { return target == ErrBuildFailed }
