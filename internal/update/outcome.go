package update

import apperrors "studio/internal/errors"

// OutcomeKind discriminates the two shapes of an Outcome.
type OutcomeKind int

const (
	// OutcomeResult marks an Outcome carrying an UpdateCheckResult.
	OutcomeResult OutcomeKind = iota
	// OutcomeError marks an Outcome carrying an error value.
	OutcomeError
)

// String returns the string representation of an OutcomeKind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResult:
		return "result"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is either a check result or an error value, never both.
// Callers branch on Kind.
type Outcome struct {
	Kind   OutcomeKind
	Result UpdateCheckResult
	Err    apperrors.Error
}

// OutcomeOf folds a (result, error) pair into an Outcome, normalizing the error.
func OutcomeOf(result UpdateCheckResult, err error) Outcome {
	if err != nil {
		return Outcome{Kind: OutcomeError, Err: apperrors.Normalize(err)}
	}
	return Outcome{Kind: OutcomeResult, Result: result}
}
