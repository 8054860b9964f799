package carrier

import "net/http"

// Outcome is the carrier-agnostic result profile of a batch operation.
type Outcome int

const (
	OutcomeFullSuccess Outcome = iota
	OutcomePartialSuccess
	OutcomeFullFailure
)

// String returns the canonical name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFullSuccess:
		return "full_success"
	case OutcomeFullFailure:
		return "full_failure"
	default:
		return "partial_success"
	}
}

// HTTPStatus maps the outcome to its conventional HTTP binding.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeFullSuccess:
		return http.StatusOK
	case OutcomeFullFailure:
		return http.StatusBadRequest
	default:
		return http.StatusMultiStatus
	}
}

// DeriveOutcome maps a batch response to exactly one outcome. The
// function is total: the empty batch carries no true flag at all and
// lands in the partial-success fallback branch on purpose.
func DeriveOutcome(b *BatchResponse) Outcome {
	switch {
	case b.AllSucceeded:
		return OutcomeFullSuccess
	case b.AllFailed:
		return OutcomeFullFailure
	default:
		return OutcomePartialSuccess
	}
}
