package carrier_test

import (
	"net/http"
	"testing"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/stretchr/testify/assert"
)

func TestDeriveOutcome_FullSuccess(t *testing.T) {
	b := carrier.Aggregate([]carrier.Resource{carrier.CreatedResource("A", nil)}, nil)
	o := carrier.DeriveOutcome(b)
	assert.Equal(t, carrier.OutcomeFullSuccess, o)
	assert.Equal(t, http.StatusOK, o.HTTPStatus())
}

func TestDeriveOutcome_FullFailure(t *testing.T) {
	b := carrier.Aggregate([]carrier.Resource{
		carrier.FailedResource(nil, carrier.ValidationError{Message: "bad"}),
	}, nil)
	o := carrier.DeriveOutcome(b)
	assert.Equal(t, carrier.OutcomeFullFailure, o)
	assert.Equal(t, http.StatusBadRequest, o.HTTPStatus())
}

func TestDeriveOutcome_Partial(t *testing.T) {
	b := carrier.Aggregate([]carrier.Resource{
		carrier.CreatedResource("A", nil),
		carrier.FailedResource(nil, carrier.ValidationError{Message: "bad"}),
	}, nil)
	o := carrier.DeriveOutcome(b)
	assert.Equal(t, carrier.OutcomePartialSuccess, o)
	assert.Equal(t, http.StatusMultiStatus, o.HTTPStatus())
}

// The empty batch carries no true flag; the deriver must not crash and
// must land it in the fallback bucket rather than full success/failure.
func TestDeriveOutcome_EmptyBatchFallsIntoFallback(t *testing.T) {
	b := carrier.Aggregate(nil, nil)
	o := carrier.DeriveOutcome(b)
	assert.Equal(t, carrier.OutcomePartialSuccess, o)
	assert.Equal(t, http.StatusMultiStatus, o.HTTPStatus())
}

// The three outcomes partition every reachable success/failure profile.
func TestDeriveOutcome_Total(t *testing.T) {
	for n := 0; n <= 5; n++ {
		for successes := 0; successes <= n; successes++ {
			results := make([]carrier.Resource, n)
			for i := range results {
				if i < successes {
					results[i] = carrier.CreatedResource("X", nil)
				} else {
					results[i] = carrier.FailedResource(nil, carrier.ValidationError{Message: "y"})
				}
			}
			b := carrier.Aggregate(results, nil)
			o := carrier.DeriveOutcome(b)

			switch {
			case n > 0 && successes == n:
				assert.Equal(t, carrier.OutcomeFullSuccess, o)
			case n > 0 && successes == 0:
				assert.Equal(t, carrier.OutcomeFullFailure, o)
			default:
				assert.Equal(t, carrier.OutcomePartialSuccess, o)
			}
		}
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "full_success", carrier.OutcomeFullSuccess.String())
	assert.Equal(t, "partial_success", carrier.OutcomePartialSuccess.String())
	assert.Equal(t, "full_failure", carrier.OutcomeFullFailure.String())
}
