package carrier_test

import (
	"errors"
	"testing"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := carrier.NewError("foxpost", "invalid postal code", carrier.CategoryValidation)
	assert.Equal(t, "foxpost error (validation): invalid postal code", err.Error())
}

func TestError_ErrorWithCode(t *testing.T) {
	err := carrier.NewError("gls", "unauthorized", carrier.CategoryAuth).WithCode("E401")
	assert.Equal(t, "gls error (auth/E401): unauthorized", err.Error())
}

func TestError_RoundTrip(t *testing.T) {
	raw := map[string]any{"error": "X9Z"}
	err := carrier.NewError("mpl", "slow down", carrier.CategoryRateLimit).
		WithCode("X9Z").
		WithRaw(raw).
		WithRetryAfter(15 * time.Second)

	assert.Equal(t, "slow down", err.Message)
	assert.Equal(t, carrier.CategoryRateLimit, err.Category)
	assert.Equal(t, "X9Z", err.CarrierCode)
	assert.Equal(t, raw, err.Raw)
	assert.Equal(t, 15*time.Second, err.RetryAfter)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := carrier.NewError("foxpost", "call failed", carrier.CategoryTransient).WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestError_IsMatchesCategory(t *testing.T) {
	err := carrier.NewError("foxpost", "bad token", carrier.CategoryAuth)
	assert.True(t, errors.Is(err, &carrier.Error{Category: carrier.CategoryAuth}))
	assert.False(t, errors.Is(err, &carrier.Error{Category: carrier.CategoryTransient}))
}

func TestError_RetryableTable(t *testing.T) {
	tests := []struct {
		category  carrier.Category
		retryable bool
	}{
		{carrier.CategoryValidation, false},
		{carrier.CategoryAuth, false},
		{carrier.CategoryRateLimit, true},
		{carrier.CategoryTransient, true},
		{carrier.CategoryPermanent, false},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			err := carrier.NewError("gls", "x", tt.category)
			assert.Equal(t, tt.retryable, err.Retryable())
			assert.Equal(t, tt.retryable, carrier.Retryable(err))
		})
	}
}

func TestRetryable_NonTaxonomyError(t *testing.T) {
	assert.False(t, carrier.Retryable(errors.New("plain error")))
	assert.False(t, carrier.Retryable(nil))
}

func TestRetryable_Wrapped(t *testing.T) {
	inner := carrier.NewError("mpl", "backend down", carrier.CategoryTransient)
	wrapped := errors.Join(errors.New("outer"), inner)
	assert.True(t, carrier.Retryable(wrapped))
}

func TestAsError_Passthrough(t *testing.T) {
	orig := carrier.NewError("gls", "rejected", carrier.CategoryPermanent)
	assert.Same(t, orig, carrier.AsError("gls", orig))
}

func TestAsError_WrapsUnknownAsTransient(t *testing.T) {
	cause := errors.New("connection refused")
	err := carrier.AsError("foxpost", cause)
	assert.Equal(t, carrier.CategoryTransient, err.Category)
	assert.Equal(t, "connection refused", err.Message)
	assert.True(t, errors.Is(err, cause))
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "validation", carrier.CategoryValidation.String())
	assert.Equal(t, "rate_limit", carrier.CategoryRateLimit.String())
	assert.Equal(t, "permanent", carrier.CategoryPermanent.String())
}
