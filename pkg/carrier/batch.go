package carrier

import (
	"fmt"
	"sort"
)

// Per-item resource statuses recognized by the aggregator. Adapters may
// report other statuses, but only StatusCreated counts as success.
const (
	StatusResourceCreated = "created"
	StatusResourceFailed  = "failed"
)

// ValidationError is a field-level error inside a per-item result.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Resource is the per-item outcome of one create/label operation.
// It is built once from the carrier's per-item payload and never mutated.
// CarrierID is present iff Status is "created"; Errors must be non-empty
// when Status is "failed".
type Resource struct {
	CarrierID string            `json:"carrierId,omitempty"`
	Status    string            `json:"status"`
	Errors    []ValidationError `json:"errors,omitempty"`
	Raw       any               `json:"raw,omitempty"`
}

// CreatedResource builds a successful per-item outcome.
func CreatedResource(carrierID string, raw any) Resource {
	return Resource{
		CarrierID: carrierID,
		Status:    StatusResourceCreated,
		Raw:       raw,
	}
}

// FailedResource builds a failed per-item outcome. At least one
// validation error is required; a bare failure gets a generic one so the
// non-empty Errors contract always holds.
func FailedResource(raw any, errs ...ValidationError) Resource {
	if len(errs) == 0 {
		errs = []ValidationError{{Message: "carrier rejected the item"}}
	}
	return Resource{
		Status: StatusResourceFailed,
		Errors: errs,
		Raw:    raw,
	}
}

// Succeeded reports whether the item was accepted by the carrier.
func (r Resource) Succeeded() bool {
	return r.Status == StatusResourceCreated && len(r.Errors) == 0
}

// BatchResponse is the aggregate envelope returned by every batch
// operation (parcel creation and label creation alike).
//
// Results holds one element per input item in input order; it is never
// reordered, filtered, or deduplicated. When TotalCount > 0 exactly one
// of the three flags is true. The empty batch is special-cased: all
// counts zero, all flags false, Summary says there was nothing to do.
type BatchResponse struct {
	Results            []Resource `json:"results"`
	SuccessCount       int        `json:"successCount"`
	FailureCount       int        `json:"failureCount"`
	TotalCount         int        `json:"totalCount"`
	AllSucceeded       bool       `json:"allSucceeded"`
	AllFailed          bool       `json:"allFailed"`
	SomeFailed         bool       `json:"someFailed"`
	Summary            string     `json:"summary"`
	RawCarrierResponse any        `json:"rawCarrierResponse,omitempty"`
}

// Aggregate folds ordered per-item outcomes into a BatchResponse.
func Aggregate(results []Resource, raw any) *BatchResponse {
	if len(results) == 0 {
		return &BatchResponse{
			Results:            []Resource{},
			Summary:            "no items to process",
			RawCarrierResponse: raw,
		}
	}

	success := 0
	for _, r := range results {
		if r.Succeeded() {
			success++
		}
	}
	total := len(results)
	failure := total - success

	return &BatchResponse{
		Results:            results,
		SuccessCount:       success,
		FailureCount:       failure,
		TotalCount:         total,
		AllSucceeded:       failure == 0,
		AllFailed:          success == 0,
		SomeFailed:         success > 0 && failure > 0,
		Summary:            summarize(success, failure, total),
		RawCarrierResponse: raw,
	}
}

// IndexedResource tags a per-item outcome with its input position, for
// adapters that fetch items concurrently.
type IndexedResource struct {
	Index    int
	Resource Resource
}

// AggregateIndexed restores input order before aggregating. Batch
// responses must present results in input order no matter how the items
// were fetched, so this is enforced here rather than assumed of callers.
func AggregateIndexed(items []IndexedResource, raw any) *BatchResponse {
	sorted := make([]IndexedResource, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	results := make([]Resource, len(sorted))
	for i, it := range sorted {
		results[i] = it.Resource
	}
	return Aggregate(results, raw)
}

// FailAll marks every one of n input items as failed with the given
// error. Used when the carrier call itself failed before any per-item
// results existed: callers of a batch API get a batch-shaped answer even
// on total failure.
func FailAll(n int, err error) *BatchResponse {
	ve := ValidationError{Message: err.Error()}
	var raw any
	if cerr, ok := err.(*Error); ok {
		ve = ValidationError{
			Code:    cerr.CarrierCode,
			Message: cerr.Message,
		}
		raw = cerr.Raw
	}

	results := make([]Resource, n)
	for i := range results {
		results[i] = FailedResource(nil, ve)
	}
	return Aggregate(results, raw)
}

// SingleResult unwraps a one-item batch for single-item operations.
// Failures are always translated to a taxonomy error so single-item
// callers never see a "failed" resource value; that shape is reserved
// for batch aggregation.
func SingleResult(carrierName string, batch *BatchResponse) (*Resource, error) {
	if batch.TotalCount != 1 {
		return nil, NewError(carrierName, "carrier returned no result for item", CategoryTransient)
	}
	res := batch.Results[0]
	if res.Succeeded() {
		return &res, nil
	}
	msg := "carrier rejected the item"
	code := ""
	if len(res.Errors) > 0 {
		msg = res.Errors[0].Message
		code = res.Errors[0].Code
	}
	return nil, NewError(carrierName, msg, CategoryValidation).
		WithCode(code).
		WithRaw(res.Raw)
}

func summarize(success, failure, total int) string {
	switch {
	case failure == 0:
		return fmt.Sprintf("all %d items created successfully", total)
	case success == 0:
		return fmt.Sprintf("all %d items failed", total)
	default:
		return fmt.Sprintf("%d succeeded, %d failed", success, failure)
	}
}
