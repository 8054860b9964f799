// Package carrier provides the canonical model, error taxonomy, and
// batch-result aggregation shared by all shipping carrier adapters.
package carrier

import (
	"context"
)

// Carrier defines the operation contract every adapter implements.
//
// Single-item operations surface failures as *Error; batch operations
// surface data-level failures inside the returned BatchResponse and only
// return an error when zero items could be attempted at all.
type Carrier interface {
	// Name returns the carrier identifier (e.g. "foxpost", "gls", "mpl").
	Name() string

	// CreateParcel registers one parcel. On any failure it returns a
	// *Error; it never returns a "failed" resource value.
	CreateParcel(ctx context.Context, p *Parcel) (*Resource, error)

	// CreateParcels registers parcels as a batch. Results preserve the
	// input order; a whole-batch transport failure degrades to an
	// all-failed response instead of an error.
	CreateParcels(ctx context.Context, parcels []*Parcel) (*BatchResponse, error)

	// CreateLabels renders labels for created parcels, with the same
	// aggregation rules as CreateParcels.
	CreateLabels(ctx context.Context, req *LabelRequest) (*BatchResponse, error)

	// Track returns tracking events for a carrier parcel ID.
	Track(ctx context.Context, parcelID string) ([]TrackingEvent, error)

	// PickupPoints lists lockers/shops matching the query.
	PickupPoints(ctx context.Context, q *PickupPointQuery) ([]PickupPoint, error)
}
