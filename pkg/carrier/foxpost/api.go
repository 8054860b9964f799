package foxpost

import (
	"context"
)

// APIClient defines the interface for Foxpost API operations. The split
// lets tests inject a mock while production uses the HTTP client.
type APIClient interface {
	// CreateParcels registers a batch of parcels in one call.
	CreateParcels(ctx context.Context, req []ParcelRequest) (*ParcelsResponse, error)

	// CreateLabels renders labels for already registered parcels.
	CreateLabels(ctx context.Context, req *LabelsRequest) (*LabelsResponse, error)

	// GetTracking returns tracking traces for one parcel.
	GetTracking(ctx context.Context, clFoxID string) (*TrackingResponse, error)

	// ListAPMs returns the parcel locker network.
	ListAPMs(ctx context.Context) ([]APM, error)
}

// ============================================================================
// API Request/Response Types (Foxpost REST API shapes)
// ============================================================================

// ParcelRequest is one item of the POST /parcel batch body.
type ParcelRequest struct {
	RefCode        string  `json:"refCode"`
	RecipientName  string  `json:"recipientName"`
	RecipientPhone string  `json:"recipientPhone"`
	RecipientEmail string  `json:"recipientEmail,omitempty"`
	Destination    string  `json:"destination,omitempty"` // APM place id
	Address        string  `json:"address,omitempty"`     // home delivery street
	City           string  `json:"city,omitempty"`
	Zip            string  `json:"zip,omitempty"`
	Size           string  `json:"size"` // xs, s, m, l, xl
	COD            float64 `json:"cod,omitempty"`
	Comment        string  `json:"comment,omitempty"`
}

// ParcelResult is the per-item outcome inside ParcelsResponse.
type ParcelResult struct {
	ClFoxID string       `json:"clFoxId,omitempty"`
	RefCode string       `json:"refCode,omitempty"`
	Barcode string       `json:"barcode,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError is a per-field rejection reason.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ParcelsResponse is the POST /parcel response. Parcels holds one entry
// per request item, in request order.
type ParcelsResponse struct {
	Valid   bool           `json:"valid"`
	Parcels []ParcelResult `json:"parcels"`
}

// LabelsRequest is the POST /label body.
type LabelsRequest struct {
	ClFoxIDs []string `json:"clFoxIds"`
	Format   string   `json:"format,omitempty"` // "pdf" (default) or "zpl"
}

// LabelResult is one rendered label.
type LabelResult struct {
	ClFoxID string       `json:"clFoxId"`
	Data    string       `json:"data,omitempty"` // base64
	Errors  []FieldError `json:"errors,omitempty"`
}

// LabelsResponse is the POST /label response, in request order.
type LabelsResponse struct {
	Labels []LabelResult `json:"labels"`
}

// TrackingResponse is the GET /tracking/{clFoxId} response.
type TrackingResponse struct {
	ClFoxID string  `json:"clFoxId"`
	Traces  []Trace `json:"traces"`
}

// Trace is one tracking event.
type Trace struct {
	Status     string `json:"status"`
	StatusDate string `json:"statusDate"` // RFC 3339
	ShortName  string `json:"shortName"`
	Depot      string `json:"depot,omitempty"`
}

// APM is one parcel locker from GET /apms.
type APM struct {
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Zip         string  `json:"zip"`
	City        string  `json:"city"`
	GeoLat      float64 `json:"geolat"`
	GeoLng      float64 `json:"geolng"`
	Operational bool    `json:"operational"`
}
