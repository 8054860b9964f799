package mpl

import (
	"context"
)

// APIClient defines the interface for Magyar Posta (MPL) API operations.
type APIClient interface {
	// CreateShipments registers a batch of shipments and returns per-item
	// outcomes with MPL tracking numbers.
	CreateShipments(ctx context.Context, req *ShipmentsRequest) (*ShipmentsResponse, error)

	// GetLabels renders labels for registered shipments.
	GetLabels(ctx context.Context, req *LabelsRequest) (*LabelsResponse, error)

	// GetTracking returns the event history of one shipment.
	GetTracking(ctx context.Context, trackingNumber string) (*TrackingResponse, error)

	// ListDeliveryPoints returns MPL post offices, parcel lockers and
	// PostaPont locations for a postal code.
	ListDeliveryPoints(ctx context.Context, postCode string) ([]DeliveryPoint, error)
}

// ============================================================================
// API Request/Response Types (MPL Shipment API v2 shapes)
// ============================================================================

// MPLAddress is the address shape of the MPL API.
type MPLAddress struct {
	ContactName string `json:"contactName"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostCode    string `json:"postCode"`
	CountryCode string `json:"countryCode"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Shipment is one item of a CreateShipments batch. Weight is in grams,
// per the MPL API.
type Shipment struct {
	ReferenceID     string     `json:"referenceId"`
	Sender          MPLAddress `json:"sender"`
	Recipient       MPLAddress `json:"recipient"`
	WeightGrams     int        `json:"weight"`
	DeliveryMode    string     `json:"deliveryMode"` // "HOME", "DELIVERY_POINT"
	DeliveryPointID string     `json:"deliveryPointId,omitempty"`
	CODValue        float64    `json:"codValue,omitempty"`
	Remark          string     `json:"remark,omitempty"`
}

// ShipmentsRequest is the POST /shipments body.
type ShipmentsRequest struct {
	Shipments []Shipment `json:"shipments"`
}

// ShipmentError is a per-item rejection reason.
type ShipmentError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ShipmentResult is the per-item outcome inside ShipmentsResponse.
type ShipmentResult struct {
	ReferenceID    string          `json:"referenceId"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	Errors         []ShipmentError `json:"errors,omitempty"`
}

// ShipmentsResponse holds one result per request item, in request order.
type ShipmentsResponse struct {
	Results []ShipmentResult `json:"results"`
}

// LabelsRequest is the POST /labels body.
type LabelsRequest struct {
	TrackingNumbers []string `json:"trackingNumbers"`
	LabelFormat     string   `json:"labelFormat"` // "PDF", "ZPL"
}

// LabelResult is one rendered label.
type LabelResult struct {
	TrackingNumber string          `json:"trackingNumber"`
	Label          string          `json:"label,omitempty"` // base64
	Errors         []ShipmentError `json:"errors,omitempty"`
}

// LabelsResponse holds labels in request order.
type LabelsResponse struct {
	Labels []LabelResult `json:"labels"`
}

// TrackingEvent is one event of a shipment's history.
type TrackingEvent struct {
	Code        string `json:"code"`
	Time        string `json:"time"` // RFC 3339
	Description string `json:"description"`
	PostOffice  string `json:"postOffice,omitempty"`
}

// TrackingResponse is the GET /tracking response.
type TrackingResponse struct {
	TrackingNumber string          `json:"trackingNumber"`
	Events         []TrackingEvent `json:"events"`
}

// DeliveryPoint is one MPL post office, parcel locker or PostaPont.
type DeliveryPoint struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	PostCode  string  `json:"postCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Type      string  `json:"type"` // "POSTA", "CSOMAGAUTOMATA", "POSTAPONT"
	Open      bool    `json:"open"`
}

// tokenResponse is the OAuth2 client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}
