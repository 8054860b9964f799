package carrier

import (
	"time"
)

// ShipmentStatus represents the normalized status of a parcel.
type ShipmentStatus string

const (
	StatusCreated        ShipmentStatus = "created"
	StatusPickedUp       ShipmentStatus = "picked_up"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusAtPickupPoint  ShipmentStatus = "at_pickup_point"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusReturned       ShipmentStatus = "returned"
	StatusCancelled      ShipmentStatus = "cancelled"
	StatusException      ShipmentStatus = "exception"
)

// ParcelSize is the locker-compatible size class of a parcel.
type ParcelSize string

const (
	SizeXS ParcelSize = "xs"
	SizeS  ParcelSize = "s"
	SizeM  ParcelSize = "m"
	SizeL  ParcelSize = "l"
	SizeXL ParcelSize = "xl"
)

// LabelFormat represents the format of shipping labels.
type LabelFormat string

const (
	LabelPDF LabelFormat = "pdf"
	LabelPNG LabelFormat = "png"
	LabelZPL LabelFormat = "zpl"
)

// Address represents a shipping address.
type Address struct {
	Name     string `json:"name"`
	Company  string `json:"company,omitempty"`
	Street   string `json:"street"`
	City     string `json:"city"`
	PostCode string `json:"postCode"`
	Country  string `json:"country"` // ISO 3166-1 alpha-2, e.g. "HU"
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// Money represents a monetary amount.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Parcel is the canonical parcel shape handed to every adapter.
type Parcel struct {
	Reference     string     `json:"reference"` // client reference, also used for idempotency
	Sender        Address    `json:"sender"`
	Recipient     Address    `json:"recipient"`
	WeightKG      float64    `json:"weightKg"`
	Size          ParcelSize `json:"size"`
	COD           *Money     `json:"cod,omitempty"` // cash on delivery, nil when prepaid
	DeclaredValue *Money     `json:"declaredValue,omitempty"`
	PickupPointID string     `json:"pickupPointId,omitempty"` // destination locker/shop; empty for home delivery
	Comment       string     `json:"comment,omitempty"`
}

// TrackingEvent represents one tracking event, newest first.
type TrackingEvent struct {
	Timestamp   time.Time      `json:"timestamp"`
	Status      ShipmentStatus `json:"status"`
	Description string         `json:"description"`
	Location    string         `json:"location,omitempty"`
	CarrierCode string         `json:"carrierCode,omitempty"` // carrier's own event code
}

// PickupPoint is a locker or parcel shop a carrier can deliver to.
type PickupPoint struct {
	ID        string  `json:"id"`
	Carrier   string  `json:"carrier"`
	Name      string  `json:"name"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	PostCode  string  `json:"postCode"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Available bool    `json:"available"`
}

// PickupPointQuery filters pickup-point lookups.
type PickupPointQuery struct {
	PostCode string `json:"postCode,omitempty"`
	City     string `json:"city,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// LabelRequest asks for labels for already created parcels.
type LabelRequest struct {
	ParcelIDs []string    `json:"parcelIds"` // carrier-assigned IDs, in the order labels are wanted
	Format    LabelFormat `json:"format,omitempty"`
}

// Label is one rendered shipping label.
type Label struct {
	ParcelID string      `json:"parcelId"`
	Format   LabelFormat `json:"format"`
	Data     string      `json:"data,omitempty"` // base64 when inline
	URL      string      `json:"url,omitempty"`  // set when hosted by the carrier
}
