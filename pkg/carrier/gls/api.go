package gls

import (
	"context"
)

// APIClient defines the interface for MyGLS API operations.
type APIClient interface {
	// PrepareLabels registers a batch of parcels and returns per-item
	// outcomes with GLS parcel IDs.
	PrepareLabels(ctx context.Context, req *PrepareLabelsRequest) (*PrepareLabelsResponse, error)

	// GetPrintedLabels renders labels for prepared parcels.
	GetPrintedLabels(ctx context.Context, req *PrintedLabelsRequest) (*PrintedLabelsResponse, error)

	// GetParcelStatuses returns the status history of one parcel.
	GetParcelStatuses(ctx context.Context, parcelNumber string) (*ParcelStatusesResponse, error)

	// ListParcelShops returns GLS parcel shops and lockers.
	ListParcelShops(ctx context.Context, countryCode string) ([]ParcelShop, error)
}

// ============================================================================
// API Request/Response Types (MyGLS JSON API shapes)
// ============================================================================

// GLSAddress is the address shape of the MyGLS API.
type GLSAddress struct {
	Name           string `json:"Name"`
	Street         string `json:"Street"`
	City           string `json:"City"`
	ZipCode        string `json:"ZipCode"`
	CountryIsoCode string `json:"CountryIsoCode"`
	ContactName    string `json:"ContactName,omitempty"`
	ContactPhone   string `json:"ContactPhone,omitempty"`
	ContactEmail   string `json:"ContactEmail,omitempty"`
}

// GLSParcel is one item of a PrepareLabels batch.
type GLSParcel struct {
	ClientReference string     `json:"ClientReference"`
	PickupAddress   GLSAddress `json:"PickupAddress"`
	DeliveryAddress GLSAddress `json:"DeliveryAddress"`
	CODAmount       float64    `json:"CODAmount,omitempty"`
	CODCurrency     string     `json:"CODCurrency,omitempty"`
	Content         string     `json:"Content,omitempty"`
	Count           int        `json:"Count"`
	ServiceList     []Service  `json:"ServiceList,omitempty"`
}

// Service is a GLS value-added service (e.g. PSD for parcel shop delivery).
type Service struct {
	Code         string `json:"Code"`
	PSDParameter *PSD   `json:"PSDParameter,omitempty"`
}

// PSD carries the parcel shop delivery destination.
type PSD struct {
	StringValue string `json:"StringValue"` // parcel shop id
}

// PrepareLabelsRequest is the POST /PrepareLabels body. Password is the
// SHA-512 digest of the account password, per the MyGLS auth scheme.
type PrepareLabelsRequest struct {
	Username   string      `json:"Username"`
	Password   []byte      `json:"Password"`
	ParcelList []GLSParcel `json:"ParcelList"`
}

// ParcelInfo is the per-item outcome inside PrepareLabelsResponse.
type ParcelInfo struct {
	ClientReference     string      `json:"ClientReference"`
	ParcelID            int64       `json:"ParcelId,omitempty"`
	ParcelInfoErrorList []ItemError `json:"ParcelInfoErrorList,omitempty"`
}

// ItemError is a per-item rejection reason.
type ItemError struct {
	ErrorCode        string `json:"ErrorCode"`
	ErrorDescription string `json:"ErrorDescription"`
	Field            string `json:"Field,omitempty"`
}

// PrepareLabelsResponse holds one ParcelInfo per request item, in
// request order.
type PrepareLabelsResponse struct {
	ParcelInfoList []ParcelInfo `json:"ParcelInfoList"`
}

// PrintedLabelsRequest is the POST /GetPrintedLabels body.
type PrintedLabelsRequest struct {
	Username      string  `json:"Username"`
	Password      []byte  `json:"Password"`
	ParcelIDList  []int64 `json:"ParcelIdList"`
	TypeOfPrinter string  `json:"TypeOfPrinter,omitempty"` // "A4_2x2", "Thermo"
}

// PrintedLabel is one rendered label.
type PrintedLabel struct {
	ParcelID int64       `json:"ParcelId"`
	Data     string      `json:"Labels,omitempty"` // base64 PDF
	Errors   []ItemError `json:"GetPrintedLabelsErrorList,omitempty"`
}

// PrintedLabelsResponse holds labels in request order.
type PrintedLabelsResponse struct {
	Labels []PrintedLabel `json:"Labels"`
}

// ParcelStatus is one tracking event.
type ParcelStatus struct {
	StatusCode        string `json:"StatusCode"`
	StatusDate        string `json:"StatusDate"` // RFC 3339
	StatusDescription string `json:"StatusDescription"`
	DepotCity         string `json:"DepotCity,omitempty"`
}

// ParcelStatusesResponse is the GetParcelStatuses response.
type ParcelStatusesResponse struct {
	ParcelNumber     string         `json:"ParcelNumber"`
	ParcelStatusList []ParcelStatus `json:"ParcelStatusList"`
}

// ParcelShop is one GLS parcel shop or locker.
type ParcelShop struct {
	ShopID      string  `json:"ShopId"`
	Name        string  `json:"Name"`
	Address     string  `json:"Address"`
	City        string  `json:"City"`
	ZipCode     string  `json:"ZipCode"`
	CountryCode string  `json:"CountryCode"`
	Latitude    float64 `json:"Latitude"`
	Longitude   float64 `json:"Longitude"`
	IsActive    bool    `json:"IsActive"`
}
