package gls

import (
	"context"
	"net/http"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnPrepareLabels     func(ctx context.Context, req *PrepareLabelsRequest) (*PrepareLabelsResponse, error)
	OnGetPrintedLabels  func(ctx context.Context, req *PrintedLabelsRequest) (*PrintedLabelsResponse, error)
	OnGetParcelStatuses func(ctx context.Context, parcelNumber string) (*ParcelStatusesResponse, error)
	OnListParcelShops   func(ctx context.Context, countryCode string) ([]ParcelShop, error)

	nextParcelID int64
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{nextParcelID: 90000000}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return translate(&carrier.HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Body:       []byte(`{"code":"SERVICE_UNAVAILABLE","message":"simulated outage"}`),
		})
	}
	return nil
}

// PrepareLabels registers mock parcels, one created entry per item.
func (m *MockAPIClient) PrepareLabels(ctx context.Context, req *PrepareLabelsRequest) (*PrepareLabelsResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnPrepareLabels != nil {
		return m.OnPrepareLabels(ctx, req)
	}

	infos := make([]ParcelInfo, len(req.ParcelList))
	for i, p := range req.ParcelList {
		m.nextParcelID++
		infos[i] = ParcelInfo{
			ClientReference: p.ClientReference,
			ParcelID:        m.nextParcelID,
		}
	}
	return &PrepareLabelsResponse{ParcelInfoList: infos}, nil
}

// GetPrintedLabels renders mock labels in request order.
func (m *MockAPIClient) GetPrintedLabels(ctx context.Context, req *PrintedLabelsRequest) (*PrintedLabelsResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetPrintedLabels != nil {
		return m.OnGetPrintedLabels(ctx, req)
	}

	labels := make([]PrintedLabel, len(req.ParcelIDList))
	for i, id := range req.ParcelIDList {
		labels[i] = PrintedLabel{
			ParcelID: id,
			Data:     "JVBERi0xLjQKJSBnbHMgbW9jaw==",
		}
	}
	return &PrintedLabelsResponse{Labels: labels}, nil
}

// GetParcelStatuses returns a canned status history.
func (m *MockAPIClient) GetParcelStatuses(ctx context.Context, parcelNumber string) (*ParcelStatusesResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetParcelStatuses != nil {
		return m.OnGetParcelStatuses(ctx, parcelNumber)
	}

	now := time.Now()
	return &ParcelStatusesResponse{
		ParcelNumber: parcelNumber,
		ParcelStatusList: []ParcelStatus{
			{
				StatusCode:        "01",
				StatusDate:        now.Add(-72 * time.Hour).Format(time.RFC3339),
				StatusDescription: "Parcel data received",
				DepotCity:         "Budapest",
			},
			{
				StatusCode:        "02",
				StatusDate:        now.Add(-48 * time.Hour).Format(time.RFC3339),
				StatusDescription: "Parcel in transit",
				DepotCity:         "Győr",
			},
			{
				StatusCode:        "05",
				StatusDate:        now.Add(-2 * time.Hour).Format(time.RFC3339),
				StatusDescription: "Parcel delivered",
				DepotCity:         "Győr",
			},
		},
	}, nil
}

// ListParcelShops returns a canned shop list.
func (m *MockAPIClient) ListParcelShops(ctx context.Context, countryCode string) ([]ParcelShop, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnListParcelShops != nil {
		return m.OnListParcelShops(ctx, countryCode)
	}

	return []ParcelShop{
		{
			ShopID:      "2100-CSOMAGPONT",
			Name:        "GLS CsomagPont Gödöllő",
			Address:     "Dózsa György út 13",
			City:        "Gödöllő",
			ZipCode:     "2100",
			CountryCode: countryCode,
			Latitude:    47.5965,
			Longitude:   19.3547,
			IsActive:    true,
		},
		{
			ShopID:      "1065-CSOMAGPONT",
			Name:        "GLS CsomagPont Oktogon",
			Address:     "Teréz krt. 21",
			City:        "Budapest",
			ZipCode:     "1065",
			CountryCode: countryCode,
			Latitude:    47.5051,
			Longitude:   19.0633,
			IsActive:    true,
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
