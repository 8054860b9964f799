package foxpost

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/parcelmesh/shipbridge/pkg/carrier"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCreateParcels func(ctx context.Context, req []ParcelRequest) (*ParcelsResponse, error)
	OnCreateLabels  func(ctx context.Context, req *LabelsRequest) (*LabelsResponse, error)
	OnGetTracking   func(ctx context.Context, clFoxID string) (*TrackingResponse, error)
	OnListAPMs      func(ctx context.Context) ([]APM, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return translate(&carrier.HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Body:       []byte(`{"code":"MOCK_ERROR","message":"simulated API error"}`),
		})
	}
	return nil
}

// CreateParcels registers mock parcels, one created entry per item.
func (m *MockAPIClient) CreateParcels(ctx context.Context, req []ParcelRequest) (*ParcelsResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateParcels != nil {
		return m.OnCreateParcels(ctx, req)
	}

	parcels := make([]ParcelResult, len(req))
	for i, p := range req {
		parcels[i] = ParcelResult{
			ClFoxID: "CLFOX" + uuid.New().String()[:8],
			RefCode: p.RefCode,
			Barcode: "FOX" + uuid.New().String()[:10],
		}
	}
	return &ParcelsResponse{Valid: true, Parcels: parcels}, nil
}

// CreateLabels renders mock labels in request order.
func (m *MockAPIClient) CreateLabels(ctx context.Context, req *LabelsRequest) (*LabelsResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateLabels != nil {
		return m.OnCreateLabels(ctx, req)
	}

	labels := make([]LabelResult, len(req.ClFoxIDs))
	for i, id := range req.ClFoxIDs {
		labels[i] = LabelResult{
			ClFoxID: id,
			Data:    "JVBERi0xLjQKJSBtb2NrIGxhYmVs", // mock base64 payload
		}
	}
	return &LabelsResponse{Labels: labels}, nil
}

// GetTracking returns a canned trace history.
func (m *MockAPIClient) GetTracking(ctx context.Context, clFoxID string) (*TrackingResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, clFoxID)
	}

	now := time.Now()
	return &TrackingResponse{
		ClFoxID: clFoxID,
		Traces: []Trace{
			{
				Status:     "OPERIN",
				StatusDate: now.Add(-48 * time.Hour).Format(time.RFC3339),
				ShortName:  "Parcel received at depot",
				Depot:      "Budapest",
			},
			{
				Status:     "HDSENT",
				StatusDate: now.Add(-24 * time.Hour).Format(time.RFC3339),
				ShortName:  "Parcel in transit",
				Depot:      "Debrecen",
			},
		},
	}, nil
}

// ListAPMs returns a canned locker list.
func (m *MockAPIClient) ListAPMs(ctx context.Context) ([]APM, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnListAPMs != nil {
		return m.OnListAPMs(ctx)
	}

	return []APM{
		{
			PlaceID:     "hu1001",
			Name:        "Foxpost Allee",
			Address:     "Október huszonharmadika u. 8-10",
			Zip:         "1117",
			City:        "Budapest",
			GeoLat:      47.4733,
			GeoLng:      19.0473,
			Operational: true,
		},
		{
			PlaceID:     "hu1002",
			Name:        "Foxpost Westend",
			Address:     "Váci út 1-3",
			Zip:         "1062",
			City:        "Budapest",
			GeoLat:      47.5130,
			GeoLng:      19.0575,
			Operational: true,
		},
		{
			PlaceID:     "hu2001",
			Name:        "Foxpost Debrecen Fórum",
			Address:     "Csapó u. 30",
			Zip:         "4029",
			City:        "Debrecen",
			GeoLat:      47.5316,
			GeoLng:      21.6273,
			Operational: false,
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
