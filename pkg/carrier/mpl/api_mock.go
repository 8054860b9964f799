package mpl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCreateShipments    func(ctx context.Context, req *ShipmentsRequest) (*ShipmentsResponse, error)
	OnGetLabels          func(ctx context.Context, req *LabelsRequest) (*LabelsResponse, error)
	OnGetTracking        func(ctx context.Context, trackingNumber string) (*TrackingResponse, error)
	OnListDeliveryPoints func(ctx context.Context, postCode string) ([]DeliveryPoint, error)

	nextTrackingNumber int
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{nextTrackingNumber: 1}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return translate(&carrier.HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Body:       []byte(`{"code":"SERVICE_MAINTENANCE","message":"simulated maintenance window"}`),
		})
	}
	return nil
}

// CreateShipments registers mock shipments, one created entry per item.
func (m *MockAPIClient) CreateShipments(ctx context.Context, req *ShipmentsRequest) (*ShipmentsResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateShipments != nil {
		return m.OnCreateShipments(ctx, req)
	}

	results := make([]ShipmentResult, len(req.Shipments))
	for i, s := range req.Shipments {
		results[i] = ShipmentResult{
			ReferenceID:    s.ReferenceID,
			TrackingNumber: fmt.Sprintf("PNHU%010d", m.nextTrackingNumber),
		}
		m.nextTrackingNumber++
	}
	return &ShipmentsResponse{Results: results}, nil
}

// GetLabels renders mock labels in request order.
func (m *MockAPIClient) GetLabels(ctx context.Context, req *LabelsRequest) (*LabelsResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetLabels != nil {
		return m.OnGetLabels(ctx, req)
	}

	labels := make([]LabelResult, len(req.TrackingNumbers))
	for i, tn := range req.TrackingNumbers {
		labels[i] = LabelResult{
			TrackingNumber: tn,
			Label:          "JVBERi0xLjQKJSBtcGwgbW9jaw==",
		}
	}
	return &LabelsResponse{Labels: labels}, nil
}

// GetTracking returns a canned event history.
func (m *MockAPIClient) GetTracking(ctx context.Context, trackingNumber string) (*TrackingResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, trackingNumber)
	}

	now := time.Now()
	return &TrackingResponse{
		TrackingNumber: trackingNumber,
		Events: []TrackingEvent{
			{
				Code:        "FELVETEL",
				Time:        now.Add(-48 * time.Hour).Format(time.RFC3339),
				Description: "Shipment accepted",
				PostOffice:  "Budapest 62",
			},
			{
				Code:        "SZALLITAS",
				Time:        now.Add(-24 * time.Hour).Format(time.RFC3339),
				Description: "Shipment in transit",
				PostOffice:  "Budaörs OLK",
			},
			{
				Code:        "KEZBESITES",
				Time:        now.Add(-1 * time.Hour).Format(time.RFC3339),
				Description: "Shipment delivered",
				PostOffice:  "Pécs 1",
			},
		},
	}, nil
}

// ListDeliveryPoints returns a canned delivery point list.
func (m *MockAPIClient) ListDeliveryPoints(ctx context.Context, postCode string) ([]DeliveryPoint, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnListDeliveryPoints != nil {
		return m.OnListDeliveryPoints(ctx, postCode)
	}

	return []DeliveryPoint{
		{
			ID:        "posta-1062",
			Name:      "Budapest 62 Posta",
			Address:   "Teréz krt. 51",
			City:      "Budapest",
			PostCode:  postCode,
			Latitude:  47.5106,
			Longitude: 19.0617,
			Type:      "POSTA",
			Open:      true,
		},
		{
			ID:        "automata-4410",
			Name:      "MPL Csomagautomata Westend",
			Address:   "Váci út 1-3",
			City:      "Budapest",
			PostCode:  postCode,
			Latitude:  47.5131,
			Longitude: 19.0569,
			Type:      "CSOMAGAUTOMATA",
			Open:      true,
		},
		{
			ID:        "postapont-7621",
			Name:      "PostaPont Pécs Árkád",
			Address:   "Bajcsy-Zsilinszky út 11",
			City:      "Pécs",
			PostCode:  "7622",
			Latitude:  46.0727,
			Longitude: 18.2323,
			Type:      "POSTAPONT",
			Open:      false,
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
