package foxpost_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/parcelmesh/shipbridge/pkg/carrier/foxpost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *foxpost.MockAPIClient) *foxpost.Client {
	logger := otelzap.New(zap.NewNop())
	return foxpost.NewWithAPIClient(
		foxpost.Config{},
		mockClient,
		logger,
		nil,
	)
}

func testParcel(ref string) *carrier.Parcel {
	return &carrier.Parcel{
		Reference: ref,
		Sender: carrier.Address{
			Name:     "Sender Kft",
			Street:   "Fő utca 1",
			City:     "Budapest",
			PostCode: "1011",
			Country:  "HU",
			Phone:    "+36301234567",
		},
		Recipient: carrier.Address{
			Name:     "Kovács Anna",
			Street:   "Kossuth tér 2",
			City:     "Debrecen",
			PostCode: "4024",
			Country:  "HU",
			Phone:    "+36209876543",
		},
		WeightKG:      2.5,
		Size:          carrier.SizeM,
		PickupPointID: "hu1001",
	}
}

func TestClient_CreateParcels_Success(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), []*carrier.Parcel{
		testParcel("ref-1"),
		testParcel("ref-2"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, batch.TotalCount)
	assert.True(t, batch.AllSucceeded)
	assert.NotEmpty(t, batch.Results[0].CarrierID)
	assert.Equal(t, carrier.OutcomeFullSuccess, carrier.DeriveOutcome(batch))
}

func TestClient_CreateParcels_PartialFailure(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		return &foxpost.ParcelsResponse{
			Parcels: []foxpost.ParcelResult{
				{ClFoxID: "OK1", RefCode: req[0].RefCode},
				{Errors: []foxpost.FieldError{{Field: "recipientPhone", Message: "MISSING"}}},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), []*carrier.Parcel{
		testParcel("ref-1"),
		testParcel("ref-2"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	assert.True(t, batch.SomeFailed)
	assert.Equal(t, "OK1", batch.Results[0].CarrierID)
	require.NotEmpty(t, batch.Results[1].Errors)
	assert.Equal(t, "recipientPhone", batch.Results[1].Errors[0].Field)
	assert.Equal(t, carrier.OutcomePartialSuccess, carrier.DeriveOutcome(batch))
}

func TestClient_CreateParcels_TransportFailureDegradesToAllFailed(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		return nil, errors.New("network timeout")
	}
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), []*carrier.Parcel{
		testParcel("ref-1"),
		testParcel("ref-2"),
		testParcel("ref-3"),
	})

	require.NoError(t, err, "batch ops must not propagate transport errors")
	assert.Equal(t, 3, batch.TotalCount)
	assert.True(t, batch.AllFailed)
	for _, r := range batch.Results {
		require.NotEmpty(t, r.Errors)
		assert.Contains(t, r.Errors[0].Message, "network timeout")
	}
}

func TestClient_CreateParcels_EmptyInput(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		t.Fatal("carrier must not be called for an empty batch")
		return nil, nil
	}
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, batch.TotalCount)
	assert.False(t, batch.AllSucceeded)
	assert.False(t, batch.AllFailed)
	assert.False(t, batch.SomeFailed)
	assert.Contains(t, batch.Summary, "no items")
}

func TestClient_CreateParcels_ShortCarrierResponse(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		return &foxpost.ParcelsResponse{
			Parcels: []foxpost.ParcelResult{{ClFoxID: "OK1"}},
		}, nil
	}
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), []*carrier.Parcel{
		testParcel("ref-1"),
		testParcel("ref-2"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, batch.TotalCount)
	assert.True(t, batch.SomeFailed)
}

func TestClient_CreateParcels_NilItemFailsOnlyThatItem(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	var sent []foxpost.ParcelRequest
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		sent = req
		return &foxpost.ParcelsResponse{
			Parcels: []foxpost.ParcelResult{{ClFoxID: "OK1", RefCode: req[0].RefCode}},
		}, nil
	}
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), []*carrier.Parcel{
		nil,
		testParcel("ref-2"),
	})

	require.NoError(t, err)
	require.Len(t, sent, 1, "nil items must not reach the carrier")
	assert.Equal(t, "ref-2", sent[0].RefCode)
	assert.Equal(t, 2, batch.TotalCount)
	assert.True(t, batch.SomeFailed)
	require.NotEmpty(t, batch.Results[0].Errors)
	assert.Contains(t, batch.Results[0].Errors[0].Message, "missing parcel data")
	assert.Equal(t, "OK1", batch.Results[1].CarrierID)
}

func TestClient_CreateParcels_AllNilItemsSkipCarrier(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		t.Fatal("carrier must not be called when no real parcels remain")
		return nil, nil
	}
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), []*carrier.Parcel{nil, nil})

	require.NoError(t, err)
	assert.Equal(t, 2, batch.TotalCount)
	assert.True(t, batch.AllFailed)
}

func TestClient_CreateParcel_Success(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	client := newTestClient(mockAPI)

	res, err := client.CreateParcel(context.Background(), testParcel("ref-1"))

	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.NotEmpty(t, res.CarrierID)
}

func TestClient_CreateParcel_RejectionBecomesValidationError(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		return &foxpost.ParcelsResponse{
			Parcels: []foxpost.ParcelResult{
				{Errors: []foxpost.FieldError{{Field: "size", Code: "INVALID_SIZE", Message: "size not supported"}}},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateParcel(context.Background(), testParcel("ref-1"))

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryValidation, cerr.Category)
	assert.Equal(t, "INVALID_SIZE", cerr.CarrierCode)
	assert.False(t, cerr.Retryable())
}

func TestClient_CreateParcel_TimeoutIsTransient(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		return nil, errors.New("dial tcp: i/o timeout")
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateParcel(context.Background(), testParcel("ref-1"))

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryTransient, cerr.Category)
	assert.True(t, cerr.Retryable())
}

func TestClient_CreateParcel_RateLimitKeepsRetryAfter(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.OnCreateParcels = func(ctx context.Context, req []foxpost.ParcelRequest) (*foxpost.ParcelsResponse, error) {
		h := http.Header{}
		h.Set("Retry-After", "30")
		return nil, &carrier.HTTPError{StatusCode: http.StatusTooManyRequests, Header: h}
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateParcel(context.Background(), testParcel("ref-1"))

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryRateLimit, cerr.Category)
	assert.Equal(t, float64(30), cerr.RetryAfter.Seconds())
}

func TestClient_CreateLabels_Success(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	client := newTestClient(mockAPI)

	batch, err := client.CreateLabels(context.Background(), &carrier.LabelRequest{
		ParcelIDs: []string{"CLFOX1", "CLFOX2"},
		Format:    carrier.LabelPDF,
	})

	require.NoError(t, err)
	assert.True(t, batch.AllSucceeded)
	assert.Equal(t, 2, batch.TotalCount)
}

func TestClient_CreateLabels_TransportFailure(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	batch, err := client.CreateLabels(context.Background(), &carrier.LabelRequest{
		ParcelIDs: []string{"CLFOX1"},
	})

	require.NoError(t, err)
	assert.True(t, batch.AllFailed)
}

func TestClient_Track_Success(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	client := newTestClient(mockAPI)

	events, err := client.Track(context.Background(), "CLFOX123")

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, carrier.StatusPickedUp, events[0].Status)
	assert.Equal(t, carrier.StatusInTransit, events[1].Status)
	assert.Equal(t, "OPERIN", events[0].CarrierCode)
}

func TestClient_Track_Error(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.Track(context.Background(), "CLFOX123")

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryTransient, cerr.Category)
}

func TestClient_PickupPoints_FiltersAndMaps(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	client := newTestClient(mockAPI)

	points, err := client.PickupPoints(context.Background(), &carrier.PickupPointQuery{City: "Budapest"})

	require.NoError(t, err)
	require.Len(t, points, 2)
	for _, p := range points {
		assert.Equal(t, "foxpost", p.Carrier)
		assert.Equal(t, "Budapest", p.City)
		assert.Equal(t, "HU", p.Country)
	}
}

func TestClient_PickupPoints_Limit(t *testing.T) {
	mockAPI := foxpost.NewMockAPIClient()
	client := newTestClient(mockAPI)

	points, err := client.PickupPoints(context.Background(), &carrier.PickupPointQuery{Limit: 1})

	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(foxpost.NewMockAPIClient())
	assert.Equal(t, "foxpost", client.Name())
}
