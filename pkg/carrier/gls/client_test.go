package gls_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/parcelmesh/shipbridge/pkg/carrier/gls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *gls.MockAPIClient) *gls.Client {
	logger := otelzap.New(zap.NewNop())
	return gls.NewWithAPIClient(
		gls.Config{},
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
			Name:     "Szabó Péter",
			Street:   "Petőfi utca 5",
			City:     "Szeged",
			PostCode: "6720",
			Country:  "HU",
			Phone:    "+36209876543",
		},
		WeightKG: 1.2,
		Size:     carrier.SizeS,
	}
}

func TestClient_CreateParcels_Success(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
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

func TestClient_CreateParcels_ResponseReorderedByReference(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.OnPrepareLabels = func(ctx context.Context, req *gls.PrepareLabelsRequest) (*gls.PrepareLabelsResponse, error) {
		// outcomes returned out of order relative to the request
		return &gls.PrepareLabelsResponse{
			ParcelInfoList: []gls.ParcelInfo{
				{ClientReference: "ref-2", ParcelID: 90000002},
				{ClientReference: "ref-1", ParcelID: 90000001},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), []*carrier.Parcel{
		testParcel("ref-1"),
		testParcel("ref-2"),
	})

	require.NoError(t, err)
	assert.True(t, batch.AllSucceeded)
	assert.Equal(t, "90000001", batch.Results[0].CarrierID)
	assert.Equal(t, "90000002", batch.Results[1].CarrierID)
}

func TestClient_CreateParcels_PartialFailure(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.OnPrepareLabels = func(ctx context.Context, req *gls.PrepareLabelsRequest) (*gls.PrepareLabelsResponse, error) {
		return &gls.PrepareLabelsResponse{
			ParcelInfoList: []gls.ParcelInfo{
				{ClientReference: "ref-1", ParcelID: 90000001},
				{ClientReference: "ref-2", ParcelInfoErrorList: []gls.ItemError{
					{ErrorCode: "INVALID_ZIPCODE", ErrorDescription: "zip code not served", Field: "DeliveryAddress.ZipCode"},
				}},
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
	require.NotEmpty(t, batch.Results[1].Errors)
	assert.Equal(t, "INVALID_ZIPCODE", batch.Results[1].Errors[0].Code)
	assert.Equal(t, carrier.OutcomePartialSuccess, carrier.DeriveOutcome(batch))
}

func TestClient_CreateParcels_NilItemFailsOnlyThatItem(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	var sent *gls.PrepareLabelsRequest
	mockAPI.OnPrepareLabels = func(ctx context.Context, req *gls.PrepareLabelsRequest) (*gls.PrepareLabelsResponse, error) {
		sent = req
		return &gls.PrepareLabelsResponse{
			ParcelInfoList: []gls.ParcelInfo{
				{ClientReference: "ref-2", ParcelID: 90000002},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	batch, err := client.CreateParcels(context.Background(), []*carrier.Parcel{
		nil,
		testParcel("ref-2"),
	})

	require.NoError(t, err)
	require.NotNil(t, sent)
	require.Len(t, sent.ParcelList, 1, "nil items must not reach the carrier")
	assert.Equal(t, "ref-2", sent.ParcelList[0].ClientReference)
	assert.Equal(t, 2, batch.TotalCount)
	assert.True(t, batch.SomeFailed)
	require.NotEmpty(t, batch.Results[0].Errors)
	assert.Contains(t, batch.Results[0].Errors[0].Message, "missing parcel data")
	assert.Equal(t, "90000002", batch.Results[1].CarrierID)
}

func TestClient_CreateParcels_TransportFailureDegradesToAllFailed(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.OnPrepareLabels = func(ctx context.Context, req *gls.PrepareLabelsRequest) (*gls.PrepareLabelsResponse, error) {
		return nil, errors.New("connection reset by peer")
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
		assert.Contains(t, r.Errors[0].Message, "connection reset")
	}
}

func TestClient_CreateParcels_EmptyInput(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.OnPrepareLabels = func(ctx context.Context, req *gls.PrepareLabelsRequest) (*gls.PrepareLabelsResponse, error) {
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

func TestClient_CreateParcel_Success(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	client := newTestClient(mockAPI)

	res, err := client.CreateParcel(context.Background(), testParcel("ref-1"))

	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.NotEmpty(t, res.CarrierID)
}

func TestClient_CreateParcel_AuthFailure(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.OnPrepareLabels = func(ctx context.Context, req *gls.PrepareLabelsRequest) (*gls.PrepareLabelsResponse, error) {
		return nil, &carrier.HTTPError{
			StatusCode: http.StatusUnauthorized,
			Body:       []byte(`{"code":"AUTHENTICATION_FAILED","message":"bad credentials"}`),
		}
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateParcel(context.Background(), testParcel("ref-1"))

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryAuth, cerr.Category)
	assert.Equal(t, "AUTHENTICATION_FAILED", cerr.CarrierCode)
	assert.False(t, cerr.Retryable())
}

func TestClient_CreateParcel_RejectionBecomesValidationError(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.OnPrepareLabels = func(ctx context.Context, req *gls.PrepareLabelsRequest) (*gls.PrepareLabelsResponse, error) {
		return &gls.PrepareLabelsResponse{
			ParcelInfoList: []gls.ParcelInfo{
				{ClientReference: "ref-1", ParcelInfoErrorList: []gls.ItemError{
					{ErrorCode: "INVALID_PARCEL_DATA", ErrorDescription: "missing contact phone"},
				}},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateParcel(context.Background(), testParcel("ref-1"))

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryValidation, cerr.Category)
	assert.Equal(t, "INVALID_PARCEL_DATA", cerr.CarrierCode)
}

func TestClient_CreateParcel_OutageIsTransient(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.CreateParcel(context.Background(), testParcel("ref-1"))

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryTransient, cerr.Category)
	assert.True(t, cerr.Retryable())
}

func TestClient_CreateLabels_Success(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	client := newTestClient(mockAPI)

	batch, err := client.CreateLabels(context.Background(), &carrier.LabelRequest{
		ParcelIDs: []string{"90000001", "90000002"},
		Format:    carrier.LabelPDF,
	})

	require.NoError(t, err)
	assert.True(t, batch.AllSucceeded)
	assert.Equal(t, 2, batch.TotalCount)
}

func TestClient_CreateLabels_NonNumericIDFailsThatItemOnly(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	client := newTestClient(mockAPI)

	batch, err := client.CreateLabels(context.Background(), &carrier.LabelRequest{
		ParcelIDs: []string{"90000001", "not-a-number"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	assert.True(t, batch.SomeFailed)
	require.NotEmpty(t, batch.Results[1].Errors)
	assert.Equal(t, "parcelId", batch.Results[1].Errors[0].Field)
}

func TestClient_CreateLabels_TransportFailure(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	batch, err := client.CreateLabels(context.Background(), &carrier.LabelRequest{
		ParcelIDs: []string{"90000001"},
	})

	require.NoError(t, err)
	assert.True(t, batch.AllFailed)
}

func TestClient_Track_Success(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	client := newTestClient(mockAPI)

	events, err := client.Track(context.Background(), "90000001")

	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, carrier.StatusPickedUp, events[0].Status)
	assert.Equal(t, carrier.StatusInTransit, events[1].Status)
	assert.Equal(t, carrier.StatusDelivered, events[2].Status)
	assert.Equal(t, "Budapest", events[0].Location)
}

func TestClient_Track_Error(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.Track(context.Background(), "90000001")

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryTransient, cerr.Category)
}

func TestClient_PickupPoints_FiltersByPostCode(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	client := newTestClient(mockAPI)

	points, err := client.PickupPoints(context.Background(), &carrier.PickupPointQuery{PostCode: "2100"})

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "gls", points[0].Carrier)
	assert.Equal(t, "Gödöllő", points[0].City)
	assert.True(t, points[0].Available)
}

func TestClient_PickupPoints_Limit(t *testing.T) {
	mockAPI := gls.NewMockAPIClient()
	client := newTestClient(mockAPI)

	points, err := client.PickupPoints(context.Background(), &carrier.PickupPointQuery{Limit: 1})

	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(gls.NewMockAPIClient())
	assert.Equal(t, "gls", client.Name())
}
