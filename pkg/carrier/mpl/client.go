// Package mpl provides integration with the Magyar Posta (MPL) shipping API.
package mpl

import (
	"context"
	"math"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "mpl"

const (
	productionBaseURL  = "https://core.api.posta.hu/mplapi/v2"
	productionTokenURL = "https://core.api.posta.hu/oauth2/token"
	sandboxBaseURL     = "https://sandbox.api.posta.hu/mplapi/v2"
	sandboxTokenURL    = "https://sandbox.api.posta.hu/oauth2/token"
)

// Config holds MPL configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string // overrides the resolved endpoint when set
	TokenURL     string // overrides the resolved token endpoint when set
	TestMode     bool
	UseMock      bool
}

func (c Config) resolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.TestMode {
		return sandboxBaseURL
	}
	return productionBaseURL
}

func (c Config) resolveTokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	if c.TestMode {
		return sandboxTokenURL
	}
	return productionTokenURL
}

// Client is the MPL carrier adapter.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new MPL client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:      cfg.resolveBaseURL(),
			TokenURL:     cfg.resolveTokenURL(),
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Timeout:      30 * time.Second,
			Logger:       logger,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new MPL client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = otel.Tracer("shipbridge/mpl")
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// CreateParcel registers one shipment, surfacing any failure as a
// taxonomy error.
func (c *Client) CreateParcel(ctx context.Context, p *carrier.Parcel) (*carrier.Resource, error) {
	ctx, span := c.tracer.Start(ctx, "mpl.create_parcel")
	defer span.End()

	batch, cerr := c.createShipments(ctx, []*carrier.Parcel{p})
	if cerr != nil {
		return nil, cerr
	}
	return carrier.SingleResult(carrierName, batch)
}

// CreateParcels registers shipments via one CreateShipments call.
func (c *Client) CreateParcels(ctx context.Context, parcels []*carrier.Parcel) (*carrier.BatchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "mpl.create_parcels")
	defer span.End()

	if len(parcels) == 0 {
		return carrier.Aggregate(nil, nil), nil
	}

	batch, cerr := c.createShipments(ctx, parcels)
	if cerr != nil {
		c.logger.Ctx(ctx).Error("MPL batch call failed",
			zap.String("category", cerr.Category.String()),
			zap.Error(cerr),
		)
		return carrier.FailAll(len(parcels), cerr), nil
	}
	return batch, nil
}

func (c *Client) createShipments(ctx context.Context, parcels []*carrier.Parcel) (*carrier.BatchResponse, *carrier.Error) {
	c.logger.Ctx(ctx).Info("Creating MPL shipments",
		zap.Int("parcel_count", len(parcels)),
	)

	// Nil elements (a JSON null in the request array decodes to one) are
	// failed up front; only real parcels are sent to the carrier.
	indexed := make([]carrier.IndexedResource, 0, len(parcels))
	req := &ShipmentsRequest{
		Shipments: make([]Shipment, 0, len(parcels)),
	}
	sent := make([]int, 0, len(parcels))
	for i, p := range parcels {
		if p == nil {
			indexed = append(indexed, carrier.IndexedResource{
				Index: i,
				Resource: carrier.FailedResource(nil, carrier.ValidationError{
					Message: "missing parcel data",
				}),
			})
			continue
		}
		req.Shipments = append(req.Shipments, parcelToAPI(p))
		sent = append(sent, i)
	}
	if len(req.Shipments) == 0 {
		return carrier.AggregateIndexed(indexed, nil), nil
	}

	resp, err := c.apiClient.CreateShipments(ctx, req)
	if err != nil {
		return nil, translate(err)
	}

	for j, idx := range sent {
		var res carrier.Resource
		if j >= len(resp.Results) {
			res = carrier.FailedResource(nil, carrier.ValidationError{
				Message: "no result returned for item",
			})
		} else {
			res = shipmentResultToResource(resp.Results[j])
		}
		indexed = append(indexed, carrier.IndexedResource{Index: idx, Resource: res})
	}
	return carrier.AggregateIndexed(indexed, resp), nil
}

// CreateLabels renders labels for registered shipments.
func (c *Client) CreateLabels(ctx context.Context, req *carrier.LabelRequest) (*carrier.BatchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "mpl.create_labels")
	defer span.End()

	if len(req.ParcelIDs) == 0 {
		return carrier.Aggregate(nil, nil), nil
	}

	resp, err := c.apiClient.GetLabels(ctx, &LabelsRequest{
		TrackingNumbers: req.ParcelIDs,
		LabelFormat:     labelFormatToAPI(req.Format),
	})
	if err != nil {
		return carrier.FailAll(len(req.ParcelIDs), translate(err)), nil
	}

	results := make([]carrier.Resource, len(req.ParcelIDs))
	for i := range req.ParcelIDs {
		if i >= len(resp.Labels) {
			results[i] = carrier.FailedResource(nil, carrier.ValidationError{
				Message: "no label returned for item",
			})
			continue
		}
		results[i] = labelResultToResource(resp.Labels[i])
	}
	return carrier.Aggregate(results, resp), nil
}

// Track returns tracking events for an MPL tracking number.
func (c *Client) Track(ctx context.Context, parcelID string) ([]carrier.TrackingEvent, error) {
	ctx, span := c.tracer.Start(ctx, "mpl.track")
	defer span.End()

	resp, err := c.apiClient.GetTracking(ctx, parcelID)
	if err != nil {
		return nil, carrier.AsError(carrierName, err)
	}

	events := make([]carrier.TrackingEvent, len(resp.Events))
	for i, ev := range resp.Events {
		events[i] = eventToCanonical(ev)
	}
	return events, nil
}

// PickupPoints lists open MPL delivery points matching the query. The
// MPL API is keyed by postal code, so a query without one returns the
// default Budapest set.
func (c *Client) PickupPoints(ctx context.Context, q *carrier.PickupPointQuery) ([]carrier.PickupPoint, error) {
	ctx, span := c.tracer.Start(ctx, "mpl.pickup_points")
	defer span.End()

	postCode := "1062"
	if q != nil && q.PostCode != "" {
		postCode = q.PostCode
	}

	dps, err := c.apiClient.ListDeliveryPoints(ctx, postCode)
	if err != nil {
		return nil, carrier.AsError(carrierName, err)
	}

	points := make([]carrier.PickupPoint, 0, len(dps))
	for _, dp := range dps {
		if q != nil && q.City != "" && dp.City != q.City {
			continue
		}
		points = append(points, deliveryPointToCanonical(dp))
		if q != nil && q.Limit > 0 && len(points) >= q.Limit {
			break
		}
	}
	return points, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func parcelToAPI(p *carrier.Parcel) Shipment {
	s := Shipment{
		ReferenceID: p.Reference,
		Sender:      addressToAPI(p.Sender),
		Recipient:   addressToAPI(p.Recipient),
		WeightGrams: int(math.Round(p.WeightKG * 1000)),
		Remark:      p.Comment,
	}
	if p.PickupPointID != "" {
		s.DeliveryMode = "DELIVERY_POINT"
		s.DeliveryPointID = p.PickupPointID
	} else {
		s.DeliveryMode = "HOME"
	}
	if p.COD != nil {
		s.CODValue = p.COD.Amount
	}
	return s
}

func addressToAPI(a carrier.Address) MPLAddress {
	return MPLAddress{
		ContactName: a.Name,
		Address:     a.Street,
		City:        a.City,
		PostCode:    a.PostCode,
		CountryCode: a.Country,
		PhoneNumber: a.Phone,
		Email:       a.Email,
	}
}

func labelFormatToAPI(f carrier.LabelFormat) string {
	switch f {
	case carrier.LabelZPL:
		return "ZPL"
	default:
		return "PDF"
	}
}

func shipmentResultToResource(r ShipmentResult) carrier.Resource {
	if r.TrackingNumber != "" && len(r.Errors) == 0 {
		return carrier.CreatedResource(r.TrackingNumber, r)
	}
	errs := make([]carrier.ValidationError, 0, len(r.Errors))
	for _, se := range r.Errors {
		errs = append(errs, carrier.ValidationError{
			Field:   se.Field,
			Code:    se.Code,
			Message: se.Message,
		})
	}
	return carrier.FailedResource(r, errs...)
}

func labelResultToResource(l LabelResult) carrier.Resource {
	if l.Label != "" && len(l.Errors) == 0 {
		return carrier.CreatedResource(l.TrackingNumber, l)
	}
	errs := make([]carrier.ValidationError, 0, len(l.Errors))
	for _, se := range l.Errors {
		errs = append(errs, carrier.ValidationError{
			Field:   se.Field,
			Code:    se.Code,
			Message: se.Message,
		})
	}
	return carrier.FailedResource(l, errs...)
}

func eventToCanonical(ev TrackingEvent) carrier.TrackingEvent {
	ts, _ := time.Parse(time.RFC3339, ev.Time)
	return carrier.TrackingEvent{
		Timestamp:   ts,
		Status:      mapStatus(ev.Code),
		Description: ev.Description,
		Location:    ev.PostOffice,
		CarrierCode: ev.Code,
	}
}

func deliveryPointToCanonical(dp DeliveryPoint) carrier.PickupPoint {
	return carrier.PickupPoint{
		ID:        dp.ID,
		Carrier:   carrierName,
		Name:      dp.Name,
		Street:    dp.Address,
		City:      dp.City,
		PostCode:  dp.PostCode,
		Country:   "HU",
		Latitude:  dp.Latitude,
		Longitude: dp.Longitude,
		Available: dp.Open,
	}
}

// mapStatus maps MPL event codes to normalized statuses.
func mapStatus(code string) carrier.ShipmentStatus {
	switch code {
	case "FELADAS":
		return carrier.StatusCreated
	case "FELVETEL":
		return carrier.StatusPickedUp
	case "SZALLITAS", "ERKEZTETES":
		return carrier.StatusInTransit
	case "KEZBESITES_ALATT":
		return carrier.StatusOutForDelivery
	case "ATVEHETO":
		return carrier.StatusAtPickupPoint
	case "KEZBESITES":
		return carrier.StatusDelivered
	case "VISSZAKULDES":
		return carrier.StatusReturned
	case "TOROLVE":
		return carrier.StatusCancelled
	default:
		return carrier.StatusException
	}
}
