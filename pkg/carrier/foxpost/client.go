// Package foxpost provides integration with the Foxpost parcel locker API.
package foxpost

import (
	"context"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "foxpost"

const (
	productionBaseURL = "https://webapi.foxpost.hu/api"
	testBaseURL       = "https://webapi-test.foxpost.hu/api"
)

// Config holds Foxpost configuration.
type Config struct {
	APIKey   string
	Username string
	Password string
	BaseURL  string // overrides the resolved endpoint when set
	TestMode bool   // selects the test endpoint when BaseURL is empty
	UseMock  bool   // when true, uses the mock API client
}

// resolveBaseURL picks the endpoint for the configured mode.
func (c Config) resolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.TestMode {
		return testBaseURL
	}
	return productionBaseURL
}

// Client is the Foxpost carrier adapter. It implements carrier.Carrier
// and delegates API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Foxpost client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:  cfg.resolveBaseURL(),
			APIKey:   cfg.APIKey,
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  30 * time.Second,
			Logger:   logger,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Foxpost client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = otel.Tracer("shipbridge/foxpost")
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

// CreateParcel registers one parcel. It shares the batch mapping but
// re-throws failures as taxonomy errors: transport failures keep their
// translated category, item rejections surface as validation errors.
func (c *Client) CreateParcel(ctx context.Context, p *carrier.Parcel) (*carrier.Resource, error) {
	ctx, span := c.tracer.Start(ctx, "foxpost.create_parcel")
	defer span.End()

	batch, cerr := c.createParcels(ctx, []*carrier.Parcel{p})
	if cerr != nil {
		return nil, cerr
	}
	return carrier.SingleResult(carrierName, batch)
}

// CreateParcels registers parcels via one batched API call. Data-level
// rejections become failed results; a transport failure for the whole
// call degrades to an all-failed response.
func (c *Client) CreateParcels(ctx context.Context, parcels []*carrier.Parcel) (*carrier.BatchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "foxpost.create_parcels")
	defer span.End()

	if len(parcels) == 0 {
		return carrier.Aggregate(nil, nil), nil
	}

	batch, cerr := c.createParcels(ctx, parcels)
	if cerr != nil {
		c.logger.Ctx(ctx).Error("Foxpost batch call failed",
			zap.String("category", cerr.Category.String()),
			zap.Error(cerr),
		)
		return carrier.FailAll(len(parcels), cerr), nil
	}
	return batch, nil
}

// createParcels performs the batched carrier call and builds per-item
// results. The transport failure is returned untranslated into the
// batch shape so both entry points can apply their own policy.
func (c *Client) createParcels(ctx context.Context, parcels []*carrier.Parcel) (*carrier.BatchResponse, *carrier.Error) {
	c.logger.Ctx(ctx).Info("Creating Foxpost parcels",
		zap.Int("parcel_count", len(parcels)),
	)

	// Nil elements (a JSON null in the request array decodes to one) are
	// failed up front; only real parcels are sent to the carrier.
	indexed := make([]carrier.IndexedResource, 0, len(parcels))
	req := make([]ParcelRequest, 0, len(parcels))
	inputIndex := make([]int, 0, len(parcels))
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
		req = append(req, parcelToAPI(p))
		inputIndex = append(inputIndex, i)
	}
	if len(req) == 0 {
		return carrier.AggregateIndexed(indexed, nil), nil
	}

	resp, err := c.apiClient.CreateParcels(ctx, req)
	if err != nil {
		return nil, translate(err)
	}

	for j, idx := range inputIndex {
		var res carrier.Resource
		if j >= len(resp.Parcels) {
			// Carrier returned fewer entries than items sent.
			res = carrier.FailedResource(nil, carrier.ValidationError{
				Message: "no result returned for item",
			})
		} else {
			res = parcelResultToResource(resp.Parcels[j])
		}
		indexed = append(indexed, carrier.IndexedResource{Index: idx, Resource: res})
	}
	return carrier.AggregateIndexed(indexed, resp), nil
}

// CreateLabels renders labels for created parcels.
func (c *Client) CreateLabels(ctx context.Context, req *carrier.LabelRequest) (*carrier.BatchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "foxpost.create_labels")
	defer span.End()

	if len(req.ParcelIDs) == 0 {
		return carrier.Aggregate(nil, nil), nil
	}

	format := string(req.Format)
	if format == "" {
		format = "pdf"
	}

	resp, err := c.apiClient.CreateLabels(ctx, &LabelsRequest{
		ClFoxIDs: req.ParcelIDs,
		Format:   format,
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

// Track returns tracking events for a Foxpost parcel ID.
func (c *Client) Track(ctx context.Context, parcelID string) ([]carrier.TrackingEvent, error) {
	ctx, span := c.tracer.Start(ctx, "foxpost.track")
	defer span.End()

	resp, err := c.apiClient.GetTracking(ctx, parcelID)
	if err != nil {
		return nil, carrier.AsError(carrierName, err)
	}

	events := make([]carrier.TrackingEvent, len(resp.Traces))
	for i, tr := range resp.Traces {
		events[i] = traceToEvent(tr)
	}
	return events, nil
}

// PickupPoints lists operational lockers matching the query.
func (c *Client) PickupPoints(ctx context.Context, q *carrier.PickupPointQuery) ([]carrier.PickupPoint, error) {
	ctx, span := c.tracer.Start(ctx, "foxpost.pickup_points")
	defer span.End()

	apms, err := c.apiClient.ListAPMs(ctx)
	if err != nil {
		return nil, carrier.AsError(carrierName, err)
	}

	points := make([]carrier.PickupPoint, 0, len(apms))
	for _, a := range apms {
		if q != nil {
			if q.PostCode != "" && a.Zip != q.PostCode {
				continue
			}
			if q.City != "" && a.City != q.City {
				continue
			}
		}
		points = append(points, apmToPickupPoint(a))
		if q != nil && q.Limit > 0 && len(points) >= q.Limit {
			break
		}
	}
	return points, nil
}

// ============================================================================
// Conversion helpers: carrier models -> API models
// ============================================================================

func parcelToAPI(p *carrier.Parcel) ParcelRequest {
	req := ParcelRequest{
		RefCode:        p.Reference,
		RecipientName:  p.Recipient.Name,
		RecipientPhone: p.Recipient.Phone,
		RecipientEmail: p.Recipient.Email,
		Size:           string(p.Size),
		Comment:        p.Comment,
	}
	if p.PickupPointID != "" {
		req.Destination = p.PickupPointID
	} else {
		req.Address = p.Recipient.Street
		req.City = p.Recipient.City
		req.Zip = p.Recipient.PostCode
	}
	if p.COD != nil {
		req.COD = p.COD.Amount
	}
	return req
}

// ============================================================================
// Conversion helpers: API models -> carrier models
// ============================================================================

func parcelResultToResource(r ParcelResult) carrier.Resource {
	if r.ClFoxID != "" && len(r.Errors) == 0 {
		return carrier.CreatedResource(r.ClFoxID, r)
	}
	errs := make([]carrier.ValidationError, 0, len(r.Errors))
	for _, fe := range r.Errors {
		errs = append(errs, carrier.ValidationError{
			Field:   fe.Field,
			Code:    fe.Code,
			Message: fe.Message,
		})
	}
	return carrier.FailedResource(r, errs...)
}

func labelResultToResource(l LabelResult) carrier.Resource {
	if l.Data != "" && len(l.Errors) == 0 {
		return carrier.CreatedResource(l.ClFoxID, l)
	}
	errs := make([]carrier.ValidationError, 0, len(l.Errors))
	for _, fe := range l.Errors {
		errs = append(errs, carrier.ValidationError{
			Field:   fe.Field,
			Code:    fe.Code,
			Message: fe.Message,
		})
	}
	return carrier.FailedResource(l, errs...)
}

func traceToEvent(tr Trace) carrier.TrackingEvent {
	ts, _ := time.Parse(time.RFC3339, tr.StatusDate)
	return carrier.TrackingEvent{
		Timestamp:   ts,
		Status:      mapStatus(tr.Status),
		Description: tr.ShortName,
		Location:    tr.Depot,
		CarrierCode: tr.Status,
	}
}

func apmToPickupPoint(a APM) carrier.PickupPoint {
	return carrier.PickupPoint{
		ID:        a.PlaceID,
		Carrier:   carrierName,
		Name:      a.Name,
		Street:    a.Address,
		City:      a.City,
		PostCode:  a.Zip,
		Country:   "HU",
		Latitude:  a.GeoLat,
		Longitude: a.GeoLng,
		Available: a.Operational,
	}
}

// mapStatus maps Foxpost trace codes to normalized statuses.
func mapStatus(status string) carrier.ShipmentStatus {
	switch status {
	case "CREATE":
		return carrier.StatusCreated
	case "OPERIN", "COLLECTED":
		return carrier.StatusPickedUp
	case "HDSENT", "OPEROUT", "SORTIN":
		return carrier.StatusInTransit
	case "APMIN", "RECEIVE":
		return carrier.StatusAtPickupPoint
	case "HDOUT":
		return carrier.StatusOutForDelivery
	case "APMOUT", "DELIVERED", "HDRECEIVE":
		return carrier.StatusDelivered
	case "RETURN", "BACKSENT":
		return carrier.StatusReturned
	case "DELETE":
		return carrier.StatusCancelled
	default:
		return carrier.StatusException
	}
}
