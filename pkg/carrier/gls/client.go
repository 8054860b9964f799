// Package gls provides integration with the MyGLS shipping API.
package gls

import (
	"context"
	"strconv"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "gls"

const (
	productionBaseURL = "https://api.mygls.hu/ParcelService.svc/json"
	testBaseURL       = "https://api.test.mygls.hu/ParcelService.svc/json"
)

// Config holds GLS configuration.
type Config struct {
	Username string
	Password string
	BaseURL  string // overrides the resolved endpoint when set
	TestMode bool
	UseMock  bool
}

func (c Config) resolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.TestMode {
		return testBaseURL
	}
	return productionBaseURL
}

// Client is the GLS carrier adapter.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new GLS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:  cfg.resolveBaseURL(),
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  30 * time.Second,
			Logger:   logger,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new GLS client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = otel.Tracer("shipbridge/gls")
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

// CreateParcel registers one parcel, surfacing any failure as a
// taxonomy error.
func (c *Client) CreateParcel(ctx context.Context, p *carrier.Parcel) (*carrier.Resource, error) {
	ctx, span := c.tracer.Start(ctx, "gls.create_parcel")
	defer span.End()

	batch, cerr := c.prepareParcels(ctx, []*carrier.Parcel{p})
	if cerr != nil {
		return nil, cerr
	}
	return carrier.SingleResult(carrierName, batch)
}

// CreateParcels registers parcels via one PrepareLabels call.
func (c *Client) CreateParcels(ctx context.Context, parcels []*carrier.Parcel) (*carrier.BatchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "gls.create_parcels")
	defer span.End()

	if len(parcels) == 0 {
		return carrier.Aggregate(nil, nil), nil
	}

	batch, cerr := c.prepareParcels(ctx, parcels)
	if cerr != nil {
		c.logger.Ctx(ctx).Error("GLS batch call failed",
			zap.String("category", cerr.Category.String()),
			zap.Error(cerr),
		)
		return carrier.FailAll(len(parcels), cerr), nil
	}
	return batch, nil
}

func (c *Client) prepareParcels(ctx context.Context, parcels []*carrier.Parcel) (*carrier.BatchResponse, *carrier.Error) {
	c.logger.Ctx(ctx).Info("Preparing GLS parcels",
		zap.Int("parcel_count", len(parcels)),
	)

	// Nil elements (a JSON null in the request array decodes to one) are
	// failed up front; only real parcels go into the PrepareLabels call.
	indexed := make([]carrier.IndexedResource, 0, len(parcels))
	req := &PrepareLabelsRequest{
		ParcelList: make([]GLSParcel, 0, len(parcels)),
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
		req.ParcelList = append(req.ParcelList, parcelToAPI(p))
		sent = append(sent, i)
	}
	if len(req.ParcelList) == 0 {
		return carrier.AggregateIndexed(indexed, nil), nil
	}

	resp, err := c.apiClient.PrepareLabels(ctx, req)
	if err != nil {
		return nil, translate(err)
	}

	// GLS keys per-item outcomes by client reference; restore input
	// order explicitly rather than trusting response order.
	byRef := make(map[string]ParcelInfo, len(resp.ParcelInfoList))
	for _, info := range resp.ParcelInfoList {
		byRef[info.ClientReference] = info
	}

	for j, idx := range sent {
		info, ok := byRef[parcels[idx].Reference]
		if !ok && j < len(resp.ParcelInfoList) {
			info, ok = resp.ParcelInfoList[j], true
		}
		if !ok {
			indexed = append(indexed, carrier.IndexedResource{
				Index: idx,
				Resource: carrier.FailedResource(nil, carrier.ValidationError{
					Message: "no result returned for item",
				}),
			})
			continue
		}
		indexed = append(indexed, carrier.IndexedResource{Index: idx, Resource: parcelInfoToResource(info)})
	}
	return carrier.AggregateIndexed(indexed, resp), nil
}

// CreateLabels renders labels for prepared parcels.
func (c *Client) CreateLabels(ctx context.Context, req *carrier.LabelRequest) (*carrier.BatchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "gls.create_labels")
	defer span.End()

	if len(req.ParcelIDs) == 0 {
		return carrier.Aggregate(nil, nil), nil
	}

	ids := make([]int64, 0, len(req.ParcelIDs))
	results := make([]carrier.Resource, len(req.ParcelIDs))
	for i, raw := range req.ParcelIDs {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			results[i] = carrier.FailedResource(nil, carrier.ValidationError{
				Field:   "parcelId",
				Message: "not a GLS parcel id: " + raw,
			})
			continue
		}
		ids = append(ids, id)
	}

	resp, err := c.apiClient.GetPrintedLabels(ctx, &PrintedLabelsRequest{
		ParcelIDList: ids,
	})
	if err != nil {
		return carrier.FailAll(len(req.ParcelIDs), translate(err)), nil
	}

	byID := make(map[int64]PrintedLabel, len(resp.Labels))
	for _, l := range resp.Labels {
		byID[l.ParcelID] = l
	}

	for i, raw := range req.ParcelIDs {
		if results[i].Status != "" {
			continue // already failed on parse
		}
		id, _ := strconv.ParseInt(raw, 10, 64)
		label, ok := byID[id]
		if !ok {
			results[i] = carrier.FailedResource(nil, carrier.ValidationError{
				Message: "no label returned for item",
			})
			continue
		}
		results[i] = printedLabelToResource(label)
	}
	return carrier.Aggregate(results, resp), nil
}

// Track returns tracking events for a GLS parcel number.
func (c *Client) Track(ctx context.Context, parcelID string) ([]carrier.TrackingEvent, error) {
	ctx, span := c.tracer.Start(ctx, "gls.track")
	defer span.End()

	resp, err := c.apiClient.GetParcelStatuses(ctx, parcelID)
	if err != nil {
		return nil, carrier.AsError(carrierName, err)
	}

	events := make([]carrier.TrackingEvent, len(resp.ParcelStatusList))
	for i, st := range resp.ParcelStatusList {
		events[i] = statusToEvent(st)
	}
	return events, nil
}

// PickupPoints lists active GLS parcel shops matching the query.
func (c *Client) PickupPoints(ctx context.Context, q *carrier.PickupPointQuery) ([]carrier.PickupPoint, error) {
	ctx, span := c.tracer.Start(ctx, "gls.pickup_points")
	defer span.End()

	shops, err := c.apiClient.ListParcelShops(ctx, "HU")
	if err != nil {
		return nil, carrier.AsError(carrierName, err)
	}

	points := make([]carrier.PickupPoint, 0, len(shops))
	for _, s := range shops {
		if q != nil {
			if q.PostCode != "" && s.ZipCode != q.PostCode {
				continue
			}
			if q.City != "" && s.City != q.City {
				continue
			}
		}
		points = append(points, shopToPickupPoint(s))
		if q != nil && q.Limit > 0 && len(points) >= q.Limit {
			break
		}
	}
	return points, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func parcelToAPI(p *carrier.Parcel) GLSParcel {
	gp := GLSParcel{
		ClientReference: p.Reference,
		PickupAddress:   addressToAPI(p.Sender),
		DeliveryAddress: addressToAPI(p.Recipient),
		Content:         p.Comment,
		Count:           1,
	}
	if p.COD != nil {
		gp.CODAmount = p.COD.Amount
		gp.CODCurrency = p.COD.Currency
	}
	if p.PickupPointID != "" {
		gp.ServiceList = append(gp.ServiceList, Service{
			Code:         "PSD",
			PSDParameter: &PSD{StringValue: p.PickupPointID},
		})
	}
	return gp
}

func addressToAPI(a carrier.Address) GLSAddress {
	return GLSAddress{
		Name:           a.Name,
		Street:         a.Street,
		City:           a.City,
		ZipCode:        a.PostCode,
		CountryIsoCode: a.Country,
		ContactName:    a.Name,
		ContactPhone:   a.Phone,
		ContactEmail:   a.Email,
	}
}

func parcelInfoToResource(info ParcelInfo) carrier.Resource {
	if info.ParcelID != 0 && len(info.ParcelInfoErrorList) == 0 {
		return carrier.CreatedResource(strconv.FormatInt(info.ParcelID, 10), info)
	}
	errs := make([]carrier.ValidationError, 0, len(info.ParcelInfoErrorList))
	for _, ie := range info.ParcelInfoErrorList {
		errs = append(errs, carrier.ValidationError{
			Field:   ie.Field,
			Code:    ie.ErrorCode,
			Message: ie.ErrorDescription,
		})
	}
	return carrier.FailedResource(info, errs...)
}

func printedLabelToResource(l PrintedLabel) carrier.Resource {
	if l.Data != "" && len(l.Errors) == 0 {
		return carrier.CreatedResource(strconv.FormatInt(l.ParcelID, 10), l)
	}
	errs := make([]carrier.ValidationError, 0, len(l.Errors))
	for _, ie := range l.Errors {
		errs = append(errs, carrier.ValidationError{
			Field:   ie.Field,
			Code:    ie.ErrorCode,
			Message: ie.ErrorDescription,
		})
	}
	return carrier.FailedResource(l, errs...)
}

func statusToEvent(st ParcelStatus) carrier.TrackingEvent {
	ts, _ := time.Parse(time.RFC3339, st.StatusDate)
	return carrier.TrackingEvent{
		Timestamp:   ts,
		Status:      mapStatus(st.StatusCode),
		Description: st.StatusDescription,
		Location:    st.DepotCity,
		CarrierCode: st.StatusCode,
	}
}

func shopToPickupPoint(s ParcelShop) carrier.PickupPoint {
	return carrier.PickupPoint{
		ID:        s.ShopID,
		Carrier:   carrierName,
		Name:      s.Name,
		Street:    s.Address,
		City:      s.City,
		PostCode:  s.ZipCode,
		Country:   s.CountryCode,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Available: s.IsActive,
	}
}

// mapStatus maps GLS depot status codes to normalized statuses.
func mapStatus(code string) carrier.ShipmentStatus {
	switch code {
	case "01":
		return carrier.StatusPickedUp
	case "02", "03":
		return carrier.StatusInTransit
	case "04":
		return carrier.StatusOutForDelivery
	case "05":
		return carrier.StatusDelivered
	case "06":
		return carrier.StatusAtPickupPoint
	case "11", "12":
		return carrier.StatusReturned
	default:
		return carrier.StatusException
	}
}
