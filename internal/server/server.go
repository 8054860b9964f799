// Package server exposes the dev-server HTTP routes that exercise the
// carrier adapters.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/parcelmesh/shipbridge/internal/store"
	"github.com/parcelmesh/shipbridge/internal/telemetry"
	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the shipping bridge.
type Server struct {
	port     int
	registry *carrier.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	store    *store.Store
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance. The store is optional; shipment
// recording is skipped when it is nil.
func New(cfg Config, registry *carrier.Registry, st *store.Store, logger *otelzap.Logger) *Server {
	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  telemetry.NewMetrics(),
		store:    st,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /carriers", s.handleCarriers)
	mux.HandleFunc("GET /shipments", s.handleShipments)

	mux.HandleFunc("POST /carriers/{name}/parcels", s.handleCreateParcels)
	mux.HandleFunc("POST /carriers/{name}/parcels/one", s.handleCreateParcel)
	mux.HandleFunc("POST /carriers/{name}/labels", s.handleCreateLabels)
	mux.HandleFunc("GET /carriers/{name}/tracking/{parcelId}", s.handleTrack)
	mux.HandleFunc("GET /carriers/{name}/pickup-points", s.handlePickupPoints)
	mux.HandleFunc("GET /pickup-points", s.handleAllPickupPoints)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"carriers": s.registry.Names()})
}

func (s *Server) handleShipments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"shipments": []store.ShipmentRecord{}})
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.store.ListShipments(r.Context(), r.URL.Query().Get("carrier"), limit)
	if err != nil {
		s.logger.Ctx(r.Context()).Error("Failed to list shipments", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to list shipments"})
		return
	}
	if records == nil {
		records = []store.ShipmentRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"shipments": records})
}

func (s *Server) handleCreateParcels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, ok := s.lookupCarrier(w, r)
	if !ok {
		return
	}

	var parcels []*carrier.Parcel
	if err := json.NewDecoder(r.Body).Decode(&parcels); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	batch, err := c.CreateParcels(r.Context(), parcels)
	if err != nil {
		s.writeCarrierError(w, r, c.Name(), "create_parcels", err)
		return
	}

	outcome := carrier.DeriveOutcome(batch)
	s.metrics.RecordRequest("create_parcels", c.Name(), outcome.String(), time.Since(start).Seconds())
	s.recordBatch(r.Context(), c.Name(), parcels, batch)

	writeJSON(w, outcome.HTTPStatus(), batch)
}

func (s *Server) handleCreateParcel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, ok := s.lookupCarrier(w, r)
	if !ok {
		return
	}

	var parcel carrier.Parcel
	if err := json.NewDecoder(r.Body).Decode(&parcel); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	res, err := c.CreateParcel(r.Context(), &parcel)
	if err != nil {
		s.writeCarrierError(w, r, c.Name(), "create_parcel", err)
		return
	}

	s.metrics.RecordRequest("create_parcel", c.Name(), "success", time.Since(start).Seconds())
	s.recordShipment(r.Context(), c.Name(), parcel.Reference, res.CarrierID, "created")

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateLabels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, ok := s.lookupCarrier(w, r)
	if !ok {
		return
	}

	var req carrier.LabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	batch, err := c.CreateLabels(r.Context(), &req)
	if err != nil {
		s.writeCarrierError(w, r, c.Name(), "create_labels", err)
		return
	}

	outcome := carrier.DeriveOutcome(batch)
	s.metrics.RecordRequest("create_labels", c.Name(), outcome.String(), time.Since(start).Seconds())

	writeJSON(w, outcome.HTTPStatus(), batch)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, ok := s.lookupCarrier(w, r)
	if !ok {
		return
	}

	events, err := c.Track(r.Context(), r.PathValue("parcelId"))
	if err != nil {
		s.writeCarrierError(w, r, c.Name(), "track", err)
		return
	}

	s.metrics.RecordRequest("track", c.Name(), "success", time.Since(start).Seconds())
	if events == nil {
		events = []carrier.TrackingEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handlePickupPoints(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, ok := s.lookupCarrier(w, r)
	if !ok {
		return
	}

	points, err := c.PickupPoints(r.Context(), pickupQuery(r))
	if err != nil {
		s.writeCarrierError(w, r, c.Name(), "pickup_points", err)
		return
	}

	s.metrics.RecordRequest("pickup_points", c.Name(), "success", time.Since(start).Seconds())
	if points == nil {
		points = []carrier.PickupPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pickupPoints": points})
}

func (s *Server) handleAllPickupPoints(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	points, errs := s.registry.AllPickupPoints(r.Context(), pickupQuery(r))
	for _, err := range errs {
		var cerr *carrier.Error
		if errors.As(err, &cerr) {
			s.metrics.RecordError(cerr.Carrier, cerr.Category.String())
		}
		s.logger.Ctx(r.Context()).Warn("Pickup point fan-out partial failure", zap.Error(err))
	}

	s.metrics.RecordRequest("pickup_points", "all", "success", time.Since(start).Seconds())
	if points == nil {
		points = []carrier.PickupPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pickupPoints": points})
}

// ============================================================================
// Helpers
// ============================================================================

type errorBody struct {
	Error             string `json:"error"`
	Category          string `json:"category,omitempty"`
	CarrierCode       string `json:"carrierCode,omitempty"`
	Retryable         bool   `json:"retryable"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

func (s *Server) lookupCarrier(w http.ResponseWriter, r *http.Request) (carrier.Carrier, bool) {
	name := r.PathValue("name")
	c, err := s.registry.Get(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown carrier: " + name})
		return nil, false
	}
	return c, true
}

// writeCarrierError maps a taxonomy error category onto an HTTP status
// and JSON body. Rate-limited responses echo the Retry-After header.
func (s *Server) writeCarrierError(w http.ResponseWriter, r *http.Request, carrierName, operation string, err error) {
	var cerr *carrier.Error
	if !errors.As(err, &cerr) {
		cerr = carrier.AsError(carrierName, err)
	}

	s.metrics.RecordRequest(operation, carrierName, "error", 0)
	s.metrics.RecordError(carrierName, cerr.Category.String())
	s.logger.Ctx(r.Context()).Warn("Carrier operation failed",
		zap.String("operation", operation),
		zap.String("carrier", carrierName),
		zap.String("category", cerr.Category.String()),
		zap.Error(cerr),
	)

	body := errorBody{
		Error:       cerr.Message,
		Category:    cerr.Category.String(),
		CarrierCode: cerr.CarrierCode,
		Retryable:   cerr.Retryable(),
	}
	if cerr.Category == carrier.CategoryRateLimit {
		seconds := int(cerr.RetryAfter.Seconds())
		body.RetryAfterSeconds = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	writeJSON(w, statusForCategory(cerr.Category), body)
}

// statusForCategory maps taxonomy categories onto HTTP statuses for
// single-item operations. The switch is exhaustive over the closed set.
func statusForCategory(cat carrier.Category) int {
	switch cat {
	case carrier.CategoryValidation:
		return http.StatusBadRequest
	case carrier.CategoryAuth:
		return http.StatusUnauthorized
	case carrier.CategoryRateLimit:
		return http.StatusTooManyRequests
	case carrier.CategoryTransient:
		return http.StatusBadGateway
	case carrier.CategoryPermanent:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func pickupQuery(r *http.Request) *carrier.PickupPointQuery {
	q := &carrier.PickupPointQuery{
		PostCode: r.URL.Query().Get("postCode"),
		City:     r.URL.Query().Get("city"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.Limit = n
		}
	}
	return q
}

// recordBatch persists per-item creation outcomes, best-effort.
func (s *Server) recordBatch(ctx context.Context, carrierName string, parcels []*carrier.Parcel, batch *carrier.BatchResponse) {
	if s.store == nil {
		return
	}
	for i, res := range batch.Results {
		status := "failed"
		if res.Succeeded() {
			status = "created"
		}
		reference := ""
		if i < len(parcels) && parcels[i] != nil {
			reference = parcels[i].Reference
		}
		s.recordShipment(ctx, carrierName, reference, res.CarrierID, status)
	}
}

func (s *Server) recordShipment(ctx context.Context, carrierName, reference, carrierID, status string) {
	if s.store == nil {
		return
	}
	if _, err := s.store.RecordShipment(ctx, store.ShipmentRecord{
		Carrier:   carrierName,
		Reference: reference,
		CarrierID: carrierID,
		Status:    status,
	}); err != nil {
		s.logger.Ctx(ctx).Warn("Failed to record shipment", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
