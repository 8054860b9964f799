package mpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	baseURL    string
	tokens     *tokenSource
	httpClient *http.Client
	logger     *otelzap.Logger
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Logger       *otelzap.Logger
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	httpClient := &http.Client{Timeout: timeout}

	return &HTTPAPIClient{
		baseURL:    cfg.BaseURL,
		tokens:     newTokenSource(cfg.TokenURL, cfg.ClientID, cfg.ClientSecret, httpClient),
		httpClient: httpClient,
		logger:     logger,
	}
}

// CreateShipments registers shipments via POST /shipments.
func (c *HTTPAPIClient) CreateShipments(ctx context.Context, req *ShipmentsRequest) (*ShipmentsResponse, error) {
	var result ShipmentsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/shipments", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLabels renders labels via POST /labels.
func (c *HTTPAPIClient) GetLabels(ctx context.Context, req *LabelsRequest) (*LabelsResponse, error) {
	var result LabelsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/labels", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTracking fetches the event history via GET /tracking/{trackingNumber}.
func (c *HTTPAPIClient) GetTracking(ctx context.Context, trackingNumber string) (*TrackingResponse, error) {
	path := "/tracking/" + url.PathEscape(trackingNumber)

	var result TrackingResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDeliveryPoints fetches delivery points via GET /deliverypoints.
func (c *HTTPAPIClient) ListDeliveryPoints(ctx context.Context, postCode string) ([]DeliveryPoint, error) {
	path := "/deliverypoints?postCode=" + url.QueryEscape(postCode)

	var result []DeliveryPoint
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// doJSON performs an authenticated request and decodes the response,
// translating every failure into a taxonomy error. Diagnostics are
// logged with redacted headers so the bearer token never appears in
// logs. A 401 invalidates the cached token so the next call refreshes.
func (c *HTTPAPIClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Ctx(ctx).Warn("MPL request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Any("headers", carrier.RedactHeaders(req.Header)),
			zap.Error(err),
		)
		return translate(&carrier.HTTPError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Ctx(ctx).Warn("MPL returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Any("headers", carrier.RedactHeaders(resp.Header)),
		)
		return translate(&carrier.HTTPError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       respBody,
		})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
