package foxpost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	baseURL    string
	apiKey     string
	username   string
	password   string
	httpClient *http.Client
	logger     *otelzap.Logger
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL  string
	APIKey   string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *otelzap.Logger
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

	return &HTTPAPIClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// CreateParcels registers parcels via POST /parcel.
func (c *HTTPAPIClient) CreateParcels(ctx context.Context, req []ParcelRequest) (*ParcelsResponse, error) {
	var result ParcelsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/parcel", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateLabels renders labels via POST /label.
func (c *HTTPAPIClient) CreateLabels(ctx context.Context, req *LabelsRequest) (*LabelsResponse, error) {
	var result LabelsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/label", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTracking fetches traces via GET /tracking/{clFoxId}.
func (c *HTTPAPIClient) GetTracking(ctx context.Context, clFoxID string) (*TrackingResponse, error) {
	var result TrackingResponse
	path := fmt.Sprintf("/tracking/%s", clFoxID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListAPMs fetches the locker network via GET /apms.
func (c *HTTPAPIClient) ListAPMs(ctx context.Context) ([]APM, error) {
	var result []APM
	if err := c.doJSON(ctx, http.MethodGet, "/apms", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// doJSON performs a request and decodes the response, translating every
// failure into a taxonomy error. Response diagnostics are logged with
// redacted headers only.
func (c *HTTPAPIClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-Key", c.apiKey)
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Ctx(ctx).Warn("Foxpost request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Any("headers", carrier.RedactHeaders(req.Header)),
			zap.Error(err),
		)
		return translate(&carrier.HTTPError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Ctx(ctx).Warn("Foxpost returned error status",
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
