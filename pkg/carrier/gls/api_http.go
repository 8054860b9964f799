package gls

import (
	"bytes"
	"context"
	"crypto/sha512"
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
	baseURL      string
	username     string
	passwordHash []byte
	httpClient   *http.Client
	logger       *otelzap.Logger
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *otelzap.Logger
}

// NewHTTPAPIClient creates a new HTTP-based API client for production
// use. The account password is hashed once; only the SHA-512 digest is
// kept and sent, per the MyGLS auth scheme.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	digest := sha512.Sum512([]byte(cfg.Password))

	return &HTTPAPIClient{
		baseURL:      cfg.BaseURL,
		username:     cfg.Username,
		passwordHash: digest[:],
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// PrepareLabels registers parcels via POST /PrepareLabels.
func (c *HTTPAPIClient) PrepareLabels(ctx context.Context, req *PrepareLabelsRequest) (*PrepareLabelsResponse, error) {
	req.Username = c.username
	req.Password = c.passwordHash

	var result PrepareLabelsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/PrepareLabels", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPrintedLabels renders labels via POST /GetPrintedLabels.
func (c *HTTPAPIClient) GetPrintedLabels(ctx context.Context, req *PrintedLabelsRequest) (*PrintedLabelsResponse, error) {
	req.Username = c.username
	req.Password = c.passwordHash

	var result PrintedLabelsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/GetPrintedLabels", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetParcelStatuses fetches the status history via GET /GetParcelStatuses.
func (c *HTTPAPIClient) GetParcelStatuses(ctx context.Context, parcelNumber string) (*ParcelStatusesResponse, error) {
	path := "/GetParcelStatuses?parcelNumber=" + url.QueryEscape(parcelNumber)

	var result ParcelStatusesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListParcelShops fetches the shop network via GET /ParcelShops.
func (c *HTTPAPIClient) ListParcelShops(ctx context.Context, countryCode string) ([]ParcelShop, error) {
	path := "/ParcelShops?countryCode=" + url.QueryEscape(countryCode)

	var result []ParcelShop
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// doJSON performs a request and decodes the response, translating every
// failure into a taxonomy error. Diagnostics are logged with redacted
// headers; the hashed credential never appears in logs.
func (c *HTTPAPIClient) doJSON(ctx context.Context, method, path string, body, out any) error {
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

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Ctx(ctx).Warn("GLS request failed",
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
		c.logger.Ctx(ctx).Warn("GLS returned error status",
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
