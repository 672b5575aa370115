// Package googlemaps provides a Distance Matrix API client used as the live
// travel-data source at tiers 2 and 3.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/provider/resilience"
)

const (
	// ProviderName identifies this distance provider.
	ProviderName = "google-distance-matrix"

	// DefaultBaseURL is the Google Maps API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout bounds each matrix request.
	DefaultTimeout = 5 * time.Second
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Distance Matrix client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

	// BaseURL overrides the API base URL, mainly for tests.
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a resilient client
	// with circuit breaker and retries is created.
	HTTPClient HTTPDoer

	// Timeout is the per-request timeout (default: 5s).
	Timeout time.Duration

	// Registry tracks this provider's health when set.
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Distance Matrix API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Distance Matrix client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// Travel queries the Distance Matrix API for a single origin/destination
// pair. Any transport failure, non-OK status or malformed payload is
// reported as ErrProviderUnavailable so the caller can downgrade.
func (c *Client) Travel(ctx context.Context, origin, dest distance.Coordinate, departAt time.Time) (distance.Result, error) {
	if err := distance.ValidateCoordinate(origin); err != nil {
		return distance.Result{}, err
	}
	if err := distance.ValidateCoordinate(dest); err != nil {
		return distance.Result{}, err
	}

	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destinations", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	params.Set("mode", "driving")
	params.Set("units", "metric")
	params.Set("key", c.apiKey)
	if !departAt.IsZero() && departAt.After(time.Now()) {
		// departure_time in the past is rejected by the API.
		params.Set("departure_time", strconv.FormatInt(departAt.Unix(), 10))
	}

	reqURL := c.baseURL + "/maps/api/distancematrix/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return distance.Result{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach distance matrix service",
			Err:      distance.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "failed to read distance matrix response",
			Err:      distance.ErrProviderUnavailable,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("distance matrix service returned status %d", resp.StatusCode),
			Err:      distance.ErrProviderUnavailable,
		}
	}

	var matrix matrixResponse
	if err := json.Unmarshal(body, &matrix); err != nil {
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_PAYLOAD",
			Message:  "failed to decode distance matrix response",
			Err:      distance.ErrProviderUnavailable,
		}
	}

	return c.toResult(&matrix)
}

func (c *Client) toResult(matrix *matrixResponse) (distance.Result, error) {
	if matrix.Status != statusOK {
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     matrix.Status,
			Message:  vendorMessage(matrix),
			Err:      distance.ErrProviderUnavailable,
		}
	}

	if len(matrix.Rows) == 0 || len(matrix.Rows[0].Elements) == 0 {
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     "EMPTY_MATRIX",
			Message:  "distance matrix response contained no elements",
			Err:      distance.ErrProviderUnavailable,
		}
	}

	element := matrix.Rows[0].Elements[0]
	switch element.Status {
	case elementStatusOK:
		// fall through
	case elementStatusZeroRoute, elementStatusNotFound:
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     element.Status,
			Message:  "no drivable route between the given points",
			Err:      distance.ErrNoRoute,
		}
	default:
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     element.Status,
			Message:  "distance matrix element not usable",
			Err:      distance.ErrProviderUnavailable,
		}
	}

	if element.Distance == nil || element.Duration == nil {
		return distance.Result{}, &distance.Error{
			Provider: ProviderName,
			Code:     "MISSING_FIELDS",
			Message:  "distance matrix element missing distance or duration",
			Err:      distance.ErrProviderUnavailable,
		}
	}

	duration := element.Duration
	if element.DurationInTraffic != nil {
		duration = element.DurationInTraffic
	}

	return distance.Result{
		DistanceKm:    float64(element.Distance.Value) / 1000,
		TravelMinutes: float64(duration.Value) / 60,
	}, nil
}

func vendorMessage(matrix *matrixResponse) string {
	if matrix.ErrorMessage != "" {
		return matrix.ErrorMessage
	}
	switch matrix.Status {
	case statusOverQueryLimit:
		return "distance matrix quota exceeded"
	case statusRequestDenied:
		return "distance matrix access denied - check API key configuration"
	case statusInvalidRequest:
		return "distance matrix request rejected"
	case statusUnknownError:
		return "distance matrix service reported an internal error"
	default:
		return "distance matrix status " + matrix.Status
	}
}
