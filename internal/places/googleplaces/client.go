// Package googleplaces fetches establishment opening hours from the Google
// Places API (text search + details), used by the tier-3 business-hours
// oracle.
package googleplaces

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

	"github.com/visitaroute/visitaroute/internal/places"
	"github.com/visitaroute/visitaroute/internal/provider/resilience"
)

const (
	// ProviderName identifies this places provider.
	ProviderName = "google-places"

	// DefaultBaseURL is the Google Maps API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 4 * time.Second
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Places client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

	// BaseURL overrides the API base URL, mainly for tests.
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a resilient client is created.
	HTTPClient HTTPDoer

	// Timeout is the per-request timeout (default: 4s).
	Timeout time.Duration

	// Registry tracks this provider's health when set.
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Places API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Places client.
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

// OpeningHours resolves an establishment by name and municipality, then
// fetches its weekly opening hours. Any failure maps to
// places.ErrProviderUnavailable so the oracle can answer unknown.
func (c *Client) OpeningHours(ctx context.Context, ref places.PlaceRef) (*places.WeekSchedule, error) {
	placeID, err := c.findPlace(ctx, ref)
	if err != nil {
		return nil, err
	}

	periods, err := c.placePeriods(ctx, placeID)
	if err != nil {
		return nil, err
	}

	schedule := periodsToSchedule(periods)
	if schedule == nil {
		// The place exists but publishes no hours; fall back to the
		// conventional hours for its kind rather than guessing.
		return places.DefaultKindHours(ref.Kind), nil
	}
	return schedule, nil
}

func (c *Client) findPlace(ctx context.Context, ref places.PlaceRef) (string, error) {
	params := url.Values{}
	params.Set("input", fmt.Sprintf("%s, %s, SC, Brazil", ref.Name, ref.Municipality))
	params.Set("inputtype", "textquery")
	params.Set("fields", "place_id")
	params.Set("key", c.apiKey)

	var result findPlaceResponse
	if err := c.get(ctx, "/maps/api/place/findplacefromtext/json", params, &result); err != nil {
		return "", err
	}

	if result.Status != "OK" || len(result.Candidates) == 0 {
		return "", &places.Error{
			Provider: ProviderName,
			Code:     result.Status,
			Message:  "no place candidate for " + ref.Name,
			Err:      places.ErrProviderUnavailable,
		}
	}

	return result.Candidates[0].PlaceID, nil
}

func (c *Client) placePeriods(ctx context.Context, placeID string) ([]period, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "opening_hours")
	params.Set("key", c.apiKey)

	var result detailsResponse
	if err := c.get(ctx, "/maps/api/place/details/json", params, &result); err != nil {
		return nil, err
	}

	if result.Status != "OK" {
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     result.Status,
			Message:  "place details lookup failed",
			Err:      places.ErrProviderUnavailable,
		}
	}

	return result.Result.OpeningHours.Periods, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &places.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach places service",
			Err:      places.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &places.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "failed to read places response",
			Err:      places.ErrProviderUnavailable,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return &places.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("places service returned status %d", resp.StatusCode),
			Err:      places.ErrProviderUnavailable,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &places.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_PAYLOAD",
			Message:  "failed to decode places response",
			Err:      places.ErrProviderUnavailable,
		}
	}

	return nil
}

// periodsToSchedule converts vendor periods into a WeekSchedule.
// Returns nil when no usable periods are present.
func periodsToSchedule(periods []period) *places.WeekSchedule {
	if len(periods) == 0 {
		return nil
	}

	var schedule places.WeekSchedule
	for day := range schedule.Days {
		schedule.Days[day] = places.DayHours{Closed: true}
	}

	matched := false
	for _, p := range periods {
		if p.Open == nil || p.Close == nil {
			continue
		}
		day := p.Open.Day
		if day < 0 || day > 6 {
			continue
		}
		open, okOpen := parseClockTime(p.Open.Time)
		closeAt, okClose := parseClockTime(p.Close.Time)
		if !okOpen || !okClose {
			continue
		}
		// Multiple periods per day (lunch breaks) collapse to the outer window.
		existing := schedule.Days[day]
		if existing.Closed {
			schedule.Days[day] = places.DayHours{OpenMinute: open, CloseMinute: closeAt}
		} else {
			if open < existing.OpenMinute {
				existing.OpenMinute = open
			}
			if closeAt > existing.CloseMinute {
				existing.CloseMinute = closeAt
			}
			schedule.Days[day] = existing
		}
		matched = true
	}

	if !matched {
		return nil
	}
	return &schedule
}

// parseClockTime parses the vendor "hhmm" clock format into minutes since
// midnight.
func parseClockTime(v string) (int, bool) {
	if len(v) != 4 {
		return 0, false
	}
	hours, err := strconv.Atoi(v[:2])
	if err != nil || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(v[2:])
	if err != nil || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
