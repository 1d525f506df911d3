package airquality

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
)

// ProviderOpenMeteo names the upstream in returned samples
const ProviderOpenMeteo = "open-meteo"

// DefaultBaseURL is the public Open-Meteo air-quality endpoint host
const DefaultBaseURL = "https://air-quality-api.open-meteo.com"

// Fetcher returns the newest usable sample for a location
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*models.AirSample, error)
}

// Client calls the Open-Meteo air-quality API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client; an empty baseURL uses DefaultBaseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a client using the given http.Client
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, httpClient: hc}
}

type hourlyResponse struct {
	Hourly struct {
		Time  []string   `json:"time"`
		PM25  []*float64 `json:"pm2_5"`
		Ozone []*float64 `json:"ozone"`
	} `json:"hourly"`
}

// Fetch requests hourly pm2_5 and ozone and keeps the latest slot with any value
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*models.AirSample, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("hourly", "pm2_5,ozone")
	q.Set("timezone", "auto")
	endpoint := c.baseURL + "/v1/air-quality?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Fetch("airquality.fetch", err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Fetch("airquality.fetch", err, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Fetch("airquality.fetch", nil, "HTTP %d", resp.StatusCode)
	}

	var payload hourlyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperr.Fetch("airquality.fetch", err, "failed to parse response")
	}

	return latestSample(payload)
}

func latestSample(payload hourlyResponse) (*models.AirSample, error) {
	h := payload.Hourly
	at := func(arr []*float64, i int) *float64 {
		if i < len(arr) {
			return arr[i]
		}
		return nil
	}

	for i := len(h.Time) - 1; i >= 0; i-- {
		pm, o3 := at(h.PM25, i), at(h.Ozone, i)
		if pm == nil && o3 == nil {
			continue
		}
		return &models.AirSample{
			Time:     h.Time[i],
			PM25:     pm,
			O3:       o3,
			Provider: ProviderOpenMeteo,
		}, nil
	}

	return nil, apperr.Fetch("airquality.fetch", nil, "no air quality data")
}
