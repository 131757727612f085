// Package fdsn implements the station-provider boundary against an FDSN
// station web service (fdsnws-station, text output). The rest of the system
// consumes only the normalized inventory records this client returns.
package fdsn

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/volcanoseis/nllgo/internal/inventory"
	"github.com/volcanoseis/nllgo/internal/nll"
)

const stationPath = "/fdsnws/station/1/query"

// Client queries an FDSN station service for station metadata. It implements
// nll.StationProvider.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithLogger attaches a diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the service rooted at baseURL, e.g.
// "https://service.iris.edu". A baseURL already pointing at a station query
// endpoint is used as-is.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stations fetches stations matching the query and returns them as
// normalized records. A 204 response means no matching stations and returns
// an empty slice; any other non-200 status is an error. Nothing is retried.
func (c *Client) Stations(ctx context.Context, q nll.StationQuery) ([]inventory.Station, error) {
	endpoint := c.baseURL
	if !strings.Contains(endpoint, "/fdsnws/") {
		endpoint += stationPath
	}

	params := url.Values{}
	params.Set("format", "text")
	params.Set("level", "station")
	params.Set("latitude", formatFloat(q.Lat))
	params.Set("longitude", formatFloat(q.Lon))
	params.Set("minradius", "0")
	params.Set("maxradius", formatFloat(q.RadiusDeg))
	if len(q.Networks) > 0 {
		params.Set("network", strings.Join(q.Networks, ","))
	}
	if len(q.Stations) > 0 {
		params.Set("station", strings.Join(q.Stations, ","))
	}
	if len(q.Channels) > 0 {
		params.Set("channel", strings.Join(q.Channels, ","))
	}
	if q.Start != "" {
		params.Set("starttime", q.Start)
	}
	if q.End != "" {
		params.Set("endtime", q.End)
	}

	reqURL := endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building station request: %w", err)
	}

	c.logger.Debug("querying station service", "url", reqURL)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying station service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, nil
	default:
		return nil, fmt.Errorf("station service returned %s", resp.Status)
	}

	stations, err := inventory.ParseFDSNText(resp.Body, c.logger)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("station service responded", "stations", len(stations))
	return stations, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
