package fdsn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volcanoseis/nllgo/internal/nll"
	"github.com/volcanoseis/nllgo/internal/testutil"
)

const fdsnBody = `#Network|Station|Latitude|Longitude|Elevation|SiteName|StartTime|EndTime
UW|VT01|46.200000|-122.180000|1500.0|Summit Station|2010-01-01|
UW|VT02|46.250000|-122.200000|1200.0|North Flank|2012-06-15|
`

func TestClient_Stations(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			gotQuery[k] = v[0]
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fdsnBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithLogger(testutil.NewTestLogger(t)))
	stations, err := c.Stations(context.Background(), nll.StationQuery{
		Lat:       46.2,
		Lon:       -122.18,
		RadiusDeg: 0.27,
		Networks:  []string{"UW"},
		Channels:  []string{"BHZ", "EHZ"},
		Start:     "2020-01-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "/fdsnws/station/1/query", gotPath)
	assert.Equal(t, "text", gotQuery["format"])
	assert.Equal(t, "station", gotQuery["level"])
	assert.Equal(t, "46.2", gotQuery["latitude"])
	assert.Equal(t, "-122.18", gotQuery["longitude"])
	assert.Equal(t, "0", gotQuery["minradius"])
	assert.Equal(t, "0.27", gotQuery["maxradius"])
	assert.Equal(t, "UW", gotQuery["network"])
	assert.Equal(t, "BHZ,EHZ", gotQuery["channel"])
	assert.Equal(t, "2020-01-01", gotQuery["starttime"])
	_, hasStation := gotQuery["station"]
	assert.False(t, hasStation)

	require.Len(t, stations, 2)
	assert.Equal(t, "VT01", stations[0].Code)
	assert.Equal(t, 1500.0, stations[0].Elev)
}

func TestClient_Stations_FullEndpointURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fdsnBody))
	}))
	defer srv.Close()

	// A base URL already pointing at a station query endpoint is used as-is.
	c := NewClient(srv.URL+"/fdsnws/station/1/query", WithLogger(testutil.NewTestLogger(t)))
	_, err := c.Stations(context.Background(), nll.StationQuery{Lat: 1, Lon: 2, RadiusDeg: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "/fdsnws/station/1/query", gotPath)
}

func TestClient_Stations_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithLogger(testutil.NewTestLogger(t)))
	stations, err := c.Stations(context.Background(), nll.StationQuery{Lat: 1, Lon: 2, RadiusDeg: 0.5})
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestClient_Stations_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithLogger(testutil.NewTestLogger(t)))
	_, err := c.Stations(context.Background(), nll.StationQuery{Lat: 1, Lon: 2, RadiusDeg: 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "station service returned")
}

func TestClient_Stations_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, WithLogger(testutil.NewTestLogger(t)))
	_, err := c.Stations(ctx, nll.StationQuery{Lat: 1, Lon: 2, RadiusDeg: 0.5})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
