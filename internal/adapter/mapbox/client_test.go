package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/shady-map-service/internal/domain"
	"github.com/couchcryptid/shady-map-service/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Search_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "CN Tower")
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))
		assert.Equal(t, "-79.406311,43.637869", r.URL.Query().Get("proximity"))

		resp := response{
			Features: []feature{
				{
					Center:    []float64{-79.3871, 43.6426},
					PlaceName: "CN Tower, 290 Bremner Blvd, Toronto, Ontario M5V 3L9, Canada",
					Text:      "CN Tower",
					Relevance: 0.95,
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.Search(context.Background(), "CN Tower", domain.DefaultCenter)
	require.NoError(t, err)

	assert.Equal(t, 43.6426, result.Lat)
	assert.Equal(t, -79.3871, result.Lon)
	assert.Contains(t, result.FormattedAddress, "290 Bremner Blvd")
	assert.Equal(t, "CN Tower", result.PlaceName)
	assert.Equal(t, 0.95, result.Confidence)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("forward", "success")), 0)
}

func TestClient_Reverse_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "-79.403000,43.639000")
		resp := response{
			Features: []feature{
				{
					Center:    []float64{-79.403, 43.639},
					PlaceName: "Fort York Boulevard, Toronto, Ontario, Canada",
					Text:      "Fort York Boulevard",
					Relevance: 0.98,
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.Reverse(context.Background(), 43.639, -79.403)
	require.NoError(t, err)

	assert.Equal(t, "Fort York Boulevard, Toronto, Ontario, Canada", result.FormattedAddress)
	assert.Equal(t, "Fort York Boulevard", result.PlaceName)
	assert.Equal(t, 0.98, result.Confidence)
}

func TestClient_Search_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.Search(context.Background(), "NONEXISTENT", domain.DefaultCenter)
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("forward", "empty")), 0)
}

func TestClient_Search_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.token = "bad-token"

	_, err := c.Search(context.Background(), "CN Tower", domain.DefaultCenter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("forward", "error")), 0)
}

func TestClient_Search_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.Search(context.Background(), "CN Tower", domain.DefaultCenter)
	require.Error(t, err)
}

func TestClient_SearchThroughDomain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{
			{Center: []float64{-79.3925, 43.6535}, PlaceName: "Grange Park, Toronto", Text: "Grange Park", Relevance: 1},
		}}))
	}))
	defer srv.Close()

	res, err := domain.LocateQuery(context.Background(), testClient(srv.URL), "grange park", domain.DefaultCenter, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, domain.SearchZoom, res.Zoom)
	assert.Equal(t, 43.6535, res.Lat)
}
