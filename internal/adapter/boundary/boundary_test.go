package boundary

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const polygonJSON = `{"type":"Polygon","coordinates":[[[-79.6,43.6],[-79.1,43.6],[-79.1,43.9],[-79.6,43.9],[-79.6,43.6]]]}`

const collectionJSON = `{"type":"FeatureCollection","features":[` +
	`{"type":"Feature","properties":{"name":"Toronto"},"geometry":` + polygonJSON + `}]}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"feature collection", collectionJSON},
		{"feature", `{"type":"Feature","properties":{},"geometry":` + polygonJSON + `}`},
		{"bare geometry", polygonJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := Decode([]byte(tt.doc))
			require.NoError(t, err)
			require.Len(t, fc.Features, 1)
			poly, ok := fc.Features[0].Geometry.(orb.Polygon)
			require.True(t, ok)
			assert.Len(t, poly[0], 5)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.ErrorIs(t, err, ErrEmpty)

	_, err = Decode([]byte(`not json`))
	require.Error(t, err)

	_, err = Decode([]byte(`{"features":[]}`))
	require.Error(t, err)
}

func TestLoader_Load_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(collectionJSON))
	}))
	defer srv.Close()

	b, err := NewLoader(srv.URL+"/toronto_bound.json", 5*time.Second, discardLogger()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Toronto Regional Boundary", b.Label)
	assert.Equal(t, [4]float64{-79.6, 43.6, -79.1, 43.9}, b.BBox)
	assert.True(t, b.Contains(43.65, -79.38))
}

func TestLoader_Load_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toronto_bound.json")
	require.NoError(t, os.WriteFile(path, []byte(polygonJSON), 0o600))

	b, err := NewLoader(path, time.Second, discardLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, b.Contains(45, -79.38))
}

func TestLoader_Load_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewLoader(srv.URL, time.Second, discardLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load boundary")
}
