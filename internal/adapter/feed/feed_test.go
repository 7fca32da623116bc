package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/shady-map-service/internal/domain"
)

const sampleCSV = `name,latitude,longitude,description,timestamp,timeday,upvotes,objectID
Park Bench,43.64,-79.40,Under the maple,2025-07-14 13:02,Afternoon,2,1
Broken,abc,-79.40,,,,,2
,43.70,-79.30,,,,,3
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	recs, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	first := recs[0]
	require.NotNil(t, first.Name)
	assert.Equal(t, "Park Bench", *first.Name)
	assert.Equal(t, "43.64", *first.Latitude)
	assert.Equal(t, "Afternoon", *first.TimeDay)
	assert.Equal(t, "1", *first.ObjectID)

	assert.Equal(t, "", *recs[2].Name)
}

func TestParse_ThenNormalize(t *testing.T) {
	recs, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	points, dropped := domain.NormalizeAll(recs)
	require.Len(t, points, 2)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, domain.CategoryAfternoon, points[0].Category)
	assert.Equal(t, "Unnamed", points[1].Name)
	assert.Equal(t, domain.CategoryNight, points[1].Category)
}

func TestParse_HeaderVariants(t *testing.T) {
	doc := "\ufeffName, LATITUDE ,Longitude,Extra\nSpot,43.6,-79.4,ignored\n"

	recs, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Spot", *recs[0].Name)
	assert.Equal(t, "43.6", *recs[0].Latitude)
	assert.Nil(t, recs[0].Description)
	assert.Nil(t, recs[0].TimeDay)
}

func TestParse_RaggedAndBlankRows(t *testing.T) {
	doc := "name,latitude,longitude,timeday\n" +
		"Short,43.6\n" +
		",,,\n" +
		"\n" +
		"Long,43.6,-79.4,morning,surplus\n"

	recs, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Nil(t, recs[0].Longitude)
	assert.Equal(t, "morning", *recs[1].TimeDay)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestParse_HeaderOnly(t *testing.T) {
	recs, err := Parse(strings.NewReader("name,latitude,longitude\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestClient_Fetch_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("output"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/pub?output=csv", 5*time.Second, discardLogger())
	recs, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestClient_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch feed")
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Fetch_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	c := NewClient(path, time.Second, discardLogger())
	recs, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, path, c.Location())
}
