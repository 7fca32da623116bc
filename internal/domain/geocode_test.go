package domain

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGeocoder struct {
	searchResult  GeocodingResult
	searchErr     error
	reverseResult GeocodingResult
	reverseErr    error

	lastQuery     string
	lastProximity [2]float64
}

func (m *mockGeocoder) Search(_ context.Context, query string, proximity [2]float64) (GeocodingResult, error) {
	m.lastQuery = query
	m.lastProximity = proximity
	return m.searchResult, m.searchErr
}

func (m *mockGeocoder) Reverse(_ context.Context, _, _ float64) (GeocodingResult, error) {
	return m.reverseResult, m.reverseErr
}

func TestLocateQuery(t *testing.T) {
	geo := &mockGeocoder{searchResult: GeocodingResult{
		Lat: 43.6426, Lon: -79.3871, FormattedAddress: "290 Bremner Blvd, Toronto", Confidence: 1,
	}}

	res, err := LocateQuery(context.Background(), geo, "  CN Tower ", DefaultCenter, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, SearchZoom, res.Zoom)
	assert.Equal(t, 43.6426, res.Lat)
	assert.Equal(t, "CN Tower", geo.lastQuery)
	assert.Equal(t, DefaultCenter, geo.lastProximity)
}

func TestLocateQuery_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := LocateQuery(ctx, nil, "CN Tower", DefaultCenter, slog.Default())
	require.ErrorIs(t, err, ErrGeocodingDisabled)

	_, err = LocateQuery(ctx, &mockGeocoder{}, "   ", DefaultCenter, slog.Default())
	require.ErrorIs(t, err, ErrEmptyQuery)

	_, err = LocateQuery(ctx, &mockGeocoder{}, "nowhere", DefaultCenter, slog.Default())
	require.ErrorIs(t, err, ErrNoMatch)

	upstream := errors.New("upstream down")
	_, err = LocateQuery(ctx, &mockGeocoder{searchErr: upstream}, "CN Tower", DefaultCenter, slog.Default())
	require.ErrorIs(t, err, upstream)
}

func TestDescribeLocation(t *testing.T) {
	geo := &mockGeocoder{reverseResult: GeocodingResult{PlaceName: "Fort York", FormattedAddress: "250 Fort York Blvd"}}

	res, err := DescribeLocation(context.Background(), geo, 43.639, -79.403, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "Fort York", res.PlaceName)

	_, err = DescribeLocation(context.Background(), nil, 43.639, -79.403, slog.Default())
	require.ErrorIs(t, err, ErrGeocodingDisabled)

	_, err = DescribeLocation(context.Background(), &mockGeocoder{}, 43.639, -79.403, slog.Default())
	require.ErrorIs(t, err, ErrNoMatch)
}
