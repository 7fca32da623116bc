package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// SearchZoom is the zoom level the map jumps to after a successful search.
const SearchZoom = 16

var (
	ErrGeocodingDisabled = errors.New("geocoding disabled")
	ErrEmptyQuery        = errors.New("search query is empty")
	ErrNoMatch           = errors.New("no matching place")
)

// SearchResult is where the map should move after an address search.
type SearchResult struct {
	GeocodingResult
	Zoom int `json:"zoom"`
}

// LocateQuery runs an address search. A nil geocoder yields
// ErrGeocodingDisabled so callers can hide the search box rather than fail.
func LocateQuery(ctx context.Context, geocoder Geocoder, query string, proximity [2]float64, logger *slog.Logger) (SearchResult, error) {
	if geocoder == nil {
		return SearchResult{}, ErrGeocodingDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrEmptyQuery
	}

	result, err := geocoder.Search(ctx, query, proximity)
	if err != nil {
		logger.Warn("forward geocoding failed", "query", query, "error", err)
		return SearchResult{}, fmt.Errorf("search %q: %w", query, err)
	}
	if !result.Found() {
		return SearchResult{}, ErrNoMatch
	}
	return SearchResult{GeocodingResult: result, Zoom: SearchZoom}, nil
}

// DescribeLocation reverse-geocodes a coordinate.
func DescribeLocation(ctx context.Context, geocoder Geocoder, lat, lon float64, logger *slog.Logger) (GeocodingResult, error) {
	if geocoder == nil {
		return GeocodingResult{}, ErrGeocodingDisabled
	}
	if !isFinite(lat) || !isFinite(lon) {
		return GeocodingResult{}, ErrNonFiniteCoordinate
	}

	result, err := geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		return GeocodingResult{}, fmt.Errorf("reverse %.5f,%.5f: %w", lat, lon, err)
	}
	if !result.Found() {
		return GeocodingResult{}, ErrNoMatch
	}
	return result, nil
}
