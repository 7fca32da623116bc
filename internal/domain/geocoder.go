package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formatted_address"`
	PlaceName        string  `json:"place_name"`
	Confidence       float64 `json:"confidence"` // 0.0–1.0 provider confidence score
}

// Found reports whether the provider returned a usable result.
func (r GeocodingResult) Found() bool {
	return r.FormattedAddress != "" || r.Lat != 0 || r.Lon != 0
}

// Geocoder backs the map's address search box.
type Geocoder interface {
	// Search resolves free text to a place, biased towards the given
	// proximity point (lat, lon).
	Search(ctx context.Context, query string, proximity [2]float64) (GeocodingResult, error)

	// Reverse converts coordinates to place details.
	Reverse(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
