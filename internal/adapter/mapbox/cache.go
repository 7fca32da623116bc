package mapbox

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/shady-map-service/internal/domain"
	"github.com/couchcryptid/shady-map-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. Address
// searches repeat often (landmarks, intersections), so hits skip the API.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru.Cache[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator holding at most maxEntries
// results (minimum 1).
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	cache, err := lru.New[string, domain.GeocodingResult](max(maxEntries, 1))
	if err != nil {
		panic(fmt.Sprintf("mapbox: create cache: %v", err))
	}
	return &CachedGeocoder{inner: inner, cache: cache, metrics: metrics}
}

// Search keys on the normalized query and a proximity rounded to roughly a
// kilometre, so nearby map centres share entries.
func (c *CachedGeocoder) Search(ctx context.Context, query string, proximity [2]float64) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("fwd:%s|%.2f,%.2f", strings.ToLower(strings.TrimSpace(query)), proximity[0], proximity[1])
	return c.resolve(methodForward, key, func() (domain.GeocodingResult, error) {
		return c.inner.Search(ctx, query, proximity)
	})
}

func (c *CachedGeocoder) Reverse(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("rev:%.6f,%.6f", lat, lon)
	return c.resolve(methodReverse, key, func() (domain.GeocodingResult, error) {
		return c.inner.Reverse(ctx, lat, lon)
	})
}

// Len reports the number of cached results.
func (c *CachedGeocoder) Len() int {
	return c.cache.Len()
}

func (c *CachedGeocoder) resolve(method, key string, fetch func() (domain.GeocodingResult, error)) (domain.GeocodingResult, error) {
	if result, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(method, "hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues(method, "miss").Inc()

	result, err := fetch()
	if err != nil {
		return result, err
	}
	// Empty results stay uncached so a place added upstream shows up on retry.
	if result.FormattedAddress != "" {
		c.cache.Add(key, result)
	}
	return result, nil
}
