// Package boundary loads the regional outline drawn over the map.
package boundary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/shady-map-service/internal/adapter/remote"
	"github.com/couchcryptid/shady-map-service/internal/domain"
)

// ErrEmpty is returned when the document holds no geometry.
var ErrEmpty = errors.New("boundary has no geometry")

// maxDocumentSize bounds the GeoJSON download.
const maxDocumentSize = 32 << 20

// Loader reads the boundary GeoJSON from a URL or a local path.
type Loader struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLoader creates a boundary loader for location.
func NewLoader(location string, timeout time.Duration, logger *slog.Logger) *Loader {
	return &Loader{
		location:   location,
		httpClient: remote.NewHTTPClient(timeout),
		logger:     logger,
	}
}

// Load fetches and decodes the boundary.
func (l *Loader) Load(ctx context.Context) (*domain.Boundary, error) {
	rc, err := remote.Open(ctx, l.httpClient, l.location)
	if err != nil {
		return nil, fmt.Errorf("load boundary: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("load boundary: read: %w", err)
	}
	fc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load boundary: %w", err)
	}
	b := domain.NewBoundary(fc)
	l.logger.Debug("boundary loaded", "location", l.location, "features", len(fc.Features), "bbox", b.BBox)
	return b, nil
}

// Decode accepts a FeatureCollection, a single Feature or a bare geometry
// and returns it as a feature collection.
func Decode(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	var fc *geojson.FeatureCollection
	switch head.Type {
	case "FeatureCollection":
		c, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		fc = c
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature: %w", err)
		}
		fc = geojson.NewFeatureCollection().Append(f)
	case "":
		return nil, fmt.Errorf("decode geojson: missing type")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geometry: %w", err)
		}
		fc = geojson.NewFeatureCollection().Append(geojson.NewFeature(g.Geometry()))
	}

	for _, f := range fc.Features {
		if f.Geometry != nil {
			return fc, nil
		}
	}
	return nil, ErrEmpty
}
