package domain

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Default viewport, centred on the Bentway.
var (
	DefaultCenter = [2]float64{43.637869, -79.406311}
	DefaultZoom   = 13
)

// MarkerIcon describes the marker image shared by every collection.
type MarkerIcon struct {
	IconURL     string `json:"icon_url"`
	ShadowURL   string `json:"shadow_url"`
	IconSize    [2]int `json:"icon_size"`
	IconAnchor  [2]int `json:"icon_anchor"`
	PopupAnchor [2]int `json:"popup_anchor"`
	ShadowSize  [2]int `json:"shadow_size"`
}

// GoldIcon is the gold map pin used for all markers.
var GoldIcon = MarkerIcon{
	IconURL:     "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-2x-gold.png",
	ShadowURL:   "https://cdnjs.cloudflare.com/ajax/libs/leaflet/0.7.7/images/marker-shadow.png",
	IconSize:    [2]int{25, 41},
	IconAnchor:  [2]int{12, 41},
	PopupAnchor: [2]int{1, -34},
	ShadowSize:  [2]int{41, 41},
}

// BoundaryStyle is the outline style for the regional boundary.
type BoundaryStyle struct {
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
	DashArray   string  `json:"dashArray"`
}

// Boundary is the regional outline drawn above the marker layers.
type Boundary struct {
	Label    string                     `json:"label"`
	Pane     string                     `json:"pane"`
	ZIndex   int                        `json:"z_index"`
	Style    BoundaryStyle              `json:"style"`
	Features *geojson.FeatureCollection `json:"features"`
	BBox     [4]float64                 `json:"bbox"` // west, south, east, north
	Bound    orb.Bound                  `json:"-"`
}

// NewBoundary wraps a decoded feature collection with the standard styling.
func NewBoundary(fc *geojson.FeatureCollection) *Boundary {
	var bound orb.Bound
	first := true
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if first {
			bound = f.Geometry.Bound()
			first = false
			continue
		}
		bound = bound.Union(f.Geometry.Bound())
	}
	return &Boundary{
		Label:  "Toronto Regional Boundary",
		Pane:   "topPane",
		ZIndex: 650,
		Style: BoundaryStyle{
			Color:       "#ffd300",
			Weight:      4,
			FillOpacity: 0,
			DashArray:   "6,6",
		},
		Features: fc,
		BBox:     [4]float64{bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat()},
		Bound:    bound,
	}
}

// Contains reports whether the coordinate lies inside the boundary. Polygon
// features are tested exactly; line outlines fall back to the bounding box.
func (b *Boundary) Contains(lat, lon float64) bool {
	pt := orb.Point{lon, lat}
	if !b.Bound.Contains(pt) {
		return false
	}
	areal := false
	for _, f := range b.Features.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			areal = true
			if planar.PolygonContains(g, pt) {
				return true
			}
		case orb.MultiPolygon:
			areal = true
			if planar.MultiPolygonContains(g, pt) {
				return true
			}
		}
	}
	return !areal
}

// FeedState is the outcome of the most recent feed ingestion.
type FeedState string

const (
	FeedPending FeedState = "pending"
	FeedOK      FeedState = "ok"
	FeedFailed  FeedState = "failed"
)

// FeedStatus summarizes the most recent feed ingestion.
type FeedStatus struct {
	State    FeedState `json:"state"`
	Accepted int       `json:"accepted"`
	Dropped  int       `json:"dropped"`
	Error    string    `json:"error,omitempty"`
}

// MapView is everything a map widget needs to render one session. A MapView
// is built once and never modified; a new ingestion pass builds a new one.
type MapView struct {
	Center      [2]float64   `json:"center"`
	Zoom        int          `json:"zoom"`
	Icon        MarkerIcon   `json:"icon"`
	Tree        ViewTree     `json:"tree"`
	Collections *Collections `json:"collections"`
	Boundary    *Boundary    `json:"boundary,omitempty"`
	Feed        FeedStatus   `json:"feed"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ViewInput collects the pieces of a MapView.
type ViewInput struct {
	Points   []Point
	Feed     FeedStatus
	Curated  []Site
	Artwork  []Site
	Layers   LayerSet
	Boundary *Boundary
	Tree     TreeOptions
}

// NewMapView aggregates the points and sites and builds the layer tree.
func NewMapView(in ViewInput) *MapView {
	cols := Aggregate(in.Points, in.Curated, in.Artwork)
	return &MapView{
		Center:      DefaultCenter,
		Zoom:        DefaultZoom,
		Icon:        GoldIcon,
		Tree:        BuildViewTree(cols, in.Layers, in.Tree),
		Collections: cols,
		Boundary:    in.Boundary,
		Feed:        in.Feed,
		GeneratedAt: clock.Now().UTC(),
	}
}
