package domain

import (
	"encoding/json"
	"strconv"
)

// CollectionKey identifies a renderable marker collection.
type CollectionKey string

const (
	CollectionMorning   CollectionKey = "morning"
	CollectionAfternoon CollectionKey = "afternoon"
	CollectionEvening   CollectionKey = "evening"
	CollectionNight     CollectionKey = "night"
	CollectionBentway   CollectionKey = "bentway"
	CollectionArtwork   CollectionKey = "artwork"
)

// CollectionOrder is the default draw order.
var CollectionOrder = []CollectionKey{
	CollectionMorning,
	CollectionAfternoon,
	CollectionEvening,
	CollectionNight,
	CollectionBentway,
	CollectionArtwork,
}

var collectionLabels = map[CollectionKey]string{
	CollectionMorning:   "Morning",
	CollectionAfternoon: "Afternoon",
	CollectionEvening:   "Evening",
	CollectionNight:     "Night",
	CollectionBentway:   "Bentway Cool Spots",
	CollectionArtwork:   "Sun/Shade Art",
}

// Label returns the display label for the key.
func (k CollectionKey) Label() string {
	if l, ok := collectionLabels[k]; ok {
		return l
	}
	return string(k)
}

// Collection is a named group of markers rendered as one toggleable layer.
type Collection struct {
	Key     CollectionKey `json:"key"`
	Label   string        `json:"label"`
	Markers []Marker      `json:"markers"`
}

// Collections is the full set of collections produced by one ingestion pass.
// It is not modified after Aggregate returns.
type Collections struct {
	items   []Collection
	byKey   map[CollectionKey]int
	markers map[string]Marker
}

// Aggregate groups feed points by category and adds the curated and artwork
// site collections. The site collections are always present, so passing nil
// points (feed unavailable) still yields renderable sites. Points are never
// deduplicated or merged with sites, even when coordinates coincide.
func Aggregate(points []Point, curated, artwork []Site) *Collections {
	c := &Collections{
		items:   make([]Collection, len(CollectionOrder)),
		byKey:   make(map[CollectionKey]int, len(CollectionOrder)),
		markers: make(map[string]Marker, len(points)+len(curated)+len(artwork)),
	}
	for i, key := range CollectionOrder {
		c.items[i] = Collection{Key: key, Label: key.Label(), Markers: []Marker{}}
		c.byKey[key] = i
	}

	for i := range points {
		p := points[i]
		id := feedMarkerID(p, i)
		if _, dup := c.markers[id]; dup {
			id = "feed-row-" + strconv.Itoa(i)
		}
		c.add(p.Category.Key(), Marker{
			ID:        id,
			Source:    SourceFeed,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Popup:     PointPopup(p),
			Point:     &p,
		})
	}
	c.addSites(CollectionBentway, SourceCurated, curated)
	c.addSites(CollectionArtwork, SourceArtwork, artwork)

	return c
}

func (c *Collections) addSites(key CollectionKey, source MarkerSource, sites []Site) {
	for i := range sites {
		s := sites[i]
		c.add(key, Marker{
			ID:        string(source) + "-" + siteSlug(s, i),
			Source:    source,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Popup:     SitePopup(s),
			Site:      &s,
		})
	}
}

func (c *Collections) add(key CollectionKey, m Marker) {
	idx := c.byKey[key]
	c.items[idx].Markers = append(c.items[idx].Markers, m)
	c.markers[m.ID] = m
}

// Get returns the collection for key.
func (c *Collections) Get(key CollectionKey) (Collection, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return Collection{}, false
	}
	return c.items[idx], true
}

// Ordered returns the collections in draw order.
func (c *Collections) Ordered() []Collection {
	out := make([]Collection, len(c.items))
	copy(out, c.items)
	return out
}

// Marker looks up a marker by ID across all collections.
func (c *Collections) Marker(id string) (Marker, bool) {
	m, ok := c.markers[id]
	return m, ok
}

// Counts returns the number of markers per collection.
func (c *Collections) Counts() map[CollectionKey]int {
	out := make(map[CollectionKey]int, len(c.items))
	for _, col := range c.items {
		out[col.Key] = len(col.Markers)
	}
	return out
}

// MarshalJSON encodes the collections as an ordered array.
func (c *Collections) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.items)
}

// feedMarkerID prefers the spreadsheet object ID and falls back to the row
// position, which is stable within one ingestion pass.
func feedMarkerID(p Point, idx int) string {
	if p.ObjectID != "" {
		return "feed-" + p.ObjectID
	}
	return "feed-row-" + strconv.Itoa(idx)
}

func siteSlug(s Site, idx int) string {
	if s.Slug != "" {
		return s.Slug
	}
	return strconv.Itoa(idx)
}
