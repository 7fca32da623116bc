package domain

// RawRecord is one row of the shady-spot feed. A nil field means the column
// was not present in the feed header; an empty string means the cell was blank.
type RawRecord struct {
	Name        *string `json:"name,omitempty"`
	Latitude    *string `json:"latitude,omitempty"`
	Longitude   *string `json:"longitude,omitempty"`
	Description *string `json:"description,omitempty"`
	Timestamp   *string `json:"timestamp,omitempty"`
	TimeDay     *string `json:"timeday,omitempty"`
	Upvotes     *string `json:"upvotes,omitempty"`
	ObjectID    *string `json:"objectID,omitempty"`
}

// Category is the time-of-day bucket a point is filed under.
type Category string

const (
	CategoryMorning   Category = "Morning"
	CategoryAfternoon Category = "Afternoon"
	CategoryEvening   Category = "Evening"
	CategoryNight     Category = "Night"
)

// Categories lists the time-of-day buckets in display order.
var Categories = []Category{CategoryMorning, CategoryAfternoon, CategoryEvening, CategoryNight}

// Key returns the collection key for the category, e.g. "morning".
func (c Category) Key() CollectionKey {
	switch c {
	case CategoryMorning:
		return CollectionMorning
	case CategoryAfternoon:
		return CollectionAfternoon
	case CategoryEvening:
		return CollectionEvening
	default:
		return CollectionNight
	}
}

// Point is a normalized shady spot from the feed.
type Point struct {
	ObjectID    string   `json:"object_id,omitempty"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Description string   `json:"description"`
	Timestamp   string   `json:"timestamp"`
	Category    Category `json:"category"`
	Upvotes     int      `json:"upvotes"`

	// TimestampKnown and TimeOfDayKnown are false when the feed left the
	// field blank and a default was substituted.
	TimestampKnown bool `json:"timestamp_known"`
	TimeOfDayKnown bool `json:"time_of_day_known"`
}

// SiteKind distinguishes the two static site catalogs.
type SiteKind string

const (
	SiteCurated SiteKind = "curated"
	SiteArtwork SiteKind = "artwork"
)

// Site is a statically authored point of interest that does not come from the feed.
type Site struct {
	Slug        string  `json:"slug" toml:"slug"`
	Heading     string  `json:"heading,omitempty" toml:"heading"`
	Title       string  `json:"title" toml:"title"`
	Latitude    float64 `json:"latitude" toml:"latitude"`
	Longitude   float64 `json:"longitude" toml:"longitude"`
	Description string  `json:"description" toml:"description"`
	Image       string  `json:"image,omitempty" toml:"image"`
}

// MarkerSource records where a marker came from.
type MarkerSource string

const (
	SourceFeed    MarkerSource = "feed"
	SourceCurated MarkerSource = "curated"
	SourceArtwork MarkerSource = "artwork"
)

// Marker is a renderable map entity with its popup content.
type Marker struct {
	ID        string       `json:"id"`
	Source    MarkerSource `json:"source"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Popup     Popup        `json:"popup"`
	Point     *Point       `json:"point,omitempty"`
	Site      *Site        `json:"site,omitempty"`
}
