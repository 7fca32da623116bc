package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalRe is the plain decimal or exponent notation the feed may use.
// ParseFloat alone would also take hex floats, underscores and a leading '+'.
var decimalRe = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// Defaults substituted for blank feed fields.
const (
	DefaultName        = "Unnamed"
	DefaultDescription = ""
	DefaultTimestamp   = "unknown"
)

// NormalizeRecord validates a feed row and returns the Point it describes.
// The second return value is false when latitude or longitude is absent or
// does not parse to a finite number; such rows are dropped by the caller.
func NormalizeRecord(rec RawRecord) (Point, bool) {
	lat, ok := parseFinite(rec.Latitude)
	if !ok {
		return Point{}, false
	}
	lon, ok := parseFinite(rec.Longitude)
	if !ok {
		return Point{}, false
	}

	timestamp, timestampKnown := textOrDefault(rec.Timestamp, DefaultTimestamp)
	name, _ := textOrDefault(rec.Name, DefaultName)
	description, _ := textOrDefault(rec.Description, DefaultDescription)
	objectID, _ := textOrDefault(rec.ObjectID, "")

	return Point{
		ObjectID:       objectID,
		Name:           name,
		Latitude:       lat,
		Longitude:      lon,
		Description:    description,
		Timestamp:      timestamp,
		Category:       ClassifyPtr(rec.TimeDay),
		Upvotes:        parseUpvotes(rec.Upvotes),
		TimestampKnown: timestampKnown,
		TimeOfDayKnown: rec.TimeDay != nil && strings.TrimSpace(*rec.TimeDay) != "",
	}, true
}

// NormalizeAll normalizes a batch of rows, returning the accepted points in
// input order and the number of rows dropped.
func NormalizeAll(recs []RawRecord) ([]Point, int) {
	points := make([]Point, 0, len(recs))
	dropped := 0
	for _, rec := range recs {
		p, ok := NormalizeRecord(rec)
		if !ok {
			dropped++
			continue
		}
		points = append(points, p)
	}
	return points, dropped
}

// Classify maps a free-text time of day to a Category. Matching is
// case-insensitive and ignores surrounding whitespace. Unrecognized and blank
// values resolve to Night.
func Classify(timeday string) Category {
	switch strings.ToLower(strings.TrimSpace(timeday)) {
	case "morning":
		return CategoryMorning
	case "afternoon":
		return CategoryAfternoon
	case "evening":
		return CategoryEvening
	case "night":
		return CategoryNight
	default:
		return CategoryNight
	}
}

// ClassifyPtr is Classify for an optional field; nil classifies as blank.
func ClassifyPtr(timeday *string) Category {
	if timeday == nil {
		return Classify("")
	}
	return Classify(*timeday)
}

// parseFinite parses an optional numeric cell, rejecting absent, blank,
// non-numeric, NaN and infinite values.
func parseFinite(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	raw := strings.TrimSpace(*s)
	if !decimalRe.MatchString(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// textOrDefault returns the trimmed field value, or def when the field is
// absent or blank. The boolean reports whether the feed supplied a value.
func textOrDefault(s *string, def string) (string, bool) {
	if s == nil {
		return def, false
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return def, false
	}
	return v, true
}

// parseUpvotes reads the upvote counter. Spreadsheets sometimes export
// integers as "3.0", so whole floats are accepted; anything else counts as 0.
func parseUpvotes(s *string) int {
	v, ok := parseFinite(s)
	if !ok || v < 0 {
		return 0
	}
	return int(v)
}
