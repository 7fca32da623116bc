package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SubmissionKind distinguishes the interactions forwarded to the form endpoint.
type SubmissionKind string

const (
	SubmissionClick  SubmissionKind = "click"
	SubmissionUpvote SubmissionKind = "upvote"
)

// maxSessionNumber bounds the random session suffix: user-0 .. user-99999.
const maxSessionNumber = 100000

var sessionIDRe = regexp.MustCompile(`^user-(0|[1-9]\d{0,4})$`)

var (
	ErrNonFiniteCoordinate = errors.New("coordinate is not a finite number")
	ErrMissingObjectID     = errors.New("object id is required")
	ErrInvalidSessionID    = errors.New("invalid session id")
)

// Submission is a user interaction forwarded, fire-and-forget, to the
// submission endpoint.
type Submission struct {
	Kind        SubmissionKind `json:"kind"`
	SessionID   string         `json:"session_id"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	ObjectID    string         `json:"object_id,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// submissionJSON is the wire form of a Submission. Coordinates are pointers
// so a click at 0 keeps them while an upvote omits them.
type submissionJSON struct {
	Kind        SubmissionKind `json:"kind"`
	SessionID   string         `json:"session_id"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	ObjectID    string         `json:"object_id,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// MarshalJSON includes coordinates for clicks only.
func (s Submission) MarshalJSON() ([]byte, error) {
	w := submissionJSON{
		Kind:        s.Kind,
		SessionID:   s.SessionID,
		ObjectID:    s.ObjectID,
		SubmittedAt: s.SubmittedAt,
	}
	if s.Kind == SubmissionClick {
		w.Latitude, w.Longitude = &s.Latitude, &s.Longitude
	}
	return json.Marshal(w)
}

// NewSessionID returns a random per-session identifier of the form user-N.
func NewSessionID() string {
	return "user-" + strconv.Itoa(rand.IntN(maxSessionNumber))
}

// ValidSessionID reports whether id has the user-N shape with N in [0, 99999].
func ValidSessionID(id string) bool {
	return sessionIDRe.MatchString(id)
}

// NewClickSubmission records a map click at the given coordinate.
func NewClickSubmission(sessionID string, lat, lon float64) (Submission, error) {
	if !ValidSessionID(sessionID) {
		return Submission{}, fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	if !isFinite(lat) || !isFinite(lon) {
		return Submission{}, ErrNonFiniteCoordinate
	}
	return Submission{
		Kind:        SubmissionClick,
		SessionID:   sessionID,
		Latitude:    lat,
		Longitude:   lon,
		SubmittedAt: clock.Now().UTC(),
	}, nil
}

// NewUpvoteSubmission records a thumbs-up on a feed point.
func NewUpvoteSubmission(sessionID, objectID string) (Submission, error) {
	if !ValidSessionID(sessionID) {
		return Submission{}, fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	objectID = strings.TrimSpace(objectID)
	if objectID == "" {
		return Submission{}, ErrMissingObjectID
	}
	return Submission{
		Kind:        SubmissionUpvote,
		SessionID:   sessionID,
		ObjectID:    objectID,
		SubmittedAt: clock.Now().UTC(),
	}, nil
}

// FormattedLatitude renders the latitude with five decimals, e.g. "43.65000".
func (s Submission) FormattedLatitude() string {
	return strconv.FormatFloat(s.Latitude, 'f', 5, 64)
}

// FormattedLongitude renders the longitude with five decimals.
func (s Submission) FormattedLongitude() string {
	return strconv.FormatFloat(s.Longitude, 'f', 5, 64)
}

// FormattedTime renders the submission time as ISO 8601 in UTC.
func (s Submission) FormattedTime() string {
	return s.SubmittedAt.UTC().Format(time.RFC3339Nano)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
