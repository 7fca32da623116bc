package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/shady-map-service/internal/domain"
)

const (
	sessionCookie   = "shadymap_session"
	maxRequestBytes = 1 << 16
)

func (s *Server) view(w http.ResponseWriter) (*domain.MapView, bool) {
	v := s.deps.Views.Snapshot()
	if v == nil {
		writeError(w, http.StatusServiceUnavailable, "map view not ready")
		return nil, false
	}
	return v, true
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	col, found := v.Collections.Get(domain.CollectionKey(r.PathValue("key")))
	if !found {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}
	writeJSON(w, http.StatusOK, col)
}

type popupResponse struct {
	ID      string              `json:"id"`
	State   domain.PopupState   `json:"state"`
	Toggle  domain.PopupState   `json:"toggle"`
	Content string              `json:"content"`
	Source  domain.MarkerSource `json:"source"`
}

// handlePopup renders a marker popup in the requested state. The response
// names the state a toggle would switch to so clients need not track it.
func (s *Server) handlePopup(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	state, err := domain.ParsePopupState(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, found := v.Collections.Marker(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "unknown marker")
		return
	}

	pv := domain.NewPopupView(m.Popup)
	if state == domain.PopupDetail {
		pv.Toggle()
	}
	current, content := pv.State(), pv.Content()
	pv.Toggle()

	writeJSON(w, http.StatusOK, popupResponse{
		ID:      m.ID,
		State:   current,
		Toggle:  pv.State(),
		Content: content,
		Source:  m.Source,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	proximity := domain.DefaultCenter
	if q.Has("lat") || q.Has("lng") {
		lat, lon, err := parseCoords(q.Get("lat"), q.Get("lng"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		proximity = [2]float64{lat, lon}
	}

	result, err := domain.LocateQuery(r.Context(), s.deps.Geocoder, q.Get("q"), proximity, s.logger)
	if err != nil {
		writeGeocodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, lon, err := parseCoords(q.Get("lat"), q.Get("lng"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := domain.DescribeLocation(r.Context(), s.deps.Geocoder, lat, lon, s.logger)
	if err != nil {
		writeGeocodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeGeocodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGeocodingDisabled), errors.Is(err, domain.ErrNoMatch):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrNonFiniteCoordinate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, "geocoding provider unavailable")
	}
}

type clickRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type upvoteRequest struct {
	ObjectID string `json:"object_id"`
}

type acceptedResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// handleSubmission forwards a map click. Delivery happens in the background;
// the caller only learns that the click was accepted.
func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	session := s.session(w, r)
	sub, err := domain.NewClickSubmission(session, *req.Lat, *req.Lng)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.enqueue(sub)
	writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "accepted", SessionID: session})
}

// handleUpvote forwards a thumbs-up for a feed point present in the current view.
func (s *Server) handleUpvote(w http.ResponseWriter, r *http.Request) {
	var req upvoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := s.session(w, r)
	sub, err := domain.NewUpvoteSubmission(session, req.ObjectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, ok := s.view(w)
	if !ok {
		return
	}
	if m, found := v.Collections.Marker("feed-" + sub.ObjectID); !found || m.Source != domain.SourceFeed {
		writeError(w, http.StatusNotFound, "unknown spot")
		return
	}

	s.enqueue(sub)
	writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "accepted", SessionID: session})
}

// enqueue hands the submission to the dispatcher. Queue errors are logged by
// the dispatcher and never reach the user.
func (s *Server) enqueue(sub domain.Submission) {
	if s.deps.Submissions == nil {
		return
	}
	if err := s.deps.Submissions.Submit(sub); err != nil {
		s.logger.Debug("submission not queued", "kind", sub.Kind, "error", err)
	}
}

// session returns the caller's session ID, issuing a new one in a cookie when
// the request carries none or an invalid one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && domain.ValidSessionID(c.Value) {
		return c.Value
	}
	id := domain.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func parseCoords(latRaw, lngRaw string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return 0, 0, errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return 0, 0, errors.New("invalid lng")
	}
	return lat, lon, nil
}
