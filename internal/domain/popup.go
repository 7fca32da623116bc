package domain

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

const (
	fallbackDate      = "an unknown date"
	fallbackTimeOfDay = "unknown"
)

// Popup holds the two render states of a marker popup.
type Popup struct {
	Summary string `json:"summary"`
	Detail  string `json:"detail"`
}

// PointPopup builds popup content for a feed point.
func PointPopup(p Point) Popup {
	summary := fmt.Sprintf("<b>%s</b><br>%s", html.EscapeString(p.Name), pointCoords(p.Latitude, p.Longitude))

	date := fallbackDate
	if p.TimestampKnown {
		date = html.EscapeString(p.Timestamp)
	}
	timeOfDay := fallbackTimeOfDay
	if p.TimeOfDayKnown {
		timeOfDay = strings.ToLower(string(p.Category))
	}

	var b strings.Builder
	b.WriteString(`<div style="width: 300px;">`)
	b.WriteString(summary)
	b.WriteString("<p>" + html.EscapeString(p.Description) + "</p>")
	b.WriteString("<p>A user identified this as a shady spot on " + date + ".</p>")
	b.WriteString("<p>The best time to visit this spot is in the " + timeOfDay + ".</p>")
	b.WriteString("<p>Upvotes: " + strconv.Itoa(p.Upvotes) + ".</p>")
	b.WriteString("</div>")

	return Popup{Summary: summary, Detail: b.String()}
}

// SitePopup builds popup content for a curated or artwork site. Sites with a
// heading (installation name) show the title in italics beneath it.
func SitePopup(s Site) Popup {
	var head string
	if s.Heading != "" {
		head = fmt.Sprintf("<b>%s</b><br><b><i>%s</i></b><br>", html.EscapeString(s.Heading), html.EscapeString(s.Title))
	} else {
		head = fmt.Sprintf("<b>%s</b><br>", html.EscapeString(s.Title))
	}
	summary := head + siteCoords(s.Latitude, s.Longitude)

	var b strings.Builder
	b.WriteString(`<div style="width: 300px;">`)
	b.WriteString(summary)
	b.WriteString("<p>" + html.EscapeString(s.Description) + "</p>")
	if s.Image != "" {
		fmt.Fprintf(&b, `<img src="%s" width="100%%" height="200" style="object-fit: cover;" />`, html.EscapeString(s.Image))
	}
	b.WriteString("</div>")

	return Popup{Summary: summary, Detail: b.String()}
}

// pointCoords formats feed coordinates: six decimals latitude, five longitude.
func pointCoords(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.5f", lat, lon)
}

func siteCoords(lat, lon float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lon)
}

// PopupState is the render state of an open popup.
type PopupState string

const (
	PopupSummary PopupState = "summary"
	PopupDetail  PopupState = "detail"
)

// ParsePopupState maps a query value to a state. Blank defaults to summary.
func ParsePopupState(s string) (PopupState, error) {
	switch PopupState(strings.ToLower(strings.TrimSpace(s))) {
	case "", PopupSummary:
		return PopupSummary, nil
	case PopupDetail:
		return PopupDetail, nil
	default:
		return "", fmt.Errorf("unknown popup state %q", s)
	}
}

// PopupView tracks which state a rendered popup is in. A double-click style
// trigger toggles between summary and detail; closing the popup resets it.
// The state is transient and starts at summary on every render.
type PopupView struct {
	popup Popup
	state PopupState
}

// NewPopupView returns a view in the summary state.
func NewPopupView(p Popup) *PopupView {
	return &PopupView{popup: p, state: PopupSummary}
}

// Toggle switches between summary and detail.
func (v *PopupView) Toggle() {
	if v.state == PopupSummary {
		v.state = PopupDetail
		return
	}
	v.state = PopupSummary
}

// Close returns the view to the summary state.
func (v *PopupView) Close() {
	v.state = PopupSummary
}

// State reports the current state.
func (v *PopupView) State() PopupState {
	return v.state
}

// Content returns the popup HTML for the current state.
func (v *PopupView) Content() string {
	return v.popup.Content(v.state)
}

// Content returns the HTML for the given state.
func (p Popup) Content(state PopupState) string {
	if state == PopupDetail {
		return p.Detail
	}
	return p.Summary
}
