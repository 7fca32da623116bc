// Package form forwards user submissions to a web form endpoint as
// url-encoded POSTs.
package form

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/shady-map-service/internal/adapter/remote"
	"github.com/couchcryptid/shady-map-service/internal/config"
	"github.com/couchcryptid/shady-map-service/internal/domain"
)

// Client posts submissions to a form endpoint.
// It implements submission.Sink.
type Client struct {
	endpoint   string
	fields     config.FormFields
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a form client posting to endpoint.
func NewClient(endpoint string, fields config.FormFields, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		fields:     fields,
		httpClient: remote.NewHTTPClient(timeout),
		logger:     logger,
	}
}

// Name identifies the sink in logs and metrics.
func (c *Client) Name() string {
	return "form"
}

// Values encodes a submission as form fields. Clicks carry the coordinate
// and time; upvotes carry the object ID and a vote of 1.
func (c *Client) Values(sub domain.Submission) url.Values {
	v := url.Values{}
	v.Set(c.fields.User, sub.SessionID)
	switch sub.Kind {
	case domain.SubmissionUpvote:
		v.Set(c.fields.ObjectID, sub.ObjectID)
		v.Set(c.fields.Upvote, "1")
	default:
		v.Set(c.fields.Latitude, sub.FormattedLatitude())
		v.Set(c.fields.Longitude, sub.FormattedLongitude())
		v.Set(c.fields.Timestamp, sub.FormattedTime())
	}
	return v
}

// Send posts one submission. Any non-2xx response is an error.
func (c *Client) Send(ctx context.Context, sub domain.Submission) error {
	body := c.Values(sub).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post form: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post form: %w", &remote.StatusError{Code: resp.StatusCode})
	}
	c.logger.Debug("submission posted", "kind", sub.Kind, "session", sub.SessionID, "status", resp.StatusCode)
	return nil
}
