package form

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/shady-map-service/internal/adapter/remote"
	"github.com/couchcryptid/shady-map-service/internal/config"
	"github.com/couchcryptid/shady-map-service/internal/domain"
)

var isoTimestamp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z$`)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Send_Click(t *testing.T) {
	received := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		received <- map[string]string{
			"lat":       r.PostForm.Get("lat"),
			"lng":       r.PostForm.Get("lng"),
			"timestamp": r.PostForm.Get("timestamp"),
			"userId":    r.PostForm.Get("userId"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sub, err := domain.NewClickSubmission(domain.NewSessionID(), 43.65, -79.38)
	require.NoError(t, err)

	c := NewClient(srv.URL, config.DefaultFormFields, 5*time.Second, discardLogger())
	require.NoError(t, c.Send(context.Background(), sub))

	got := <-received
	assert.Equal(t, "43.65000", got["lat"])
	assert.Equal(t, "-79.38000", got["lng"])
	assert.Regexp(t, isoTimestamp, got["timestamp"])
	assert.Regexp(t, `^user-\d{1,5}$`, got["userId"])
}

func TestClient_Values_Upvote(t *testing.T) {
	fields := config.DefaultFormFields
	fields.User = "entry.1719527082"
	fields.Upvote = "entry.890823714"
	c := NewClient("http://unused", fields, time.Second, discardLogger())

	v := c.Values(domain.Submission{Kind: domain.SubmissionUpvote, SessionID: "user-5", ObjectID: "17"})

	assert.Equal(t, "user-5", v.Get("entry.1719527082"))
	assert.Equal(t, "1", v.Get("entry.890823714"))
	assert.Equal(t, "17", v.Get("objectId"))
	assert.Empty(t, v.Get("lat"))
}

func TestClient_Send_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, config.DefaultFormFields, time.Second, discardLogger())
	err := c.Send(context.Background(), domain.Submission{Kind: domain.SubmissionClick, SessionID: "user-1"})
	require.Error(t, err)

	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
}

func TestClient_Send_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, config.DefaultFormFields, time.Second, discardLogger())
	err := c.Send(context.Background(), domain.Submission{Kind: domain.SubmissionClick, SessionID: "user-1"})
	require.Error(t, err)
	assert.Equal(t, "form", c.Name())
}
