// Package feed downloads and decodes the published shady-spot spreadsheet.
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/shady-map-service/internal/adapter/remote"
	"github.com/couchcryptid/shady-map-service/internal/domain"
)

// ErrNoHeader is returned when the feed has no header row.
var ErrNoHeader = errors.New("feed has no header row")

// Client fetches the CSV feed from a URL or a local path.
type Client struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client for location.
func NewClient(location string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		location:   location,
		httpClient: remote.NewHTTPClient(timeout),
		logger:     logger,
	}
}

// Location returns the configured feed location.
func (c *Client) Location() string {
	return c.location
}

// Fetch downloads the feed and decodes every data row.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	rc, err := remote.Open(ctx, c.httpClient, c.location)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer rc.Close()

	records, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	c.logger.Debug("feed fetched", "location", c.location, "rows", len(records))
	return records, nil
}

// column indexes for the known feed fields; -1 means absent.
type columns struct {
	name, latitude, longitude, description, timestamp, timeday, upvotes, objectID int
}

func mapColumns(header []string) columns {
	cols := columns{-1, -1, -1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "name":
			cols.name = i
		case "latitude":
			cols.latitude = i
		case "longitude":
			cols.longitude = i
		case "description":
			cols.description = i
		case "timestamp":
			cols.timestamp = i
		case "timeday":
			cols.timeday = i
		case "upvotes":
			cols.upvotes = i
		case "objectid":
			cols.objectID = i
		}
	}
	return cols
}

// Parse decodes a CSV document with a header row. Header names are matched
// case-insensitively; unknown columns are ignored. Rows may be shorter or
// longer than the header, and rows with only blank cells are skipped.
func Parse(r io.Reader) ([]domain.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := mapColumns(header)

	var records []domain.RawRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blank(row) {
			continue
		}
		records = append(records, domain.RawRecord{
			Name:        cell(row, cols.name),
			Latitude:    cell(row, cols.latitude),
			Longitude:   cell(row, cols.longitude),
			Description: cell(row, cols.description),
			Timestamp:   cell(row, cols.timestamp),
			TimeDay:     cell(row, cols.timeday),
			Upvotes:     cell(row, cols.upvotes),
			ObjectID:    cell(row, cols.objectID),
		})
	}
	return records, nil
}

func cell(row []string, idx int) *string {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	v := row[idx]
	return &v
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
