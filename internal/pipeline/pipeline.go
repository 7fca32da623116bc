package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/shady-map-service/internal/domain"
	"github.com/couchcryptid/shady-map-service/internal/observability"
	"github.com/couchcryptid/shady-map-service/internal/sites"
)

// FeedSource fetches the raw feed rows.
type FeedSource interface {
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// BoundarySource loads the regional outline.
type BoundarySource interface {
	Load(ctx context.Context) (*domain.Boundary, error)
}

// Options configures a Pipeline.
type Options struct {
	Layers domain.LayerSet
	Tree   domain.TreeOptions
	// RefreshInterval re-runs ingestion periodically; 0 ingests once.
	RefreshInterval time.Duration
	Clock           clockwork.Clock
}

// Pipeline turns the feed, the boundary and the static site catalog into an
// immutable MapView. Readers call Snapshot; each ingestion pass publishes a
// fresh view with a single atomic swap.
type Pipeline struct {
	feed     FeedSource
	boundary BoundarySource
	catalog  *sites.Catalog
	opts     Options
	logger   *slog.Logger
	metrics  *observability.Metrics

	view  atomic.Pointer[domain.MapView]
	ready atomic.Bool

	// Owned by the goroutine running Ingest.
	outline *domain.Boundary
	fed     bool
	points  []domain.Point
	status  domain.FeedStatus
}

// New creates a Pipeline and publishes a sites-only view so the curated and
// artwork collections render before the feed arrives. A nil boundary source
// disables the outline.
func New(feed FeedSource, boundary BoundarySource, catalog *sites.Catalog, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if catalog == nil {
		catalog = &sites.Catalog{}
	}
	p := &Pipeline{
		feed:     feed,
		boundary: boundary,
		catalog:  catalog,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
	}
	p.publish(p.build(nil, domain.FeedStatus{State: domain.FeedPending}))
	return p
}

// Snapshot returns the current view. It is never nil.
func (p *Pipeline) Snapshot() *domain.MapView {
	return p.view.Load()
}

// CheckReadiness returns nil once the first ingestion pass has finished,
// whether or not the feed could be read.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed an ingestion pass yet")
	}
	return nil
}

// Run ingests once, then again every RefreshInterval until ctx is cancelled.
// Ingestion failures are logged and never stop the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "refresh_interval", p.opts.RefreshInterval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.runPass(ctx)
	if p.opts.RefreshInterval <= 0 {
		return nil
	}

	ticker := p.opts.Clock.NewTicker(p.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.runPass(ctx)
		}
	}
}

func (p *Pipeline) runPass(ctx context.Context) {
	if _, err := p.Ingest(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("ingestion failed, serving sites only", "error", err)
	}
}

// Ingest runs one ingestion pass and returns the published view. A feed
// failure is returned as an error alongside a view that still carries the
// site collections (or, after an earlier success, the previous feed points).
// Ingest must not be called concurrently.
func (p *Pipeline) Ingest(ctx context.Context) (*domain.MapView, error) {
	defer p.ready.Store(true)

	p.loadBoundary(ctx)

	start := p.opts.Clock.Now()
	records, err := p.feed.Fetch(ctx)
	p.metrics.FeedFetchDuration.Observe(p.opts.Clock.Since(start).Seconds())
	if err != nil {
		p.metrics.FeedFetches.WithLabelValues("error").Inc()
		if p.fed {
			prev := p.Snapshot()
			if prev.Boundary == p.outline {
				return prev, err
			}
			// The outline arrived this pass; show it with the last good points.
			return p.publish(p.build(p.points, p.status)), err
		}
		status := domain.FeedStatus{State: domain.FeedFailed, Error: err.Error()}
		return p.publish(p.build(nil, status)), err
	}
	p.metrics.FeedFetches.WithLabelValues("success").Inc()

	points, status := normalizeFeed(records)
	p.metrics.FeedRows.WithLabelValues("accepted").Add(float64(status.Accepted))
	p.metrics.FeedRows.WithLabelValues("dropped").Add(float64(status.Dropped))
	p.fed = true
	p.points, p.status = points, status

	view := p.publish(p.build(points, status))
	p.logger.Info("ingestion complete",
		"accepted", status.Accepted,
		"dropped", status.Dropped,
		"duration", p.opts.Clock.Since(start),
	)
	return view, nil
}

// loadBoundary fetches the outline until one load succeeds.
func (p *Pipeline) loadBoundary(ctx context.Context) {
	if p.boundary == nil || p.outline != nil {
		return
	}
	b, err := p.boundary.Load(ctx)
	if err != nil {
		p.metrics.BoundaryLoads.WithLabelValues("error").Inc()
		p.logger.Warn("boundary unavailable, map renders without outline", "error", err)
		return
	}
	p.metrics.BoundaryLoads.WithLabelValues("success").Inc()
	p.outline = b
}

func (p *Pipeline) build(points []domain.Point, status domain.FeedStatus) *domain.MapView {
	return domain.NewMapView(domain.ViewInput{
		Points:   points,
		Feed:     status,
		Curated:  p.catalog.Curated,
		Artwork:  p.catalog.Artwork,
		Layers:   p.opts.Layers,
		Boundary: p.outline,
		Tree:     p.opts.Tree,
	})
}

func (p *Pipeline) publish(view *domain.MapView) *domain.MapView {
	p.view.Store(view)
	for key, n := range view.Collections.Counts() {
		p.metrics.CollectionSize.WithLabelValues(string(key)).Set(float64(n))
	}
	return view
}
