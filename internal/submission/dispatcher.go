// Package submission forwards user interactions to external sinks without
// blocking the request that produced them.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/shady-map-service/internal/domain"
	"github.com/couchcryptid/shady-map-service/internal/observability"
)

var (
	// ErrQueueFull is returned by Submit when the backlog is at capacity.
	ErrQueueFull = errors.New("submission queue full")
	// ErrStopped is returned by Submit after the dispatcher has shut down.
	ErrStopped = errors.New("submission dispatcher stopped")
)

// Sink receives forwarded submissions.
type Sink interface {
	Name() string
	Send(ctx context.Context, sub domain.Submission) error
}

// Options tunes the dispatcher.
type Options struct {
	QueueSize     int
	RatePerSecond float64
	SendTimeout   time.Duration
}

// Dispatcher queues submissions and delivers them to every sink from a
// single background worker. Delivery is best effort: failures are logged
// and counted, never retried.
type Dispatcher struct {
	sinks   []Sink
	queue   chan domain.Submission
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
	stopped atomic.Bool
}

// NewDispatcher creates a dispatcher delivering to sinks.
func NewDispatcher(sinks []Sink, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &Dispatcher{
		sinks:   sinks,
		queue:   make(chan domain.Submission, opts.QueueSize),
		limiter: rate.NewLimiter(limit, 1),
		timeout: opts.SendTimeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Enabled reports whether any sink is configured.
func (d *Dispatcher) Enabled() bool {
	return len(d.sinks) > 0
}

// Submit enqueues sub without blocking. With no sinks configured the
// submission is discarded and Submit returns nil.
func (d *Dispatcher) Submit(sub domain.Submission) error {
	if d.stopped.Load() {
		return ErrStopped
	}
	if !d.Enabled() {
		d.logger.Debug("submission discarded, no sinks configured", "kind", sub.Kind)
		return nil
	}
	select {
	case d.queue <- sub:
		d.metrics.SubmissionQueued.Set(float64(len(d.queue)))
		return nil
	default:
		d.metrics.Submissions.WithLabelValues(string(sub.Kind), "dropped").Inc()
		d.logger.Warn("submission dropped, queue full", "kind", sub.Kind, "session", sub.SessionID)
		return ErrQueueFull
	}
}

// Run delivers queued submissions until ctx is cancelled, then delivers
// whatever is still queued without rate limiting and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.stopped.Store(true)
	for {
		select {
		case <-ctx.Done():
			d.flush()
			return nil
		case sub := <-d.queue:
			d.metrics.SubmissionQueued.Set(float64(len(d.queue)))
			if err := d.limiter.Wait(ctx); err != nil {
				d.deliver(sub)
				d.flush()
				return nil
			}
			d.deliver(sub)
		}
	}
}

func (d *Dispatcher) flush() {
	d.stopped.Store(true)
	for {
		select {
		case sub := <-d.queue:
			d.deliver(sub)
		default:
			d.metrics.SubmissionQueued.Set(0)
			return
		}
	}
}

// deliver sends sub to every sink. Each send gets its own timeout detached
// from any request context.
func (d *Dispatcher) deliver(sub domain.Submission) {
	for _, sink := range d.sinks {
		ctx, cancel := d.sendContext()
		err := sink.Send(ctx, sub)
		cancel()
		if err != nil {
			d.metrics.Submissions.WithLabelValues(string(sub.Kind), "failed").Inc()
			d.logger.Warn("submission delivery failed",
				"sink", sink.Name(), "kind", sub.Kind, "session", sub.SessionID, "error", err)
			continue
		}
		d.metrics.Submissions.WithLabelValues(string(sub.Kind), "sent").Inc()
	}
}

func (d *Dispatcher) sendContext() (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d.timeout)
}
