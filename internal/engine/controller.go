package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/newagedev/animalcompare/internal/model"
)

// Controller keeps one category's backlog full. It watches backlog change
// notifications and, when the backlog runs below the refill threshold,
// launches one refill-then-recycle job. At most one job per category is
// ever in flight: low-size signals arriving mid-job are dropped, which is
// the single-flight guarantee that prevents redundant source calls and
// duplicate-insert races. Observation and triggering never block the
// consumer-facing read path.
type Controller struct {
	cat        model.Category
	pipeline   *Pipeline
	threshold  int
	loadAmount int
	notify     <-chan struct{}

	// wake re-evaluates the backlog after a job completes, covering
	// notifications that were dropped while the job was in flight.
	wake chan struct{}

	mu       sync.Mutex
	inFlight bool
	jobs     sync.WaitGroup
}

// NewController creates a controller for one category. notify is the
// category's backlog change channel from the store notifier.
func NewController(cat model.Category, pipeline *Pipeline, notify <-chan struct{}) *Controller {
	return &Controller{
		cat:        cat,
		pipeline:   pipeline,
		threshold:  pipeline.opts.LoadAmount / 2,
		loadAmount: pipeline.opts.LoadAmount,
		notify:     notify,
		wake:       make(chan struct{}, 1),
	}
}

// Run watches the backlog until ctx is cancelled. It blocks, so callers
// start it on its own goroutine (one per category).
func (c *Controller) Run(ctx context.Context) error {
	slog.Info("controller started", "category", c.cat, "threshold", c.threshold)

	// The backlog may already be thin at startup, before any change
	// notification arrives.
	c.check(ctx)

	for {
		select {
		case <-ctx.Done():
			c.jobs.Wait()
			slog.Info("controller stopped", "category", c.cat)
			return ctx.Err()
		case <-c.notify:
			c.check(ctx)
		case <-c.wake:
			c.check(ctx)
		}
	}
}

// check triggers a replenishment job when the backlog is thin and no job
// is already running.
func (c *Controller) check(ctx context.Context) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return
	}

	size, err := c.pipeline.store.BacklogCount(ctx, c.cat)
	if err != nil {
		c.mu.Unlock()
		slog.Error("backlog size check failed", "category", c.cat, "error", err)
		return
	}
	if size >= c.threshold {
		c.mu.Unlock()
		return
	}

	c.inFlight = true
	c.mu.Unlock()

	c.jobs.Add(1)
	go c.runJob(ctx)
}

// runJob executes one refill followed by one recycle pass. Failures roll
// back inside the store and the controller simply returns to idle; the
// next low-size signal retries.
func (c *Controller) runJob(ctx context.Context) {
	defer c.jobs.Done()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
		// Re-evaluate: the backlog may have drained further while the
		// job was running.
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}()

	fetched, err := c.pipeline.Refill(ctx, c.cat, c.loadAmount)
	if err != nil {
		slog.Error("refill failed", "category", c.cat, "error", err)
		return
	}
	slog.Info("refilled backlog", "category", c.cat, "fetched", len(fetched))

	recycled, err := c.pipeline.Recycle(ctx, c.cat)
	if err != nil {
		slog.Error("recycle failed", "category", c.cat, "error", err)
		return
	}
	if recycled > 0 {
		slog.Info("recycled animals", "category", c.cat, "count", recycled)
	}
}
