package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"InsightStream/internal/ports"
)

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CronScheduler triggers a job on a cron expression in a fixed timezone.
type CronScheduler struct {
	spec       string
	schedule   cron.Schedule
	location   *time.Location
	runOnStart bool

	mu   sync.Mutex
	cron *cron.Cron
	stop chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates spec and binds it to loc. Five-field expressions
// fire at second zero; six-field expressions carry their own seconds.
func NewCronScheduler(spec string, loc *time.Location, runOnStart bool) (*CronScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	spec = normalizeCron(spec)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", spec, err)
	}
	return &CronScheduler{spec: spec, schedule: schedule, location: loc, runOnStart: runOnStart}, nil
}

// Next reports the first activation strictly after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	return c.schedule.Next(t.In(c.location))
}

// Start registers job and begins ticking until Stop or ctx cancellation.
// Overlapping activations are skipped while a previous run is still going.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	runner := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(c.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := runner.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}

	stop := make(chan struct{})
	c.cron, c.stop = runner, stop
	runner.Start()

	if c.runOnStart {
		go job(time.Now().In(c.location))
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop(context.Background())
		case <-stop:
		}
	}()

	return nil
}

// Stop halts the scheduler and waits for a running job, bounded by ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner, stop := c.cron, c.stop
	c.cron, c.stop = nil, nil
	c.mu.Unlock()

	if runner == nil {
		return nil
	}
	close(stop)

	done := runner.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// normalizeCron prepends "0 " to standard 5-field expressions.
func normalizeCron(spec string) string {
	spec = strings.TrimSpace(spec)
	if len(strings.Fields(spec)) == 5 {
		return "0 " + spec
	}
	return spec
}
