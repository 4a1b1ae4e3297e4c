package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/sethvargo/go-retry"
)

// ErrQueueFull is reported for jobs dropped because the queue was full.
var ErrQueueFull = errors.New("notification queue full")

// Options tunes a Dispatcher. Zero values fall back to small defaults.
type Options struct {
	QueueSize   int
	Workers     int
	// MaxRetries counts retries after the first attempt.
	MaxRetries  int
	Timeout     time.Duration
	BackoffBase time.Duration
}

func (o *Options) setDefaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = 100
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 200 * time.Millisecond
	}
}

// Stats are the dispatcher counters.
type Stats struct {
	Submitted    uint64 `json:"submitted"`
	Delivered    uint64 `json:"delivered"`
	Failed       uint64 `json:"failed"`
	Dropped      uint64 `json:"dropped"`
	DeadLettered uint64 `json:"dead_lettered"`
}

// Dispatcher runs a fixed pool of workers over a bounded job queue.
// Submit never blocks the caller.
type Dispatcher struct {
	opts       Options
	sender     Sender
	deadLetter DeadLetter
	logger     logging.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan Job
	wg     sync.WaitGroup

	submitted    atomic.Uint64
	delivered    atomic.Uint64
	failed       atomic.Uint64
	dropped      atomic.Uint64
	deadLettered atomic.Uint64
}

func NewDispatcher(sender Sender, deadLetter DeadLetter, logger logging.Logger, opts Options) *Dispatcher {
	opts.setDefaults()
	return &Dispatcher{
		opts:       opts,
		sender:     sender,
		deadLetter: deadLetter,
		logger:     logger.With("module", "notify"),
		jobs:       make(chan Job, opts.QueueSize),
	}
}

// Start launches the workers. They stop once Close is called and the
// queue is drained, or when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.work(ctx)
		}()
	}
	d.logger.Info(ctx, "notification workers started", "workers", d.opts.Workers, "queue_size", d.opts.QueueSize)
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case job, ok := <-d.jobs:
			if !ok {
				return
			}
			_ = d.Handle(ctx, job)
		case <-ctx.Done():
			return
		}
	}
}

// Submit enqueues job and reports whether it was accepted. A full queue or
// a closed dispatcher drops the job.
func (d *Dispatcher) Submit(ctx context.Context, job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn(ctx, "notification dropped: dispatcher closed", "job_id", job.ID, "message_id", job.MessageID)
		return false
	}

	select {
	case d.jobs <- job:
		d.submitted.Add(1)
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn(ctx, "notification dropped", "job_id", job.ID, "message_id", job.MessageID, "error", ErrQueueFull)
		return false
	}
}

// Handle delivers job synchronously with retries. When every attempt fails
// the job is written to the dead-letter sink; Handle returns an error only
// if that also fails, i.e. when the job is lost.
func (d *Dispatcher) Handle(ctx context.Context, job Job) error {
	start := time.Now()
	attempts := 0

	backoff := retry.WithMaxRetries(uint64(d.opts.MaxRetries), retry.NewExponential(d.opts.BackoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()

		err := d.sender.Send(attemptCtx, job)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return err
		}
		d.logger.Debug(ctx, "notification attempt failed", "job_id", job.ID, "attempt", attempts, "error", err)
		return retry.RetryableError(err)
	})

	if err == nil {
		d.delivered.Add(1)
		d.logger.Info(ctx, "notification delivered",
			"job_id", job.ID,
			"message_id", job.MessageID,
			"attempts", attempts,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	d.failed.Add(1)
	d.logger.Error(ctx, "notification failed", "job_id", job.ID, "message_id", job.MessageID, "attempts", attempts, "error", err)

	if d.deadLetter == nil {
		return err
	}

	// the job context may already be cancelled; archiving gets its own budget
	dlCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
	defer cancel()

	if dlErr := d.deadLetter.Store(dlCtx, job, err); dlErr != nil {
		d.logger.Error(ctx, "dead-letter store failed", "job_id", job.ID, "error", dlErr)
		return errors.Join(err, dlErr)
	}
	d.deadLettered.Add(1)
	return nil
}

// Close stops accepting jobs and waits for the workers to drain the queue
// or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Submitted:    d.submitted.Load(),
		Delivered:    d.delivered.Load(),
		Failed:       d.failed.Load(),
		Dropped:      d.dropped.Load(),
		DeadLettered: d.deadLettered.Load(),
	}
}
