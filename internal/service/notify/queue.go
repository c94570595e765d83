package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type dispatcher interface {
	Dispatch(ctx context.Context, job Job) Report
}

type queueObserver interface {
	SetQueueDepth(n int)
	IncQueueDropped()
}

// Queue runs notification jobs on a fixed pool of workers. Enqueue never
// blocks: when the buffer is full the job is dropped.
type Queue struct {
	log        *slog.Logger
	dispatcher dispatcher
	metrics    queueObserver
	jobTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan Job
	wg     sync.WaitGroup
}

// NewQueue starts workers goroutines reading from a buffer of size capacity.
func NewQueue(logger *slog.Logger, d dispatcher, workers, capacity int, jobTimeout time.Duration, m queueObserver) *Queue {
	if workers < 1 {
		workers = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	if m == nil {
		m = nopQueueObserver{}
	}

	q := &Queue{
		log:        logger.With("service", "notify_queue"),
		dispatcher: d,
		metrics:    m,
		jobTimeout: jobTimeout,
		jobs:       make(chan Job, capacity),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// Enqueue hands job to the workers. It returns false if the queue is full
// or shutting down.
func (q *Queue) Enqueue(job Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.log.Warn("notification dropped: queue closed", slog.String("reference", job.Submission.Reference))
		q.metrics.IncQueueDropped()
		return false
	}

	select {
	case q.jobs <- job:
		q.metrics.SetQueueDepth(len(q.jobs))
		return true
	default:
		q.log.Warn("notification dropped: queue full",
			slog.String("reference", job.Submission.Reference),
			slog.Int("capacity", cap(q.jobs)),
		)
		q.metrics.IncQueueDropped()
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or
// for ctx to expire, whichever comes first.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.log.Info("notification queue drained")
		return nil
	case <-ctx.Done():
		q.log.Warn("notification queue drain timed out", slog.Int("pending", len(q.jobs)))
		return ctx.Err()
	}
}

// QueueStats is a point-in-time view of the queue for health reporting.
type QueueStats struct {
	Depth    int
	Capacity int
	Closed   bool
}

// Stats reports the buffered job count, the buffer size and whether
// Shutdown has been called.
func (q *Queue) Stats() QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return QueueStats{Depth: len(q.jobs), Capacity: cap(q.jobs), Closed: q.closed}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.metrics.SetQueueDepth(len(q.jobs))
		q.run(id, job)
	}
}

func (q *Queue) run(id int, job Job) {
	ctx := context.Background()
	if q.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			q.log.Error("notification job panicked",
				slog.Int("worker", id),
				slog.String("reference", job.Submission.Reference),
				slog.Any("panic", r),
			)
		}
	}()

	report := q.dispatcher.Dispatch(ctx, job)
	q.log.Debug("notification job done",
		slog.Int("worker", id),
		slog.String("reference", job.Submission.Reference),
		slog.String("admin", report.Admin),
		slog.String("submitter", report.Submitter),
	)
}

type nopQueueObserver struct{}

func (nopQueueObserver) SetQueueDepth(int) {}
func (nopQueueObserver) IncQueueDropped()  {}
