// Package service wires the queue, the worker pool and the scoring engine
// into the business service used by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	eventqueue "github.com/okian/proofscore/internal/adapters/mq/queue"
	workerpool "github.com/okian/proofscore/internal/adapters/mq/worker"
	"github.com/okian/proofscore/internal/domain/model"
	"github.com/okian/proofscore/internal/domain/record"
	"github.com/okian/proofscore/internal/domain/scoring"
	"github.com/okian/proofscore/pkg/logger"
	"github.com/okian/proofscore/pkg/metrics"
)

// Sentinel errors returned by the service.
var (
	ErrBackpressure = errors.New("queue full")
	ErrNotStarted   = errors.New("service not started")
)

// Service evaluates submissions on a pool of workers.
type Service struct {
	mu sync.RWMutex

	// Core components
	jobQueue   *eventqueue.InMemoryQueue
	evaluator  scoring.Evaluator
	workerPool *workerpool.Pool

	// Configuration
	workerCount    int
	queueSize      int
	scoringOptions []scoring.Option

	// State
	started   bool
	evaluated atomic.Int64
	accepted  atomic.Int64
	rejected  atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScoringOptions configures the validator built on Start.
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.scoringOptions = append(s.scoringOptions, opts...)
	}
}

// WithEvaluator replaces the validator built on Start.
func WithEvaluator(e scoring.Evaluator) Option {
	return func(s *Service) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the queue and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.evaluator == nil {
		opts := append([]scoring.Option{scoring.WithLogger(s.logger.Named("scoring"))}, s.scoringOptions...)
		s.evaluator = scoring.NewValidator(opts...)
	}

	s.jobQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, tally{Evaluator: s.evaluator, s: s},
		workerpool.WithLogger(s.logger.Named("worker")),
	)
	// Workers outlive the Start context; Stop drains them.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Stop closes the queue and waits until every queued submission is evaluated.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping scoring service...")
	s.started = false

	if err := s.workerPool.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop workers: %w", err)
	}

	s.logger.Info(ctx, "scoring service stopped")
	return nil
}

// Evaluate scores a single record.
func (s *Service) Evaluate(ctx context.Context, rec record.Record) (model.Evaluation, error) {
	out, err := s.EvaluateBatch(ctx, []record.Record{rec})
	if err != nil {
		return model.Evaluation{}, err
	}
	return out[0], nil
}

// EvaluateBatch scores recs on the worker pool. The result is in input order.
// Nothing is returned when the queue cannot take the whole batch.
func (s *Service) EvaluateBatch(ctx context.Context, recs []record.Record) ([]model.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	metrics.RecordBatchSize(len(recs))

	// Buffered to the batch size so workers never block on a caller that gave up.
	reply := make(chan model.Evaluation, len(recs))
	for i, rec := range recs {
		job := model.Job{
			Submission: model.NewSubmission(rec),
			Index:      i,
			Reply:      reply,
		}
		if !s.jobQueue.Enqueue(ctx, job) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.logger.Warn(ctx, "queue full, rejecting batch",
				logger.Int("batchSize", len(recs)),
				logger.Int("enqueued", i),
			)
			return nil, fmt.Errorf("enqueue record %d: %w", i, ErrBackpressure)
		}
	}

	out := make([]model.Evaluation, len(recs))
	for range recs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev := <-reply:
			out[ev.Index] = ev
		}
	}
	return out, nil
}

// tally counts every evaluation a worker finishes, including jobs whose
// batch was abandoned after they were queued.
type tally struct {
	scoring.Evaluator
	s *Service
}

func (t tally) Evaluate(ctx context.Context, rec record.Record) scoring.Report {
	report := t.Evaluator.Evaluate(ctx, rec)
	t.s.count(report.Outcome)
	return report
}

func (s *Service) count(o scoring.Outcome) {
	s.evaluated.Add(1)
	if o.IsAccepted() {
		s.accepted.Add(1)
		return
	}
	s.rejected.Add(1)
}

// Stats is a point-in-time snapshot of the service counters.
type Stats struct {
	Started     bool  `json:"started"`
	WorkerCount int   `json:"workerCount"`
	QueueSize   int   `json:"queueSize"`
	QueueLength int   `json:"queueLength"`
	Evaluated   int64 `json:"evaluated"`
	Accepted    int64 `json:"accepted"`
	Rejected    int64 `json:"rejected"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Started:     s.started,
		WorkerCount: s.workerCount,
		QueueSize:   s.queueSize,
		Evaluated:   s.evaluated.Load(),
		Accepted:    s.accepted.Load(),
		Rejected:    s.rejected.Load(),
	}
	if s.started {
		stats.QueueLength = s.jobQueue.Len(ctx)
	}
	return stats
}
