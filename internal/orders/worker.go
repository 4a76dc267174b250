package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "resumeats/internal/errors"

	"golang.org/x/sync/errgroup"
)

// JobProcessor handles a single render job
type JobProcessor interface {
	Process(ctx context.Context, job Job) error
}

// Worker consumes render jobs with a fixed number of goroutines
type Worker struct {
	queue     Queue
	processor JobProcessor
	workers   int
	backoff   time.Duration
	logger    *apperrors.Logger
}

func NewWorker(queue Queue, processor JobProcessor, workers int, logger *apperrors.Logger) *Worker {
	if workers <= 0 {
		workers = 1
	}
	return &Worker{
		queue:     queue,
		processor: processor,
		workers:   workers,
		backoff:   time.Second,
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled. Job failures are logged and do not
// stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Render worker started", "workers", w.workers)

	g, gCtx := errgroup.WithContext(ctx)
	for i := range w.workers {
		g.Go(func() error {
			return w.consume(gCtx, i)
		})
	}

	err := g.Wait()
	w.logger.Info("Render worker stopped")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (w *Worker) consume(ctx context.Context, id int) error {
	logger := w.logger.With("consumer", id)

	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.LogError(err, "Failed to dequeue render job")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.backoff):
			}
			continue
		}

		if err := w.process(ctx, job); err != nil {
			logger.LogError(err, "Render job failed", "order_id", job.OrderID)
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render job panicked: %v", r)
		}
	}()
	return w.processor.Process(ctx, job)
}
