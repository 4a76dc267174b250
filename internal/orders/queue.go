package orders

import "context"

// Queue carries render jobs from the API to the worker
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available or ctx is done
	Dequeue(ctx context.Context) (Job, error)
	Close() error
}

// MemoryQueue is an in-process queue backed by a buffered channel
type MemoryQueue struct {
	jobs chan Job
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 100
	}
	return &MemoryQueue{jobs: make(chan Job, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Len returns the number of waiting jobs
func (q *MemoryQueue) Len() int { return len(q.jobs) }

func (q *MemoryQueue) Close() error { return nil }
