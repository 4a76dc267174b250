package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingProcessor struct {
	mu    sync.Mutex
	seen  []string
	done  chan struct{}
	want  int
	fail  string
	panic string
}

func (p *countingProcessor) Process(_ context.Context, job Job) error {
	p.mu.Lock()
	p.seen = append(p.seen, job.OrderID)
	n := len(p.seen)
	p.mu.Unlock()

	if n == p.want {
		close(p.done)
	}
	if job.OrderID == p.panic {
		panic("boom")
	}
	if job.OrderID == p.fail {
		return errors.New("render failed")
	}
	return nil
}

func TestWorker_ProcessesAllJobsAndSurvivesFailures(t *testing.T) {
	queue := NewMemoryQueue(10)
	proc := &countingProcessor{done: make(chan struct{}), want: 4, fail: "b", panic: "c"}
	worker := NewWorker(queue, proc, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, id := range []string{"a", "b", "c", "d"} {
		if err := queue.Enqueue(ctx, Job{OrderID: id}); err != nil {
			t.Fatal(err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- worker.Run(ctx) }()

	select {
	case <-proc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not process all jobs")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestWorker_EndToEndWithService(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	order, err := f.svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatal(err)
	}

	worker := NewWorker(f.queue, f.svc, 1, nil)
	go func() { _ = worker.Run(ctx) }()

	if _, err := f.svc.Pay(ctx, order.ID, PaymentRequest{}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := f.svc.Get(ctx, order.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status == StatusReady {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("order did not become ready")
}
