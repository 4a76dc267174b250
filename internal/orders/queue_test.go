package orders

import (
	"context"
	"testing"
	"time"
)

func TestMemoryQueue_FIFO(t *testing.T) {
	q := NewMemoryQueue(3)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, Job{OrderID: id}); err != nil {
			t.Fatalf("Enqueue(%s) error = %v", id, err)
		}
	}

	for _, want := range []string{"a", "b", "c"} {
		job, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue() error = %v", err)
		}
		if job.OrderID != want {
			t.Errorf("Dequeue() = %s, want %s", job.OrderID, want)
		}
	}
}

func TestMemoryQueue_BlockingRespectsContext(t *testing.T) {
	q := NewMemoryQueue(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Dequeue(ctx); err == nil {
		t.Error("expected error dequeuing from an empty queue")
	}

	if err := q.Enqueue(context.Background(), Job{OrderID: "a"}); err != nil {
		t.Fatal(err)
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if err := q.Enqueue(ctx2, Job{OrderID: "b"}); err == nil {
		t.Error("expected error enqueuing into a full queue")
	}
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPaid, StatusProcessing, true},
		{StatusPaid, StatusFailed, true},
		{StatusProcessing, StatusReady, true},
		{StatusProcessing, StatusFailed, true},
		{StatusPending, StatusProcessing, false},
		{StatusPending, StatusReady, false},
		{StatusPaid, StatusReady, false},
		{StatusReady, StatusPending, false},
		{StatusFailed, StatusProcessing, false},
		{StatusReady, StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}

	if !StatusReady.Terminal() || !StatusFailed.Terminal() || StatusPaid.Terminal() {
		t.Error("unexpected Terminal() result")
	}
}
