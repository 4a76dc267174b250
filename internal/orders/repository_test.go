package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepository_TransitionCompareAndSet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	order := &Order{ID: "o1", Status: StatusPending, ResumeData: json.RawMessage(`{}`), CreatedAt: now, UpdatedAt: now}
	if err := repo.Create(ctx, order); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, order); err == nil {
		t.Error("expected duplicate create to fail")
	}

	updated, err := repo.Transition(ctx, "o1", StatusPending, Update{Status: StatusPaid, ProviderInfo: map[string]any{"provider": "sandbox"}})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if updated.Status != StatusPaid || updated.ProviderInfo["provider"] != "sandbox" {
		t.Errorf("unexpected order after transition: %+v", updated)
	}

	if _, err := repo.Transition(ctx, "o1", StatusPending, Update{Status: StatusPaid}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := repo.Transition(ctx, "missing", StatusPending, Update{Status: StatusPaid}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, &Order{ID: "o1", Status: StatusPending, ResumeData: json.RawMessage(`{"a":1}`)}); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.Get(ctx, "o1")
	got.Status = StatusReady
	got.ResumeData[0] = 'X'

	again, _ := repo.Get(ctx, "o1")
	if again.Status != StatusPending || string(again.ResumeData) != `{"a":1}` {
		t.Errorf("stored order was mutated through a returned copy: %+v", again)
	}
}

func TestUpdate_KeepsUnsetFields(t *testing.T) {
	o := &Order{Status: StatusProcessing, DownloadPath: "orders/x.pdf", ProviderInfo: map[string]any{"provider": "sandbox"}}
	Update{Status: StatusFailed, Error: "boom"}.apply(o, time.Unix(0, 0))

	if o.DownloadPath != "orders/x.pdf" || o.ProviderInfo == nil || o.Error != "boom" || o.Status != StatusFailed {
		t.Errorf("unexpected order after update: %+v", o)
	}
}
