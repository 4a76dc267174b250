package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"resumeats/internal/config"
	apperrors "resumeats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc      *Service
	repo     *MemoryRepository
	queue    *MemoryQueue
	renderer *fakeRenderer
	store    *fakeStore
	metrics  *recordingMetrics
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		repo:     NewMemoryRepository(),
		queue:    NewMemoryQueue(10),
		renderer: &fakeRenderer{},
		store:    newFakeStore(),
		metrics:  &recordingMetrics{},
	}
	cfg := config.OrdersConfig{
		AmountCents:     1000,
		Currency:        "BRL",
		DefaultTemplate: TemplateOptimized,
		RenderTimeout:   time.Second,
		DownloadTTL:     15 * time.Minute,
	}
	f.svc = NewService(cfg, f.repo, f.queue, f.renderer, f.store, nil, nil).WithMetrics(f.metrics)
	return f
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestService_CreateDefaults(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, int64(1000), order.AmountCents)
	assert.Equal(t, "BRL", order.Currency)
	assert.Equal(t, TemplateOptimized, order.TemplateKey)
	assert.False(t, order.CreatedAt.IsZero())

	stored, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.JSONEq(t, validResume, string(stored.ResumeData))
	assert.Equal(t, []Status{StatusPending}, f.metrics.transitions)
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateOrderRequest
		code string
	}{
		{"missing resume", CreateOrderRequest{}, apperrors.ErrCodeInvalidRequest},
		{"unknown template", CreateOrderRequest{ResumeData: json.RawMessage(validResume), TemplateKey: "fancy"}, apperrors.ErrCodeInvalidRequest},
		{"bad email", CreateOrderRequest{ResumeData: json.RawMessage(validResume), BuyerEmail: "nope"}, apperrors.ErrCodeInvalidRequest},
		{"wrong shape", CreateOrderRequest{ResumeData: json.RawMessage(`{"skills": "Go"}`)}, apperrors.ErrCodeInvalidRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), tt.req)
			require.Error(t, err)
			assertAppError(t, err, tt.code)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestService_AcceptsEveryTemplate(t *testing.T) {
	for _, key := range Templates {
		t.Run(key, func(t *testing.T) {
			f := newFixture(t)
			req := createRequest()
			req.TemplateKey = key
			order, err := f.svc.Create(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, key, order.TemplateKey)
		})
	}
}

func TestService_GetUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "missing")
	assertAppError(t, err, apperrors.ErrCodeOrderNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	paid, err := f.svc.Pay(ctx, order.ID, PaymentRequest{Reference: "ref-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, "sandbox", paid.ProviderInfo["provider"])
	assert.Equal(t, "ref-1", paid.ProviderInfo["reference"])
	require.Equal(t, 1, f.queue.Len())

	job, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, order.ID, job.OrderID)

	require.NoError(t, f.svc.Process(ctx, job))

	ready, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, ready.Status)
	assert.Equal(t, BlobKey(order.ID), ready.DownloadPath)
	assert.Contains(t, f.store.blobs, BlobKey(order.ID))

	require.Len(t, f.renderer.docs, 1)
	doc := f.renderer.docs[0]
	assert.Equal(t, "Ana Souza", doc.Record.Personal.Name)
	assert.Equal(t, 100, doc.Report.MaxScore)
	assert.Positive(t, doc.Report.Score)

	url, err := f.svc.DownloadURL(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://blobs.example/orders/"))
	assert.Contains(t, url, "ttl=15m0s")

	assert.Equal(t, []Status{StatusPending, StatusPaid, StatusProcessing, StatusReady}, f.metrics.transitions)
	assert.Equal(t, 1, f.metrics.renders)
}

func TestService_PayTwiceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, createRequest())
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, order.ID, PaymentRequest{})
	require.NoError(t, err)

	_, err = f.svc.Pay(ctx, order.ID, PaymentRequest{})
	assertAppError(t, err, apperrors.ErrCodeInvalidTransition)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, f.queue.Len())
}

func TestService_PayUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Pay(context.Background(), "missing", PaymentRequest{})
	assertAppError(t, err, apperrors.ErrCodeOrderNotFound)
}

func TestService_PayQueueFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.queue = failingQueue{}
	ctx := context.Background()

	order, err := f.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = f.svc.Pay(ctx, order.ID, PaymentRequest{})
	assertAppError(t, err, apperrors.ErrCodeQueueFailed)

	// Without a queued job the order cannot stay paid
	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Contains(t, stored.Error, "queue down")
	assert.Equal(t, []Status{StatusPending, StatusPaid, StatusFailed}, f.metrics.transitions)

	_, err = f.svc.DownloadURL(ctx, order.ID)
	assertAppError(t, err, apperrors.ErrCodeOrderNotReady)
}

func TestService_PayQueueFailureAfterCancel(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	f.svc.queue = cancellingQueue{cancel: cancel}
	_, err = f.svc.Pay(ctx, order.ID, PaymentRequest{})
	assertAppError(t, err, apperrors.ErrCodeQueueFailed)

	stored, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
}

func TestService_DownloadNotReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = f.svc.DownloadURL(ctx, order.ID)
	assertAppError(t, err, apperrors.ErrCodeOrderNotReady)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestService_DownloadStorageUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, createRequest())
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, order.ID, PaymentRequest{})
	require.NoError(t, err)
	require.NoError(t, f.svc.Process(ctx, Job{OrderID: order.ID}))

	f.store.signErr = errors.New("bucket offline")
	_, err = f.svc.DownloadURL(ctx, order.ID)
	assertAppError(t, err, apperrors.ErrCodeStorageUnavailable)
}

func TestService_ProcessFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *serviceFixture)
		code  string
	}{
		{
			name:  "render error",
			setup: func(f *serviceFixture) { f.renderer.err = errors.New("chrome crashed") },
			code:  apperrors.ErrCodeRenderFailed,
		},
		{
			name:  "upload error",
			setup: func(f *serviceFixture) { f.store.putErr = errors.New("bucket offline") },
			code:  apperrors.ErrCodeStorageUnavailable,
		},
		{
			name: "render timeout",
			setup: func(f *serviceFixture) {
				f.renderer.delay = time.Second
				f.svc.cfg.RenderTimeout = 10 * time.Millisecond
			},
			code: apperrors.ErrCodeRenderFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			tt.setup(f)

			order, err := f.svc.Create(ctx, createRequest())
			require.NoError(t, err)
			_, err = f.svc.Pay(ctx, order.ID, PaymentRequest{})
			require.NoError(t, err)

			err = f.svc.Process(ctx, Job{OrderID: order.ID})
			assertAppError(t, err, tt.code)

			failed, err := f.svc.Get(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, failed.Status)
			assert.NotEmpty(t, failed.Error)
			assert.Empty(t, failed.DownloadPath)
		})
	}
}

func TestService_ProcessRequiresPaidOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	err = f.svc.Process(ctx, Job{OrderID: order.ID})
	assertAppError(t, err, apperrors.ErrCodeInvalidTransition)
	assert.Empty(t, f.renderer.docs)

	pending, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, pending.Status)
}

func TestService_Counts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 3 {
		_, err := f.svc.Create(ctx, createRequest())
		require.NoError(t, err)
	}
	order, err := f.svc.Create(ctx, createRequest())
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, order.ID, PaymentRequest{})
	require.NoError(t, err)

	counts, err := f.svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[StatusPending])
	assert.Equal(t, 1, counts[StatusPaid])
}
