package orders

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

const validResume = `{
	"personal": {"name": "Ana Souza", "email": "ana@example.com", "phone": "+55 11 91234-5678", "address": "São Paulo"},
	"summary": "Desenvolvedora backend com foco em Go e sistemas distribuídos.",
	"skills": [{"id": "1", "name": "Go"}, {"id": "2", "name": "PostgreSQL"}]
}`

type fakeRenderer struct {
	mu    sync.Mutex
	err   error
	docs  []Document
	delay time.Duration
}

func (f *fakeRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 " + doc.TemplateKey), nil
}

type fakeStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	putErr  error
	signErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.blobs[key] = data
	return "mem://" + key, nil
}

func (f *fakeStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://blobs.example/" + key + "?ttl=" + ttl.String(), nil
}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, Job) error { return errors.New("queue down") }
func (failingQueue) Dequeue(ctx context.Context) (Job, error) {
	<-ctx.Done()
	return Job{}, ctx.Err()
}
func (failingQueue) Close() error { return nil }

// cancellingQueue cancels the caller's context before failing, like a
// client disconnecting mid-request
type cancellingQueue struct {
	failingQueue
	cancel context.CancelFunc
}

func (q cancellingQueue) Enqueue(ctx context.Context, job Job) error {
	q.cancel()
	return q.failingQueue.Enqueue(ctx, job)
}

type recordingMetrics struct {
	mu          sync.Mutex
	transitions []Status
	renders     int
}

func (m *recordingMetrics) RecordTransition(_ context.Context, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, status)
}

func (m *recordingMetrics) RecordRender(context.Context, string, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
}

func createRequest() CreateOrderRequest {
	return CreateOrderRequest{ResumeData: json.RawMessage(validResume)}
}
