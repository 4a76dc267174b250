// Package orders runs the sandboxed purchase flow: an order is created with
// a résumé payload, paid through a simulated provider, rendered to PDF by a
// background worker and finally downloaded through a signed URL.
package orders

import (
	"encoding/json"
	"errors"
	"slices"
	"time"
)

// Status is the lifecycle state of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusPaid},
	StatusPaid:       {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusReady, StatusFailed},
}

// CanTransition reports whether an order in s may move to next
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Terminal reports whether no further transition is possible
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotReady          = errors.New("order is not ready")
)

// Template keys accepted by the renderer
const (
	TemplateOptimized    = "optimized"
	TemplateCompact      = "compact"
	TemplateSimple       = "simple"
	TemplateTwoColumn    = "twocolumn"
	TemplateProfessional = "professional"
)

// Templates lists every known template key
var Templates = []string{
	TemplateOptimized,
	TemplateCompact,
	TemplateSimple,
	TemplateTwoColumn,
	TemplateProfessional,
}

// Order is a single purchase of a rendered résumé
type Order struct {
	ID           string          `json:"id"`
	Status       Status          `json:"status"`
	AmountCents  int64           `json:"amountCents"`
	Currency     string          `json:"currency"`
	TemplateKey  string          `json:"templateKey"`
	ResumeData   json.RawMessage `json:"resumeData"`
	BuyerEmail   string          `json:"buyerEmail,omitempty"`
	ProviderInfo map[string]any  `json:"providerInfo,omitempty"`
	DownloadPath string          `json:"downloadPath,omitempty"`
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CreateOrderRequest is the payload of a new order
type CreateOrderRequest struct {
	ResumeData  json.RawMessage `json:"resumeData" validate:"required"`
	TemplateKey string          `json:"templateKey" validate:"omitempty,oneof=optimized compact simple twocolumn professional"`
	BuyerEmail  string          `json:"buyerEmail" validate:"omitempty,email,max=254"`
}

// PaymentRequest confirms a simulated payment
type PaymentRequest struct {
	Provider  string `json:"provider" validate:"omitempty,max=40"`
	Reference string `json:"reference" validate:"omitempty,max=120"`
}

// Update is applied atomically together with a status change. Empty
// fields leave the stored value untouched.
type Update struct {
	Status       Status
	ProviderInfo map[string]any
	DownloadPath string
	Error        string
}

func (u Update) apply(o *Order, now time.Time) {
	o.Status = u.Status
	if u.ProviderInfo != nil {
		o.ProviderInfo = u.ProviderInfo
	}
	if u.DownloadPath != "" {
		o.DownloadPath = u.DownloadPath
	}
	if u.Error != "" {
		o.Error = u.Error
	}
	o.UpdatedAt = now
}

// Job asks the worker to render an order
type Job struct {
	OrderID    string    `json:"orderId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// BlobKey is the storage key of an order's rendered document
func BlobKey(orderID string) string {
	return "orders/" + orderID + ".pdf"
}
