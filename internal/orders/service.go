package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resumeats/internal/ats"
	"resumeats/internal/config"
	apperrors "resumeats/internal/errors"
	"resumeats/internal/resume"
	"resumeats/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Metrics receives order pipeline measurements
type Metrics interface {
	RecordTransition(ctx context.Context, status Status)
	RecordRender(ctx context.Context, templateKey string, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordTransition(context.Context, Status) {}
func (noopMetrics) RecordRender(context.Context, string, time.Duration, error) {}

// Service implements the order lifecycle
type Service struct {
	cfg      config.OrdersConfig
	repo     Repository
	queue    Queue
	renderer Renderer
	store    storage.BlobStore
	engine   *ats.Engine
	validate *validator.Validate
	logger   *apperrors.Logger
	metrics  Metrics
	now      func() time.Time
	newID    func() string
}

// NewService wires the order pipeline. A nil engine uses the default
// scoring engine.
func NewService(cfg config.OrdersConfig, repo Repository, queue Queue, renderer Renderer,
	store storage.BlobStore, engine *ats.Engine, logger *apperrors.Logger) *Service {
	if engine == nil {
		engine = ats.NewEngine(ats.Options{})
	}
	return &Service{
		cfg:      cfg,
		repo:     repo,
		queue:    queue,
		renderer: renderer,
		store:    store,
		engine:   engine,
		validate: validator.New(),
		logger:   logger,
		metrics:  noopMetrics{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithMetrics sets the measurement sink
func (s *Service) WithMetrics(m Metrics) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// Create stores a new pending order
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, validationMessage(err), err)
	}
	if err := resume.ValidateShape(req.ResumeData); err != nil {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidRecord, "resumeData is not a valid resume record", err)
	}

	templateKey := req.TemplateKey
	if templateKey == "" {
		templateKey = s.cfg.DefaultTemplate
	}

	now := s.now().UTC()
	order := &Order{
		ID:          s.newID(),
		Status:      StatusPending,
		AmountCents: s.cfg.AmountCents,
		Currency:    s.cfg.Currency,
		TemplateKey: templateKey,
		ResumeData:  req.ResumeData,
		BuyerEmail:  req.BuyerEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, apperrors.NewStorageError(apperrors.ErrCodeStorageUnavailable, "Failed to store order", err)
	}

	s.metrics.RecordTransition(ctx, StatusPending)
	s.logger.Info("Order created", "order_id", order.ID, "template", templateKey)
	return order, nil
}

// Get returns an order by id
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.repoError(id, err)
	}
	return order, nil
}

// Pay confirms the simulated payment of a pending order and queues its render
func (s *Service) Pay(ctx context.Context, id string, req PaymentRequest) (*Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, validationMessage(err), err)
	}

	provider := req.Provider
	if provider == "" {
		provider = "sandbox"
	}
	reference := req.Reference
	if reference == "" {
		reference = "sandbox_" + s.newID()
	}

	order, err := s.transition(ctx, id, StatusPending, Update{
		Status: StatusPaid,
		ProviderInfo: map[string]any{
			"provider":  provider,
			"reference": reference,
			"paidAt":    s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, err
	}

	job := Job{OrderID: order.ID, EnqueuedAt: s.now().UTC()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		// No job will ever claim this order, so it must not stay paid
		failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if _, ferr := s.transition(failCtx, order.ID, StatusPaid, Update{Status: StatusFailed, Error: "render job not queued: " + err.Error()}); ferr != nil {
			s.logger.LogError(ferr, "Failed to mark order as failed", "order_id", order.ID)
		}
		return nil, apperrors.NewInternalError(apperrors.ErrCodeQueueFailed, "Failed to queue render job", err).
			WithContext("order_id", order.ID)
	}

	s.logger.Info("Order paid, render queued", "order_id", order.ID, "provider", provider)
	return order, nil
}

// DownloadURL returns a signed URL for the document of a ready order
func (s *Service) DownloadURL(ctx context.Context, id string) (string, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if order.Status != StatusReady {
		return "", apperrors.NewConflictError(apperrors.ErrCodeOrderNotReady,
			fmt.Sprintf("Order is %s, not ready for download", order.Status), ErrNotReady).
			WithContext("order_id", id)
	}

	url, err := s.store.SignedURL(ctx, order.DownloadPath, s.cfg.DownloadTTL)
	if err != nil {
		return "", apperrors.NewStorageError(apperrors.ErrCodeStorageUnavailable, "Storage unavailable", err).
			WithContext("order_id", id)
	}
	return url, nil
}

// Process renders the order named by job. A paid order is moved to
// processing, rendered, uploaded and marked ready; any failure after the
// order was claimed marks it failed.
func (s *Service) Process(ctx context.Context, job Job) error {
	order, err := s.transition(ctx, job.OrderID, StatusPaid, Update{Status: StatusProcessing})
	if err != nil {
		return err
	}

	key, err := s.renderAndStore(ctx, order)
	if err != nil {
		s.logger.LogError(err, "Order rendering failed", "order_id", order.ID)
		// The claim must be released even if the job context was cancelled
		failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if _, ferr := s.transition(failCtx, order.ID, StatusProcessing, Update{Status: StatusFailed, Error: err.Error()}); ferr != nil {
			s.logger.LogError(ferr, "Failed to mark order as failed", "order_id", order.ID)
		}
		return err
	}

	if _, err := s.transition(ctx, order.ID, StatusProcessing, Update{Status: StatusReady, DownloadPath: key}); err != nil {
		return err
	}

	s.logger.Info("Order ready", "order_id", order.ID, "key", key)
	return nil
}

func (s *Service) renderAndStore(ctx context.Context, order *Order) (string, error) {
	record, err := resume.Decode(order.ResumeData)
	if err != nil {
		return "", fmt.Errorf("invalid resume data: %w", err)
	}

	doc := Document{
		TemplateKey: order.TemplateKey,
		Record:      record,
		Report:      s.engine.Analyze(record, ""),
	}

	renderCtx := ctx
	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}

	start := s.now()
	pdf, err := s.renderer.Render(renderCtx, doc)
	s.metrics.RecordRender(ctx, order.TemplateKey, s.now().Sub(start), err)
	if err != nil {
		return "", apperrors.NewInternalError(apperrors.ErrCodeRenderFailed, "Failed to render PDF", err)
	}

	key := BlobKey(order.ID)
	location, err := s.store.Put(ctx, key, pdf, "application/pdf")
	if err != nil {
		return "", apperrors.NewStorageError(apperrors.ErrCodeStorageUnavailable, "Failed to upload PDF", err)
	}

	s.logger.Debug("Order document stored", "order_id", order.ID, "location", location, "bytes", len(pdf))
	return key, nil
}

// Counts returns the number of orders per status
func (s *Service) Counts(ctx context.Context) (map[Status]int, error) {
	return s.repo.Counts(ctx)
}

// transition checks the lifecycle before asking the repository for an
// atomic compare-and-set
func (s *Service) transition(ctx context.Context, id string, from Status, update Update) (*Order, error) {
	if !from.CanTransition(update.Status) {
		return nil, apperrors.NewConflictError(apperrors.ErrCodeInvalidTransition,
			fmt.Sprintf("Cannot move order from %s to %s", from, update.Status), ErrInvalidTransition)
	}

	order, err := s.repo.Transition(ctx, id, from, update)
	if err != nil {
		return nil, s.repoError(id, err)
	}

	s.metrics.RecordTransition(ctx, update.Status)
	return order, nil
}

func (s *Service) repoError(id string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperrors.NewNotFoundError(apperrors.ErrCodeOrderNotFound, "Order not found", err).
			WithContext("order_id", id)
	case errors.Is(err, ErrInvalidTransition):
		return apperrors.NewConflictError(apperrors.ErrCodeInvalidTransition, "Order is not in the expected status", err).
			WithContext("order_id", id)
	default:
		return apperrors.NewStorageError(apperrors.ErrCodeStorageUnavailable, "Failed to access order", err).
			WithContext("order_id", id)
	}
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
