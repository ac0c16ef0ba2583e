package leads

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/phbpx/leads-api/metrics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Pagination defaults and bounds for List.
const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// Service runs the business rules for leads on top of a Repository.
type Service struct {
	repo    Repository
	fetcher BirthDateFetcher
	log     *otelzap.SugaredLogger
	metrics *metrics.Metrics
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithMetrics records lead outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds a Service. The repository is required; a nil fetcher
// disables enrichment.
func NewService(repo Repository, fetcher BirthDateFetcher, log *otelzap.SugaredLogger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("lead repository is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	s := &Service{
		repo:    repo,
		fetcher: fetcher,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer("github.com/phbpx/leads-api")
}

// Create validates the submission, enriches it with a birth date when one is
// available and stores it. A duplicated email yields a *ConflictError.
func (s *Service) Create(ctx context.Context, nl NewLead) (Lead, error) {
	if s == nil || s.repo == nil {
		return Lead{}, ErrNotReady
	}

	ctx, span := s.tracer().Start(ctx, "leads.Create")
	defer span.End()

	if err := nl.Validate(); err != nil {
		return Lead{}, err
	}

	var birthDate *string
	if s.fetcher != nil {
		birthDate = s.fetcher.BirthDate(ctx)
	}
	span.SetAttributes(attribute.Bool("lead.enriched", birthDate != nil))

	lead := Lead{
		Name:      nl.Name,
		Email:     nl.Email,
		Phone:     nl.Phone,
		BirthDate: birthDate,
	}

	stored, err := s.repo.Insert(ctx, lead)
	if err != nil {
		if errors.Is(err, ErrDuplicatedLead) {
			s.metrics.IncrementConflicts()
			return Lead{}, &ConflictError{Message: ConflictMessage}
		}
		span.RecordError(err)
		return Lead{}, fmt.Errorf("inserting lead: %w", err)
	}

	s.metrics.IncrementLeadsCreated()
	s.log.InfowContext(ctx, "lead created", "id", stored.ID)
	return stored, nil
}

// List returns a page of leads in insertion order. Zero values select the
// defaults; anything below 1, a perPage above MaxPerPage or a page whose
// offset overflows an int is rejected.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Lead, error) {
	if s == nil || s.repo == nil {
		return nil, ErrNotReady
	}

	if page == 0 {
		page = DefaultPage
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return nil, &ValidationError{Field: "page", Message: "page must be greater than or equal to 1"}
	}
	if perPage < 1 || perPage > MaxPerPage {
		return nil, &ValidationError{Field: "per_page", Message: fmt.Sprintf("per_page must be between 1 and %d", MaxPerPage)}
	}
	// The store offset is (page-1)*perPage and must not overflow.
	if page-1 > math.MaxInt/perPage {
		return nil, &ValidationError{Field: "page", Message: "page is out of range"}
	}

	ctx, span := s.tracer().Start(ctx, "leads.List")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page), attribute.Int("per_page", perPage))

	leads, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return leads, nil
}

// GetByID returns ErrLeadNotFound both for unknown ids and for ids that are
// not valid for the store.
func (s *Service) GetByID(ctx context.Context, id string) (Lead, error) {
	if s == nil || s.repo == nil {
		return Lead{}, ErrNotReady
	}

	ctx, span := s.tracer().Start(ctx, "leads.GetByID")
	defer span.End()

	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			return Lead{}, ErrLeadNotFound
		}
		span.RecordError(err)
		return Lead{}, fmt.Errorf("finding lead %q: %w", id, err)
	}
	return lead, nil
}
