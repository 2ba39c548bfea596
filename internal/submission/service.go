// Package submission handles weekly report intake: validation,
// normalisation, persistence and cache invalidation.
package submission

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pharmalink/pharmalink/internal/catalog"
	"github.com/pharmalink/pharmalink/internal/reporting"
	"github.com/pharmalink/pharmalink/internal/shared"
)

// Enqueuer schedules a dashboard warmup after a write.
type Enqueuer interface {
	EnqueueDashboardWarmup(ctx context.Context, week reporting.WeekKey) error
}

// Input is the submit payload before normalisation.
type Input struct {
	Pharmacy string             `json:"pharmacy" validate:"required"`
	Week     string             `json:"week" validate:"required"`
	Counts   map[string]int     `json:"counts"`
	Revenues map[string]float64 `json:"revenues"`
	Notes    string             `json:"notes" validate:"max=2000"`
}

// Service validates and persists weekly submissions.
type Service struct {
	repo     reporting.Repository
	cache    *reporting.Cache
	catalog  *catalog.Catalog
	enqueuer Enqueuer
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the intake dependencies. Enqueuer may be nil when no
// worker is deployed.
func NewService(repo reporting.Repository, cache *reporting.Cache, cat *catalog.Catalog, enqueuer Enqueuer, validate *validator.Validate, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		catalog:  cat,
		enqueuer: enqueuer,
		validate: validate,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Submit normalises, persists and invalidates. Any week may be written,
// past or future; a resubmission replaces the stored record in full.
func (s *Service) Submit(ctx context.Context, in Input) (*reporting.WeeklySubmission, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if !s.catalog.HasPharmacy(in.Pharmacy) {
		return nil, shared.ErrUnknownPharmacy
	}
	week, err := reporting.ParseWeek(in.Week)
	if err != nil {
		return nil, err
	}

	sub := reporting.WeeklySubmission{
		Pharmacy:    in.Pharmacy,
		Week:        week,
		Counts:      s.normalizeCounts(in.Counts),
		Revenues:    s.normalizeRevenues(in.Revenues),
		Notes:       in.Notes,
		SubmittedAt: s.now(),
	}
	sub.TotalRevenue, sub.TotalSessions = reporting.SubmissionTotals(s.catalog, &sub)

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	// The write is durable from here on; invalidation and warmup are best
	// effort, stale reads age out via the cache TTL.
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("cache bump failed after submit", slog.Any("error", err))
		}
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueDashboardWarmup(ctx, week); err != nil {
			s.logger.Warn("warmup enqueue failed", slog.Any("error", err))
		}
	}
	return &sub, nil
}

// Prefill returns the stored record for (pharmacy, week), or
// shared.ErrNotFound when the site has not reported that week.
func (s *Service) Prefill(ctx context.Context, pharmacy string, week reporting.WeekKey) (*reporting.WeeklySubmission, error) {
	if !s.catalog.HasPharmacy(pharmacy) {
		return nil, shared.ErrUnknownPharmacy
	}
	return s.repo.FetchOne(ctx, pharmacy, week)
}

// normalizeCounts drops unknown service ids, clamps negatives to zero and
// keeps only fixed-fee services.
func (s *Service) normalizeCounts(counts map[string]int) map[string]int {
	out := make(map[string]int)
	for id, n := range counts {
		svc, ok := s.catalog.Service(id)
		if !ok || !svc.Fixed() {
			continue
		}
		if n < 0 {
			n = 0
		}
		out[id] = n
	}
	return out
}

// normalizeRevenues keeps only variable-revenue services.
func (s *Service) normalizeRevenues(revenues map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for id, v := range revenues {
		svc, ok := s.catalog.Service(id)
		if !ok || svc.Fixed() {
			continue
		}
		if v < 0 {
			v = 0
		}
		out[id] = v
	}
	return out
}
