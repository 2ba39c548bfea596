package reporting

import (
	"context"
	"log/slog"
	"time"

	"github.com/pharmalink/pharmalink/internal/catalog"
)

// Trend window sizes used by the dashboard.
const (
	WeeklyTrendWindow = 12
	MonthlyTrendWeeks = 26
)

// Service coordinates store reads, the aggregation engine and the cache
// layer. All derived output is a pure function of the fetched snapshot.
type Service struct {
	repo     Repository
	cache    *Cache
	catalog  *catalog.Catalog
	deadline Deadline
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the reporting dependencies.
func NewService(repo Repository, cache *Cache, cat *catalog.Catalog, deadline Deadline, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		catalog:  cat,
		deadline: deadline,
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

// Catalog exposes the injected reference data.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// WeekSummary aggregates one week, cache-aware. A store read failure
// degrades to an empty week rather than failing the dashboard.
func (s *Service) WeekSummary(ctx context.Context, week WeekKey) (WeekSummary, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		subs, err := s.repo.FetchByWeek(ctx, week)
		if err != nil {
			s.warn("fetch week", week, err)
			subs = nil
		}
		return Aggregate(s.catalog, week, subs), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return WeekSummary{}, err
		}
		return value.(WeekSummary), nil
	}

	key, err := s.cache.BuildKey(ctx, keySummary(week))
	if err != nil {
		return WeekSummary{}, err
	}
	var summary WeekSummary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return WeekSummary{}, err
	}
	return summary, nil
}

// WeeklyTrend returns the rolling weekly series ending at week.
func (s *Service) WeeklyTrend(ctx context.Context, week WeekKey, window int) ([]WeekPoint, error) {
	if window <= 0 {
		window = WeeklyTrendWindow
	}
	loader := func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.FetchByWeekSet(ctx, Window(week, window))
		if err != nil {
			s.warn("fetch week set", week, err)
			rows = nil
		}
		return BuildWeeklySeries(s.catalog.Pharmacies(), week, window, rows), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]WeekPoint), nil
	}

	key, err := s.cache.BuildKey(ctx, keyWeeklyTrend(week, window))
	if err != nil {
		return nil, err
	}
	var points []WeekPoint
	if err := s.cache.FetchJSON(ctx, key, &points, loader); err != nil {
		return nil, err
	}
	return points, nil
}

// MonthlyTrend collapses the trailing weeks window into month buckets.
func (s *Service) MonthlyTrend(ctx context.Context, week WeekKey, weeks int) ([]MonthPoint, error) {
	if weeks <= 0 {
		weeks = MonthlyTrendWeeks
	}
	loader := func(ctx context.Context) (interface{}, error) {
		oldest := week.Offset(-(weeks - 1))
		rows, err := s.repo.FetchSince(ctx, oldest)
		if err != nil {
			s.warn("fetch since", oldest, err)
			rows = nil
		}
		return BuildMonthlySeries(s.catalog.Pharmacies(), week, weeks, rows), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]MonthPoint), nil
	}

	key, err := s.cache.BuildKey(ctx, keyMonthlyTrend(week, weeks))
	if err != nil {
		return nil, err
	}
	var points []MonthPoint
	if err := s.cache.FetchJSON(ctx, key, &points, loader); err != nil {
		return nil, err
	}
	return points, nil
}

// WeekMatrix returns the site-by-service revenue grid, cache-aware.
func (s *Service) WeekMatrix(ctx context.Context, week WeekKey) (Matrix, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		subs, err := s.repo.FetchByWeek(ctx, week)
		if err != nil {
			s.warn("fetch week", week, err)
			subs = nil
		}
		return BuildMatrix(s.catalog, week, subs), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Matrix{}, err
		}
		return value.(Matrix), nil
	}

	key, err := s.cache.BuildKey(ctx, keyMatrix(week))
	if err != nil {
		return Matrix{}, err
	}
	var m Matrix
	if err := s.cache.FetchJSON(ctx, key, &m, loader); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

// SiteStatus pairs a roster slot with its evaluated compliance.
type SiteStatus struct {
	Pharmacy   string     `json:"pharmacy"`
	Submitted  bool       `json:"submitted"`
	Revenue    float64    `json:"revenue"`
	Compliance Compliance `json:"compliance"`
}

// WeekCompliance evaluates every roster member for a week against the
// current clock. Never cached: it is a projection of submission state
// against now, recomputed on every read.
func (s *Service) WeekCompliance(ctx context.Context, week WeekKey) ([]SiteStatus, ComplianceCounts, error) {
	subs, err := s.repo.FetchByWeek(ctx, week)
	if err != nil {
		s.warn("fetch week", week, err)
		subs = nil
	}
	byPharmacy := make(map[string]*WeeklySubmission, len(subs))
	for i := range subs {
		byPharmacy[subs[i].Pharmacy] = &subs[i]
	}

	now := s.now()
	statuses := make([]SiteStatus, 0, len(s.catalog.Pharmacies()))
	states := make([]Compliance, 0, len(s.catalog.Pharmacies()))
	for _, name := range s.catalog.Pharmacies() {
		status := SiteStatus{Pharmacy: name}
		var submittedAt *time.Time
		if sub, ok := byPharmacy[name]; ok {
			status.Submitted = true
			status.Revenue, _ = SubmissionTotals(s.catalog, sub)
			at := sub.SubmittedAt
			submittedAt = &at
		}
		status.Compliance = s.deadline.Evaluate(week, submittedAt, now)
		statuses = append(statuses, status)
		states = append(states, status.Compliance)
	}
	return statuses, CountStates(states), nil
}

// Submission returns one stored record, or shared.ErrNotFound.
func (s *Service) Submission(ctx context.Context, pharmacy string, week WeekKey) (*WeeklySubmission, error) {
	return s.repo.FetchOne(ctx, pharmacy, week)
}

func (s *Service) warn(op string, week WeekKey, err error) {
	if s.logger != nil {
		s.logger.Warn("store read degraded to empty set",
			slog.String("op", op),
			slog.String("week", week.String()),
			slog.Any("error", err))
	}
}
