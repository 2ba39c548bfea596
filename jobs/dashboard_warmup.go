package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pharmalink/pharmalink/internal/jobs"
	"github.com/pharmalink/pharmalink/internal/reporting"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DashboardWarmupJob pre-populates the dashboard caches after a write or
// on schedule, so the first reader of a week never pays the fetch.
type DashboardWarmupJob struct {
	Reporting *reporting.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(reportingSvc *reporting.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Reporting: reportingSvc,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reporting == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	week, err := reporting.ParseWeek(payload.Week)
	if err != nil {
		// A garbled week is permanent; retrying cannot fix it.
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("week", week.String()))
	logger.Info("starting dashboard warmup")

	start := j.now()
	if err := j.warmWeek(ctx, week); err != nil {
		resultErr = err
		logger.Error("warm week", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed dashboard warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *DashboardWarmupJob) warmWeek(ctx context.Context, week reporting.WeekKey) error {
	// Bound each warmup so a slow store cannot pin a worker slot.
	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Reporting.WeekSummary(warmCtx, week); err != nil {
		return err
	}
	// The overview also compares against the prior week.
	if _, err := j.Reporting.WeekSummary(warmCtx, week.Offset(-1)); err != nil {
		return err
	}
	if _, err := j.Reporting.WeekMatrix(warmCtx, week); err != nil {
		return err
	}
	if _, err := j.Reporting.WeeklyTrend(warmCtx, week, reporting.WeeklyTrendWindow); err != nil {
		return err
	}
	if _, err := j.Reporting.MonthlyTrend(warmCtx, week, reporting.MonthlyTrendWeeks); err != nil {
		return err
	}
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
