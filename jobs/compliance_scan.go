package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pharmalink/pharmalink/internal/jobs"
	"github.com/pharmalink/pharmalink/internal/reporting"
)

// Mailer enqueues reminder mail; the worker's Client satisfies it.
type Mailer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// ComplianceScanJob evaluates the running week and nudges overdue sites.
type ComplianceScanJob struct {
	Reporting *reporting.Service
	Mailer    Mailer
	OpsEmail  string
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewComplianceScanJob wires dependencies for the scan handler.
func NewComplianceScanJob(reportingSvc *reporting.Service, mailer Mailer, opsEmail string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ComplianceScanJob {
	return &ComplianceScanJob{
		Reporting: reportingSvc,
		Mailer:    mailer,
		OpsEmail:  opsEmail,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes compliance scan tasks against the week of the run.
func (j *ComplianceScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reporting == nil {
		return errors.New("compliance scan: handler not configured")
	}

	tracker := j.metrics().Track(TaskComplianceScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	week := reporting.WeekOf(j.now())
	logger := j.logger().With(slog.String("week", week.String()))

	statuses, counts, err := j.Reporting.WeekCompliance(ctx, week)
	if err != nil {
		resultErr = err
		logger.Error("evaluate compliance", slog.Any("error", err))
		return resultErr
	}
	j.metrics().SetOverdueSites(week.String(), counts.Overdue)

	if counts.Overdue == 0 {
		logger.Info("compliance scan clean", slog.Int("on_time", counts.OnTime), slog.Int("pending", counts.Pending))
		return resultErr
	}

	overdue := make([]string, 0, counts.Overdue)
	for _, status := range statuses {
		if status.Compliance.State == reporting.StateOverdue {
			overdue = append(overdue, status.Pharmacy)
		}
	}
	logger.Warn("overdue sites detected", slog.Int("count", len(overdue)), slog.Any("sites", overdue))

	if j.Mailer == nil || j.OpsEmail == "" {
		return resultErr
	}
	for _, site := range overdue {
		payload := SendEmailPayload{
			To:      j.OpsEmail,
			Subject: fmt.Sprintf("Missing weekly report: %s (w/c %s)", site, week),
			Body:    fmt.Sprintf("%s has not submitted its weekly report for the week commencing %s. Please chase the site.", site, week),
		}
		if _, err := j.Mailer.EnqueueSendEmail(ctx, payload); err != nil {
			resultErr = err
			logger.Error("enqueue reminder", slog.String("site", site), slog.Any("error", err))
			return resultErr
		}
	}
	return resultErr
}

func (j *ComplianceScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskComplianceScan))
	}
	return slog.Default().With(slog.String("job", TaskComplianceScan))
}

func (j *ComplianceScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ComplianceScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
