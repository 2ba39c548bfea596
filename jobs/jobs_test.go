package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pharmalink/pharmalink/internal/catalog"
	jobmetrics "github.com/pharmalink/pharmalink/internal/jobs"
	"github.com/pharmalink/pharmalink/internal/reporting"
)

type fakeRepo struct {
	subs        []reporting.WeeklySubmission
	summaryHits int
	rangeHits   int
}

func (f *fakeRepo) FetchByWeek(ctx context.Context, week reporting.WeekKey) ([]reporting.WeeklySubmission, error) {
	f.summaryHits++
	var out []reporting.WeeklySubmission
	for _, sub := range f.subs {
		if sub.Week == week {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeRepo) FetchByWeekSet(ctx context.Context, weeks []reporting.WeekKey) ([]reporting.SubmissionTotal, error) {
	f.rangeHits++
	return nil, nil
}

func (f *fakeRepo) FetchSince(ctx context.Context, week reporting.WeekKey) ([]reporting.SubmissionTotal, error) {
	f.rangeHits++
	return nil, nil
}

func (f *fakeRepo) FetchOne(ctx context.Context, pharmacy string, week reporting.WeekKey) (*reporting.WeeklySubmission, error) {
	return nil, nil
}

func (f *fakeRepo) Upsert(ctx context.Context, sub reporting.WeeklySubmission) error {
	return nil
}

type fakeMailer struct {
	sent []SendEmailPayload
}

func (f *fakeMailer) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error) {
	f.sent = append(f.sent, payload)
	return &asynq.TaskInfo{}, nil
}

func jobCatalog() *catalog.Catalog {
	ten := 10.0
	return catalog.New([]catalog.Service{
		{ID: "fixed_ten", Label: "Fixed Ten", Fee: &ten, Category: catalog.CategoryNHSClinical},
	}, []string{"Alpha Pharmacy", "Beta Pharmacy"})
}

func newReportingService(repo reporting.Repository) *reporting.Service {
	return reporting.NewService(repo, nil, jobCatalog(), reporting.NewDeadline(12, time.UTC), slog.Default())
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestDashboardWarmupHandle(t *testing.T) {
	repo := &fakeRepo{}
	job := NewDashboardWarmupJob(newReportingService(repo), slog.Default(), testMetrics())

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{Week: "2024-03-11"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// Current and prior week summaries plus the matrix all hit the store.
	if repo.summaryHits != 3 {
		t.Fatalf("expected 3 week fetches, got %d", repo.summaryHits)
	}
	if repo.rangeHits != 2 {
		t.Fatalf("expected both trend windows fetched, got %d", repo.rangeHits)
	}
}

func TestDashboardWarmupSkipsGarbledPayload(t *testing.T) {
	job := NewDashboardWarmupJob(newReportingService(&fakeRepo{}), slog.Default(), testMetrics())
	task := asynq.NewTask(TaskDashboardWarmup, []byte(`{"week":"whenever"}`))
	if err := job.Handle(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestComplianceScanRemindsOverdueSites(t *testing.T) {
	week, _ := reporting.ParseWeek("2024-03-11")
	repo := &fakeRepo{subs: []reporting.WeeklySubmission{{
		Pharmacy:    "Alpha Pharmacy",
		Week:        week,
		Counts:      map[string]int{"fixed_ten": 1},
		SubmittedAt: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
	}}}
	mailer := &fakeMailer{}
	job := NewComplianceScanJob(newReportingService(repo), mailer, "ops@pharmacygroup.test", slog.Default(), testMetrics())
	// Tuesday, past the Monday noon cutoff.
	job.clock = func() time.Time { return time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC) }

	if err := job.Handle(context.Background(), NewComplianceScanTask()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one reminder, got %d", len(mailer.sent))
	}
	if mailer.sent[0].To != "ops@pharmacygroup.test" {
		t.Fatalf("unexpected recipient: %s", mailer.sent[0].To)
	}
	if want := "Missing weekly report: Beta Pharmacy (w/c 2024-03-11)"; mailer.sent[0].Subject != want {
		t.Fatalf("unexpected subject: %s", mailer.sent[0].Subject)
	}
}

func TestComplianceScanCleanWeek(t *testing.T) {
	week, _ := reporting.ParseWeek("2024-03-11")
	repo := &fakeRepo{subs: []reporting.WeeklySubmission{
		{Pharmacy: "Alpha Pharmacy", Week: week, SubmittedAt: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)},
		{Pharmacy: "Beta Pharmacy", Week: week, SubmittedAt: time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)},
	}}
	mailer := &fakeMailer{}
	job := NewComplianceScanJob(newReportingService(repo), mailer, "ops@pharmacygroup.test", slog.Default(), testMetrics())
	job.clock = func() time.Time { return time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC) }

	if err := job.Handle(context.Background(), NewComplianceScanTask()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no reminders, got %d", len(mailer.sent))
	}
}
