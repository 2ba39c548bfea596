// Package reportinghttp serves the dashboard JSON API.
package reportinghttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/pharmalink/pharmalink/internal/catalog"
	"github.com/pharmalink/pharmalink/internal/draft"
	"github.com/pharmalink/pharmalink/internal/platform/httpx"
	"github.com/pharmalink/pharmalink/internal/reporting"
	"github.com/pharmalink/pharmalink/internal/reporting/export"
)

const requestTimeout = 5 * time.Second

// The email path wraps a generation call with its own 30s client budget.
const emailTimeout = 35 * time.Second

// DashboardService defines the reporting data contract used by the handler.
type DashboardService interface {
	WeekSummary(ctx context.Context, week reporting.WeekKey) (reporting.WeekSummary, error)
	WeeklyTrend(ctx context.Context, week reporting.WeekKey, window int) ([]reporting.WeekPoint, error)
	MonthlyTrend(ctx context.Context, week reporting.WeekKey, weeks int) ([]reporting.MonthPoint, error)
	WeekMatrix(ctx context.Context, week reporting.WeekKey) (reporting.Matrix, error)
	WeekCompliance(ctx context.Context, week reporting.WeekKey) ([]reporting.SiteStatus, reporting.ComplianceCounts, error)
}

// DraftService produces the CEO summary email.
type DraftService interface {
	Generate(ctx context.Context, week reporting.WeekKey, summary draft.Summary) draft.Draft
}

// Handler coordinates HTTP requests for the weekly dashboard.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	drafts  DraftService
	catalog *catalog.Catalog
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, drafts DraftService, cat *catalog.Catalog) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		drafts:  drafts,
		catalog: cat,
		now:     func() time.Time { return time.Now().UTC() },
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// Routes mounts the dashboard endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.handleOverview)
	r.Get("/dashboard/trend", h.handleWeeklyTrend)
	r.Get("/dashboard/monthly", h.handleMonthlyTrend)
	r.Get("/dashboard/matrix", h.handleMatrix)
	r.Get("/dashboard/export.csv", h.handleCSV)
	r.Post("/dashboard/email", h.handleEmail)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	week, ok := h.parseWeek(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadWeekData(ctx, week)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, BuildOverview(h.catalog, data.current, data.previous, data.statuses, data.counts))
}

func (h *Handler) handleWeeklyTrend(w http.ResponseWriter, r *http.Request) {
	week, ok := h.parseWeek(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	points, err := h.service.WeeklyTrend(ctx, week, reporting.WeeklyTrendWindow)
	if err != nil {
		h.handleServerError(w, "load weekly trend", err)
		return
	}
	httpx.JSON(w, http.StatusOK, points)
}

func (h *Handler) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	week, ok := h.parseWeek(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	points, err := h.service.MonthlyTrend(ctx, week, reporting.MonthlyTrendWeeks)
	if err != nil {
		h.handleServerError(w, "load monthly trend", err)
		return
	}
	httpx.JSON(w, http.StatusOK, points)
}

func (h *Handler) handleMatrix(w http.ResponseWriter, r *http.Request) {
	week, ok := h.parseWeek(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	matrix, err := h.service.WeekMatrix(ctx, week)
	if err != nil {
		h.handleServerError(w, "load matrix", err)
		return
	}
	httpx.JSON(w, http.StatusOK, matrix)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	week, ok := h.parseWeek(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var summary reporting.WeekSummary
	var matrix reporting.Matrix
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = h.service.WeekSummary(gctx, week)
		return err
	})
	g.Go(func() error {
		var err error
		matrix, err = h.service.WeekMatrix(gctx, week)
		return err
	})
	if err := g.Wait(); err != nil {
		h.handleServerError(w, "load export", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteSummaryCSV(buf, summary); err != nil {
		h.handleServerError(w, "write summary csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteServiceTotalsCSV(buf, summary.ServiceTotals); err != nil {
		h.handleServerError(w, "write services csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteMatrixCSV(buf, h.catalog, matrix); err != nil {
		h.handleServerError(w, "write matrix csv", err)
		return
	}

	filename := fmt.Sprintf("weekly-report-%s.csv", week)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleEmail(w http.ResponseWriter, r *http.Request) {
	if h.drafts == nil {
		h.handleServerError(w, "email drafts", fmt.Errorf("draft service not configured"))
		return
	}
	week, ok := h.parseWeek(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), emailTimeout)
	defer cancel()

	data, err := h.loadWeekData(ctx, week)
	if err != nil {
		h.handleServerError(w, "load email data", err)
		return
	}

	var delta *reporting.Delta
	if data.previous != nil {
		if d, ok := reporting.Compare(data.current.TotalRevenue, data.previous.TotalRevenue); ok {
			delta = &d
		}
	}
	summary := draft.BuildSummary(data.current, delta, data.counts)
	httpx.JSON(w, http.StatusOK, h.drafts.Generate(ctx, week, summary))
}

type weekData struct {
	current  reporting.WeekSummary
	previous *reporting.WeekSummary
	statuses []reporting.SiteStatus
	counts   reporting.ComplianceCounts
}

// loadWeekData fetches the current week, its predecessor and the
// compliance projection concurrently; the key ranges are disjoint.
func (h *Handler) loadWeekData(ctx context.Context, week reporting.WeekKey) (weekData, error) {
	var data weekData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := h.service.WeekSummary(ctx, week)
		if err != nil {
			return err
		}
		data.current = summary
		return nil
	})

	g.Go(func() error {
		summary, err := h.service.WeekSummary(ctx, week.Offset(-1))
		if err != nil {
			return err
		}
		data.previous = &summary
		return nil
	})

	g.Go(func() error {
		statuses, counts, err := h.service.WeekCompliance(ctx, week)
		if err != nil {
			return err
		}
		data.statuses = statuses
		data.counts = counts
		return nil
	})

	if err := g.Wait(); err != nil {
		return weekData{}, err
	}
	return data, nil
}

// parseWeek reads the week query parameter, snapping to Monday; empty
// defaults to the current week.
func (h *Handler) parseWeek(w http.ResponseWriter, r *http.Request) (reporting.WeekKey, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("week"))
	if raw == "" {
		return reporting.WeekOf(h.now()), true
	}
	week, err := reporting.ParseWeek(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "week must be an ISO date (YYYY-MM-DD)")
		return reporting.WeekKey{}, false
	}
	return week, true
}

func (h *Handler) handleServerError(w http.ResponseWriter, msg string, err error) {
	h.logError(msg, err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal error", http.StatusText(http.StatusInternalServerError))
}

func (h *Handler) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, slog.Any("error", err))
	}
}
