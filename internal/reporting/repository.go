package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmalink/pharmalink/internal/shared"
)

// Repository is the submission store consumed by the reporting service
// and the submission service.
type Repository interface {
	FetchByWeek(ctx context.Context, week WeekKey) ([]WeeklySubmission, error)
	FetchByWeekSet(ctx context.Context, weeks []WeekKey) ([]SubmissionTotal, error)
	FetchSince(ctx context.Context, week WeekKey) ([]SubmissionTotal, error)
	FetchOne(ctx context.Context, pharmacy string, week WeekKey) (*WeeklySubmission, error)
	Upsert(ctx context.Context, sub WeeklySubmission) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository builds a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const submissionColumns = `pharmacy, week, counts, revenues, notes, submitted_at, total_revenue, total_sessions`

func (r *repository) FetchByWeek(ctx context.Context, week WeekKey) ([]WeeklySubmission, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM weekly_reports WHERE week = $1 ORDER BY pharmacy
	`, submissionColumns), week.Start())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (r *repository) FetchByWeekSet(ctx context.Context, weeks []WeekKey) ([]SubmissionTotal, error) {
	if len(weeks) == 0 {
		return nil, nil
	}
	dates := make([]interface{}, 0, len(weeks))
	placeholders := ""
	for i, w := range weeks {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
		dates = append(dates, w.Start())
	}
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT pharmacy, week, total_revenue FROM weekly_reports
		WHERE week IN (%s) ORDER BY week, pharmacy
	`, placeholders), dates...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTotals(rows)
}

func (r *repository) FetchSince(ctx context.Context, week WeekKey) ([]SubmissionTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT pharmacy, week, total_revenue FROM weekly_reports
		WHERE week >= $1 ORDER BY week, pharmacy
	`, week.Start())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTotals(rows)
}

func (r *repository) FetchOne(ctx context.Context, pharmacy string, week WeekKey) (*WeeklySubmission, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM weekly_reports WHERE pharmacy = $1 AND week = $2
	`, submissionColumns), pharmacy, week.Start())
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

// Upsert writes a full record keyed (pharmacy, week). A resubmission for
// the same key overwrites the prior row; last write wins.
func (r *repository) Upsert(ctx context.Context, sub WeeklySubmission) error {
	counts, err := json.Marshal(sub.Counts)
	if err != nil {
		return fmt.Errorf("encode counts: %w", err)
	}
	revenues, err := json.Marshal(sub.Revenues)
	if err != nil {
		return fmt.Errorf("encode revenues: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO weekly_reports (pharmacy, week, counts, revenues, notes, submitted_at, total_revenue, total_sessions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pharmacy, week) DO UPDATE SET
			counts = EXCLUDED.counts,
			revenues = EXCLUDED.revenues,
			notes = EXCLUDED.notes,
			submitted_at = EXCLUDED.submitted_at,
			total_revenue = EXCLUDED.total_revenue,
			total_sessions = EXCLUDED.total_sessions
	`, sub.Pharmacy, sub.Week.Start(), counts, revenues, nullableText(sub.Notes), sub.SubmittedAt, sub.TotalRevenue, sub.TotalSessions)
	return err
}

func scanSubmissions(rows pgx.Rows) ([]WeeklySubmission, error) {
	var subs []WeeklySubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func scanSubmission(row pgx.Row) (*WeeklySubmission, error) {
	var (
		sub         WeeklySubmission
		week        pgtype.Date
		counts      []byte
		revenues    []byte
		notes       pgtype.Text
		submittedAt pgtype.Timestamptz
		totalRev    pgtype.Numeric
	)
	if err := row.Scan(&sub.Pharmacy, &week, &counts, &revenues, &notes, &submittedAt, &totalRev, &sub.TotalSessions); err != nil {
		return nil, err
	}
	if week.Valid {
		sub.Week = WeekOf(week.Time)
	}
	if len(counts) > 0 {
		if err := json.Unmarshal(counts, &sub.Counts); err != nil {
			return nil, fmt.Errorf("decode counts: %w", err)
		}
	}
	if len(revenues) > 0 {
		if err := json.Unmarshal(revenues, &sub.Revenues); err != nil {
			return nil, fmt.Errorf("decode revenues: %w", err)
		}
	}
	if notes.Valid {
		sub.Notes = notes.String
	}
	if submittedAt.Valid {
		sub.SubmittedAt = submittedAt.Time
	}
	if totalRev.Valid {
		f, err := totalRev.Float64Value()
		if err != nil {
			return nil, err
		}
		sub.TotalRevenue = f.Float64
	}
	return &sub, nil
}

func scanTotals(rows pgx.Rows) ([]SubmissionTotal, error) {
	var totals []SubmissionTotal
	for rows.Next() {
		var (
			row      SubmissionTotal
			week     pgtype.Date
			totalRev pgtype.Numeric
		)
		if err := rows.Scan(&row.Pharmacy, &week, &totalRev); err != nil {
			return nil, err
		}
		if week.Valid {
			row.Week = WeekOf(week.Time)
		}
		if totalRev.Valid {
			f, err := totalRev.Float64Value()
			if err != nil {
				return nil, err
			}
			row.TotalRevenue = f.Float64
		}
		totals = append(totals, row)
	}
	return totals, rows.Err()
}

func nullableText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
