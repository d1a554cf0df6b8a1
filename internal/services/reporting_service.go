package services

import (
	"time"

	"github.com/jmoiron/sqlx"

	"shelfmark/internal/config"
	"shelfmark/internal/domain"
	"shelfmark/internal/repos"
)

// ReportingService is the read side: every call recomputes from current
// ledger state, nothing is cached.
type ReportingService struct {
	db      *sqlx.DB
	Borrows *repos.BorrowRepo
	Rules   config.Rules

	// Now is injectable for deterministic tests; nil means time.Now.
	Now func() time.Time
}

func NewReportingService(db *sqlx.DB, borrows *repos.BorrowRepo, rules config.Rules) *ReportingService {
	return &ReportingService{db: db, Borrows: borrows, Rules: rules}
}

func (s *ReportingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *ReportingService) ListBorrows(onlyActive, onlyOverdue bool) ([]domain.BorrowView, error) {
	now := s.now()
	records, err := s.Borrows.List(onlyActive, onlyOverdue, domain.FormatTime(now))
	if err != nil {
		return nil, err
	}

	out := make([]domain.BorrowView, 0, len(records))
	for _, rec := range records {
		v, err := domain.ProjectBorrow(rec, now, s.Rules.FinePerDay)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ListDefaulters returns the currently overdue, not yet returned records.
func (s *ReportingService) ListDefaulters() ([]domain.BorrowView, error) {
	return s.ListBorrows(true, true)
}

// DashboardSummary aggregates the three ledgers. total_fines_collected sums
// fines frozen on returned records; outstanding_fines is live-computed over
// open overdue records. The two are distinct and never conflated.
func (s *ReportingService) DashboardSummary() (domain.DashboardSummary, error) {
	now := s.now()
	nowStr := domain.FormatTime(now)
	var sum domain.DashboardSummary

	scalars := []struct {
		dest  any
		query string
		args  []any
	}{
		{&sum.TotalSections, `SELECT COUNT(*) FROM sections`, nil},
		{&sum.TotalBooks, `SELECT COUNT(*) FROM books`, nil},
		{&sum.AvailableBooks, `SELECT COALESCE(SUM(available_copies),0) FROM books`, nil},
		{&sum.OutOfStockBooks, `SELECT COUNT(*) FROM books WHERE available_copies <= 0`, nil},
		{&sum.TotalStudents, `SELECT COUNT(*) FROM students`, nil},
		{&sum.ActiveBorrows, `SELECT COUNT(*) FROM borrow_records WHERE returned_at IS NULL`, nil},
		{&sum.OverdueBorrows, `SELECT COUNT(*) FROM borrow_records WHERE returned_at IS NULL AND due_at < ?`, []any{nowStr}},
		{&sum.TotalFinesCollected, `SELECT COALESCE(SUM(fine_amount),0) FROM borrow_records WHERE returned_at IS NOT NULL`, nil},
	}
	for _, q := range scalars {
		if err := s.db.Get(q.dest, q.query, q.args...); err != nil {
			return domain.DashboardSummary{}, err
		}
	}

	overdue, err := s.Borrows.List(true, true, nowStr)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	for _, rec := range overdue {
		due, err := domain.ParseTime(rec.DueAt)
		if err != nil {
			return domain.DashboardSummary{}, err
		}
		sum.OutstandingFines += float64(domain.OverdueDays(due, now)) * s.Rules.FinePerDay
	}
	return sum, nil
}
