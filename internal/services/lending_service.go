package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shelfmark/internal/config"
	"shelfmark/internal/domain"
	"shelfmark/internal/repos"
)

// LendingService runs the borrow/return state machine. Each operation is one
// transaction: read, validate, mutate, commit — no partial effect is ever
// visible.
type LendingService struct {
	db       *sqlx.DB
	Students *repos.StudentRepo
	Books    *repos.BookRepo
	Borrows  *repos.BorrowRepo
	Rules    config.Rules

	// Now is injectable for deterministic tests; nil means time.Now.
	Now func() time.Time
}

func NewLendingService(db *sqlx.DB, students *repos.StudentRepo, books *repos.BookRepo, borrows *repos.BorrowRepo, rules config.Rules) *LendingService {
	return &LendingService{db: db, Students: students, Books: books, Borrows: borrows, Rules: rules}
}

func (s *LendingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Borrow lends one copy of a book to a student. lendDays of 0 means the
// default window.
func (s *LendingService) Borrow(studentID, bookID string, lendDays int) (domain.BorrowView, error) {
	if lendDays == 0 {
		lendDays = s.Rules.DefaultBorrowDays
	}
	if lendDays < 1 || lendDays > s.Rules.MaxBorrowDays {
		return domain.BorrowView{}, domain.InvalidArgument("lend_days must be between 1 and %d", s.Rules.MaxBorrowDays)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return domain.BorrowView{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.Students.GetTx(tx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BorrowView{}, domain.NotFound("student not found")
		}
		return domain.BorrowView{}, err
	}

	book, err := s.Books.GetTx(tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BorrowView{}, domain.NotFound("book not found")
		}
		return domain.BorrowView{}, err
	}
	if book.AvailableCopies <= 0 {
		return domain.BorrowView{}, domain.InvalidState("book is out of stock")
	}

	held, err := s.Borrows.HasOpen(tx, studentID, bookID)
	if err != nil {
		return domain.BorrowView{}, err
	}
	if held {
		return domain.BorrowView{}, domain.Conflict("student already has this book and has not returned it")
	}

	available, status := domain.ReconcileCopies(book.TotalCopies, book.AvailableCopies-1)
	if err := s.Books.UpdateCopies(tx, bookID, book.TotalCopies, available, status); err != nil {
		return domain.BorrowView{}, err
	}

	borrowedAt := s.now()
	rec := domain.BorrowRecord{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		BookID:     bookID,
		BorrowedAt: domain.FormatTime(borrowedAt),
		DueAt:      domain.FormatTime(borrowedAt.AddDate(0, 0, lendDays)),
		LendDays:   lendDays,
	}
	if err := s.Borrows.Insert(tx, rec); err != nil {
		return domain.BorrowView{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.BorrowView{}, err
	}

	full, err := s.Borrows.Get(rec.ID)
	if err != nil {
		return domain.BorrowView{}, err
	}
	return domain.ProjectBorrow(full, borrowedAt, s.Rules.FinePerDay)
}

// Return settles a borrow record: freezes the fine from the elapsed overdue
// days and puts the copy back in stock. A second call for the same record
// fails with Conflict and does not touch availability again.
func (s *LendingService) Return(borrowID string) (domain.BorrowView, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return domain.BorrowView{}, err
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := s.Borrows.GetTx(tx, borrowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BorrowView{}, domain.NotFound("borrow record not found")
		}
		return domain.BorrowView{}, err
	}
	if rec.ReturnedAt.Valid {
		return domain.BorrowView{}, domain.Conflict("book already returned")
	}

	due, err := domain.ParseTime(rec.DueAt)
	if err != nil {
		return domain.BorrowView{}, err
	}
	returnedAt := s.now()
	fine := float64(domain.OverdueDays(due, returnedAt)) * s.Rules.FinePerDay

	if err := s.Borrows.Settle(tx, borrowID, domain.FormatTime(returnedAt), fine); err != nil {
		return domain.BorrowView{}, err
	}

	book, err := s.Books.GetTx(tx, rec.BookID)
	if err != nil {
		return domain.BorrowView{}, err
	}
	available, status := domain.ReconcileCopies(book.TotalCopies, book.AvailableCopies+1)
	if err := s.Books.UpdateCopies(tx, rec.BookID, book.TotalCopies, available, status); err != nil {
		return domain.BorrowView{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.BorrowView{}, err
	}

	full, err := s.Borrows.Get(borrowID)
	if err != nil {
		return domain.BorrowView{}, err
	}
	return domain.ProjectBorrow(full, returnedAt, s.Rules.FinePerDay)
}
