package domain

import (
	"database/sql"
	"time"
)

// TimeLayout matches SQLite's CURRENT_TIMESTAMP format. All timestamps are
// stored as UTC strings in this layout, so lexicographic comparison in SQL
// (e.g. due_at < now) agrees with chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// Book statuses. Status is derived from the copy counts and recomputed on
// every mutation; it is never set on its own.
const (
	BookAvailable  = "AVAILABLE"
	BookOutOfStock = "OUT_OF_STOCK"
)

// Borrow statuses. OVERDUE is a time-derived view of an open record, not a
// stored state.
const (
	BorrowStatusBorrowed = "BORROWED"
	BorrowStatusOverdue  = "OVERDUE"
	BorrowStatusReturned = "RETURNED"
)

type Section struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Book struct {
	ID              string  `db:"id" json:"id"`
	Title           string  `db:"title" json:"title"`
	Author          string  `db:"author" json:"author"`
	Version         string  `db:"version" json:"version"`
	Cost            float64 `db:"cost" json:"cost"`
	TotalCopies     int     `db:"total_copies" json:"total_copies"`
	AvailableCopies int     `db:"available_copies" json:"available_copies"`
	Status          string  `db:"status" json:"status"`
	SectionID       string  `db:"section_id" json:"section_id"`
	SectionName     string  `db:"section_name" json:"section_name"`
}

type Student struct {
	ID           string `db:"id" json:"id"`
	FullName     string `db:"full_name" json:"full_name"`
	MatricNumber string `db:"matric_number" json:"matric_number"`
	Email        string `db:"email" json:"email"`
	Department   string `db:"department" json:"department,omitempty"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

// StudentView adds the live borrow aggregates to a student row.
type StudentView struct {
	Student
	ActiveBorrows   int     `json:"active_borrows"`
	OutstandingFine float64 `json:"outstanding_fine"`
}

// BorrowRecord is a ledger row joined with its display fields (student name,
// book title, section name). The join is done once, read-side.
type BorrowRecord struct {
	ID           string         `db:"id"`
	StudentID    string         `db:"student_id"`
	StudentName  string         `db:"student_name"`
	MatricNumber string         `db:"matric_number"`
	BookID       string         `db:"book_id"`
	BookTitle    string         `db:"book_title"`
	SectionName  string         `db:"section_name"`
	BorrowedAt   string         `db:"borrowed_at"`
	DueAt        string         `db:"due_at"`
	LendDays     int            `db:"lend_days"`
	ReturnedAt   sql.NullString `db:"returned_at"`
	FineAmount   float64        `db:"fine_amount"`
}

// BorrowView is the engine-level contract for a borrow record: the stored
// fields plus the derived status and outstanding fine.
type BorrowView struct {
	ID              string  `json:"id"`
	StudentID       string  `json:"student_id"`
	StudentName     string  `json:"student_name"`
	MatricNumber    string  `json:"matric_number"`
	BookID          string  `json:"book_id"`
	BookTitle       string  `json:"book_title"`
	SectionName     string  `json:"section_name"`
	BorrowedAt      string  `json:"borrowed_at"`
	DueAt           string  `json:"due_at"`
	LendDays        int     `json:"lend_days"`
	ReturnedAt      *string `json:"returned_at"`
	FineAmount      float64 `json:"fine_amount"`
	OutstandingFine float64 `json:"outstanding_fine"`
	Status          string  `json:"status"`
}

type DashboardSummary struct {
	TotalSections       int     `json:"total_sections"`
	TotalBooks          int     `json:"total_books"`
	AvailableBooks      int     `json:"available_books"`
	OutOfStockBooks     int     `json:"out_of_stock_books"`
	TotalStudents       int     `json:"total_students"`
	ActiveBorrows       int     `json:"active_borrows"`
	OverdueBorrows      int     `json:"overdue_borrows"`
	TotalFinesCollected float64 `json:"total_fines_collected"`
	OutstandingFines    float64 `json:"outstanding_fines"`
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}

// OverdueDays returns whole days overdue at day granularity: returning on the
// due date itself is zero, one calendar day later is one. The same function is
// used for live display and when freezing the fine at return, so the two
// always agree.
func OverdueDays(dueAt, ref time.Time) int {
	due := dateOf(dueAt)
	at := dateOf(ref)
	if !at.After(due) {
		return 0
	}
	return int(at.Sub(due).Hours() / 24)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReconcileCopies clamps available into [0, total] and derives the book
// status. Every mutation of copy counts goes through here.
func ReconcileCopies(total, available int) (int, string) {
	if available < 0 {
		available = 0
	}
	if available > total {
		available = total
	}
	status := BookAvailable
	if available == 0 {
		status = BookOutOfStock
	}
	return available, status
}

// ProjectBorrow derives the status and outstanding fine of a record at the
// given instant. A record is overdue when it is open and now is past due_at
// (datetime granularity); the fine itself is always at day granularity.
func ProjectBorrow(r BorrowRecord, now time.Time, finePerDay float64) (BorrowView, error) {
	v := BorrowView{
		ID:           r.ID,
		StudentID:    r.StudentID,
		StudentName:  r.StudentName,
		MatricNumber: r.MatricNumber,
		BookID:       r.BookID,
		BookTitle:    r.BookTitle,
		SectionName:  r.SectionName,
		BorrowedAt:   r.BorrowedAt,
		DueAt:        r.DueAt,
		LendDays:     r.LendDays,
		FineAmount:   r.FineAmount,
	}
	if r.ReturnedAt.Valid {
		ret := r.ReturnedAt.String
		v.ReturnedAt = &ret
		v.Status = BorrowStatusReturned
		v.OutstandingFine = r.FineAmount
		return v, nil
	}

	due, err := ParseTime(r.DueAt)
	if err != nil {
		return BorrowView{}, err
	}
	if now.After(due) {
		v.Status = BorrowStatusOverdue
		v.OutstandingFine = float64(OverdueDays(due, now)) * finePerDay
	} else {
		v.Status = BorrowStatusBorrowed
	}
	return v, nil
}
