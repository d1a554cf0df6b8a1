package repos

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"shelfmark/internal/domain"
)

type BorrowRepo struct{ db *sqlx.DB }

func NewBorrowRepo(db *sqlx.DB) *BorrowRepo { return &BorrowRepo{db: db} }

// borrowSelect is the one read-side join producing display fields for borrow
// views (student name, book title, section name).
func borrowSelect() *goqu.SelectDataset {
	return goqu.Dialect("sqlite3").
		From(goqu.T("borrow_records").As("br")).
		Join(goqu.T("students").As("st"), goqu.On(goqu.I("st.id").Eq(goqu.I("br.student_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("br.book_id")))).
		Join(goqu.T("sections").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("b.section_id")))).
		Select(
			goqu.I("br.id"), goqu.I("br.student_id"),
			goqu.I("st.full_name").As("student_name"), goqu.I("st.matric_number"),
			goqu.I("br.book_id"), goqu.I("b.title").As("book_title"), goqu.I("s.name").As("section_name"),
			goqu.I("br.borrowed_at"), goqu.I("br.due_at"), goqu.I("br.lend_days"),
			goqu.I("br.returned_at"), goqu.I("br.fine_amount"),
		)
}

// List returns joined borrow rows, newest first. now is a formatted timestamp
// used for the overdue cutoff.
func (r *BorrowRepo) List(onlyActive, onlyOverdue bool, now string) ([]domain.BorrowRecord, error) {
	ds := borrowSelect().Order(goqu.I("br.borrowed_at").Desc())
	if onlyActive {
		ds = ds.Where(goqu.I("br.returned_at").IsNull())
	}
	if onlyOverdue {
		ds = ds.Where(goqu.I("br.returned_at").IsNull(), goqu.I("br.due_at").Lt(now))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var out []domain.BorrowRecord
	err = r.db.Select(&out, query, args...)
	return out, err
}

func (r *BorrowRepo) Get(id string) (domain.BorrowRecord, error) {
	query, args, err := borrowSelect().Where(goqu.I("br.id").Eq(id)).ToSQL()
	if err != nil {
		return domain.BorrowRecord{}, err
	}
	var rec domain.BorrowRecord
	err = r.db.Get(&rec, query, args...)
	return rec, err
}

func (r *BorrowRepo) GetTx(tx *sqlx.Tx, id string) (domain.BorrowRecord, error) {
	query, args, err := borrowSelect().Where(goqu.I("br.id").Eq(id)).ToSQL()
	if err != nil {
		return domain.BorrowRecord{}, err
	}
	var rec domain.BorrowRecord
	err = tx.Get(&rec, query, args...)
	return rec, err
}

// HasOpen reports whether the student currently holds this book.
func (r *BorrowRepo) HasOpen(tx *sqlx.Tx, studentID, bookID string) (bool, error) {
	var n int
	err := tx.Get(&n, `
	  SELECT COUNT(*) FROM borrow_records
	  WHERE student_id = ? AND book_id = ? AND returned_at IS NULL
	`, studentID, bookID)
	return n > 0, err
}

func (r *BorrowRepo) Insert(tx *sqlx.Tx, rec domain.BorrowRecord) error {
	_, err := tx.Exec(`
	  INSERT INTO borrow_records(id, student_id, book_id, borrowed_at, due_at, lend_days, fine_amount)
	  VALUES(?, ?, ?, ?, ?, ?, 0)
	`, rec.ID, rec.StudentID, rec.BookID, rec.BorrowedAt, rec.DueAt, rec.LendDays)
	return err
}

// Settle closes a record, freezing the fine. The guard on returned_at makes a
// double settle affect zero rows.
func (r *BorrowRepo) Settle(tx *sqlx.Tx, id, returnedAt string, fine float64) error {
	_, err := tx.Exec(`
	  UPDATE borrow_records SET returned_at = ?, fine_amount = ?
	  WHERE id = ? AND returned_at IS NULL
	`, returnedAt, fine, id)
	return err
}
