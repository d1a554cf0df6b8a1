package repos

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"

	"shelfmark/internal/domain"
)

type BookRepo struct{ db *sqlx.DB }

func NewBookRepo(db *sqlx.DB) *BookRepo { return &BookRepo{db: db} }

const bookColumns = `
  b.id, b.title, b.author, b.version, b.cost,
  b.total_copies, b.available_copies, b.status,
  b.section_id, s.name AS section_name`

// List returns books joined with their section name, optionally filtered by
// section and stock.
func (r *BookRepo) List(sectionID string, includeOutOfStock bool) ([]domain.Book, error) {
	ds := goqu.Dialect("sqlite3").
		From(goqu.T("books").As("b")).
		Join(goqu.T("sections").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("b.section_id")))).
		Select(
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.version"), goqu.I("b.cost"),
			goqu.I("b.total_copies"), goqu.I("b.available_copies"), goqu.I("b.status"),
			goqu.I("b.section_id"), goqu.I("s.name").As("section_name"),
		).
		Order(goqu.I("b.title").Asc())
	if sectionID != "" {
		ds = ds.Where(goqu.I("b.section_id").Eq(sectionID))
	}
	if !includeOutOfStock {
		ds = ds.Where(goqu.I("b.available_copies").Gt(0))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var out []domain.Book
	err = r.db.Select(&out, query, args...)
	return out, err
}

func (r *BookRepo) Get(id string) (domain.Book, error) {
	var b domain.Book
	err := r.db.Get(&b, `
	  SELECT `+bookColumns+`
	  FROM books b
	  JOIN sections s ON s.id = b.section_id
	  WHERE b.id = ?
	`, id)
	return b, err
}

// GetTx reads a book inside a transaction; the mutation path goes through it
// so the copy counts it sees are the ones the commit will apply to.
func (r *BookRepo) GetTx(tx *sqlx.Tx, id string) (domain.Book, error) {
	var b domain.Book
	err := tx.Get(&b, `
	  SELECT `+bookColumns+`
	  FROM books b
	  JOIN sections s ON s.id = b.section_id
	  WHERE b.id = ?
	`, id)
	return b, err
}

// FindByIdentity probes the (title, author, version, section) identity tuple.
// Returns sql.ErrNoRows when the identity is free.
func (r *BookRepo) FindByIdentity(tx *sqlx.Tx, title, author, version, sectionID string) (string, error) {
	var id string
	err := tx.Get(&id, `
	  SELECT id FROM books
	  WHERE title = ? AND author = ? AND version = ? AND section_id = ?
	`, title, author, version, sectionID)
	return id, err
}

func (r *BookRepo) Insert(tx *sqlx.Tx, b domain.Book) error {
	_, err := tx.Exec(`
	  INSERT INTO books(id, section_id, title, author, version, cost, total_copies, available_copies, status, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, b.ID, b.SectionID, b.Title, b.Author, b.Version, b.Cost, b.TotalCopies, b.AvailableCopies, b.Status)
	return err
}

// UpdateCopies writes reconciled copy counts and the derived status in one
// statement; callers must have run domain.ReconcileCopies first.
func (r *BookRepo) UpdateCopies(tx *sqlx.Tx, id string, total, available int, status string) error {
	_, err := tx.Exec(`
	  UPDATE books SET total_copies = ?, available_copies = ?, status = ?
	  WHERE id = ?
	`, total, available, status, id)
	return err
}
