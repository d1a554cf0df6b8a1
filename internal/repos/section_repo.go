package repos

import (
	"shelfmark/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SectionRepo struct{ db *sqlx.DB }

func NewSectionRepo(db *sqlx.DB) *SectionRepo { return &SectionRepo{db: db} }

// SectionRow is the section list view with its book count.
type SectionRow struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	BookCount int    `db:"book_count" json:"book_count"`
}

func (r *SectionRepo) ListWithCounts() ([]SectionRow, error) {
	var out []SectionRow
	err := r.db.Select(&out, `
	  SELECT s.id, s.name, COUNT(b.id) AS book_count
	  FROM sections s
	  LEFT JOIN books b ON b.section_id = s.id
	  GROUP BY s.id, s.name
	  ORDER BY s.name
	`)
	return out, err
}

func (r *SectionRepo) Get(tx *sqlx.Tx, id string) (domain.Section, error) {
	var s domain.Section
	err := tx.Get(&s, `SELECT id, name FROM sections WHERE id = ?`, id)
	return s, err
}

// InsertIfMissing seeds a section by name, no-op when it already exists.
func (r *SectionRepo) InsertIfMissing(tx *sqlx.Tx, id, name string) error {
	_, err := tx.Exec(`
	  INSERT INTO sections(id, name)
	  SELECT ?, ?
	  WHERE NOT EXISTS (SELECT 1 FROM sections WHERE name = ?)
	`, id, name, name)
	return err
}
