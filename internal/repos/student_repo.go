package repos

import (
	"github.com/jmoiron/sqlx"

	"shelfmark/internal/domain"
)

type StudentRepo struct{ db *sqlx.DB }

func NewStudentRepo(db *sqlx.DB) *StudentRepo { return &StudentRepo{db: db} }

func (r *StudentRepo) List() ([]domain.Student, error) {
	var out []domain.Student
	err := r.db.Select(&out, `
	  SELECT id, full_name, matric_number, email, COALESCE(department,'') AS department, created_at
	  FROM students
	  ORDER BY full_name
	`)
	return out, err
}

func (r *StudentRepo) Get(id string) (domain.Student, error) {
	var s domain.Student
	err := r.db.Get(&s, `
	  SELECT id, full_name, matric_number, email, COALESCE(department,'') AS department, created_at
	  FROM students WHERE id = ?
	`, id)
	return s, err
}

func (r *StudentRepo) GetTx(tx *sqlx.Tx, id string) (domain.Student, error) {
	var s domain.Student
	err := tx.Get(&s, `
	  SELECT id, full_name, matric_number, email, COALESCE(department,'') AS department, created_at
	  FROM students WHERE id = ?
	`, id)
	return s, err
}

// Exists probes the uniqueness constraints before insert. Matric and email
// must already be normalized (upper/lower cased).
func (r *StudentRepo) Exists(tx *sqlx.Tx, matric, email string) (bool, error) {
	var n int
	err := tx.Get(&n, `
	  SELECT COUNT(*) FROM students WHERE matric_number = ? OR email = ?
	`, matric, email)
	return n > 0, err
}

func (r *StudentRepo) Insert(tx *sqlx.Tx, s domain.Student) error {
	department := any(s.Department)
	if s.Department == "" {
		department = nil
	}
	_, err := tx.Exec(`
	  INSERT INTO students(id, full_name, matric_number, email, department, created_at)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, s.ID, s.FullName, s.MatricNumber, s.Email, department, s.CreatedAt)
	return err
}
