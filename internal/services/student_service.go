package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shelfmark/internal/config"
	"shelfmark/internal/domain"
	"shelfmark/internal/repos"
	"shelfmark/internal/validate"
)

// StudentService owns the student registry. Students are immutable once
// registered.
type StudentService struct {
	db       *sqlx.DB
	Students *repos.StudentRepo
	Borrows  *repos.BorrowRepo
	Rules    config.Rules

	// Now is injectable for deterministic tests; nil means time.Now.
	Now func() time.Time
}

func NewStudentService(db *sqlx.DB, students *repos.StudentRepo, borrows *repos.BorrowRepo, rules config.Rules) *StudentService {
	return &StudentService{db: db, Students: students, Borrows: borrows, Rules: rules}
}

func (s *StudentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type RegisterStudentInput struct {
	FullName     string `json:"full_name"`
	MatricNumber string `json:"matric_number"`
	Email        string `json:"email"`
	Department   string `json:"department"`
}

// Register normalizes the matric number (trim+upper) and email (trim+lower)
// and creates the student, failing with Conflict if either value is taken.
func (s *StudentService) Register(in RegisterStudentInput) (domain.Student, error) {
	fullName, ok := validate.FullName(in.FullName)
	if !ok {
		return domain.Student{}, domain.InvalidArgument("full_name must be 2-120 characters")
	}
	matric, ok := validate.Matric(in.MatricNumber)
	if !ok {
		return domain.Student{}, domain.InvalidArgument("matric_number must be 3-50 characters")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return domain.Student{}, domain.InvalidArgument("enter a valid email")
	}
	department, ok := validate.Department(in.Department)
	if !ok {
		return domain.Student{}, domain.InvalidArgument("department must be at most 120 characters")
	}
	matric = strings.ToUpper(matric)
	email = strings.ToLower(email)

	tx, err := s.db.Beginx()
	if err != nil {
		return domain.Student{}, err
	}
	defer func() { _ = tx.Rollback() }()

	taken, err := s.Students.Exists(tx, matric, email)
	if err != nil {
		return domain.Student{}, err
	}
	if taken {
		return domain.Student{}, domain.Conflict("student with matric number or email already exists")
	}

	student := domain.Student{
		ID:           uuid.NewString(),
		FullName:     fullName,
		MatricNumber: matric,
		Email:        email,
		Department:   department,
		CreatedAt:    domain.FormatTime(s.now()),
	}
	if err := s.Students.Insert(tx, student); err != nil {
		return domain.Student{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Student{}, err
	}
	return student, nil
}

// List returns every student with live borrow aggregates: count of open
// records and the outstanding fine over the overdue ones.
func (s *StudentService) List() ([]domain.StudentView, error) {
	students, err := s.Students.List()
	if err != nil {
		return nil, err
	}

	now := s.now()
	open, err := s.Borrows.List(true, false, domain.FormatTime(now))
	if err != nil {
		return nil, err
	}

	active := make(map[string]int, len(students))
	outstanding := make(map[string]float64, len(students))
	for _, rec := range open {
		active[rec.StudentID]++
		due, err := domain.ParseTime(rec.DueAt)
		if err != nil {
			return nil, err
		}
		if now.After(due) {
			outstanding[rec.StudentID] += float64(domain.OverdueDays(due, now)) * s.Rules.FinePerDay
		}
	}

	out := make([]domain.StudentView, 0, len(students))
	for _, st := range students {
		out = append(out, domain.StudentView{
			Student:         st,
			ActiveBorrows:   active[st.ID],
			OutstandingFine: outstanding[st.ID],
		})
	}
	return out, nil
}
