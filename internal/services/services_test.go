package services_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"shelfmark/internal/config"
	"shelfmark/internal/repos"
	"shelfmark/internal/services"
)

// fixture bundles the engine services over a fresh in-memory database with a
// controllable clock.
type fixture struct {
	db        *sqlx.DB
	catalog   *services.CatalogService
	students  *services.StudentService
	lending   *services.LendingService
	reporting *services.ReportingService
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sectionRepo := repos.NewSectionRepo(db)
	bookRepo := repos.NewBookRepo(db)
	studentRepo := repos.NewStudentRepo(db)
	borrowRepo := repos.NewBorrowRepo(db)
	rules := config.DefaultRules()

	f := &fixture{
		db:        db,
		catalog:   services.NewCatalogService(db, sectionRepo, bookRepo),
		students:  services.NewStudentService(db, studentRepo, borrowRepo, rules),
		lending:   services.NewLendingService(db, studentRepo, bookRepo, borrowRepo, rules),
		reporting: services.NewReportingService(db, borrowRepo, rules),
		now:       time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	f.students.Now = func() time.Time { return f.now }
	f.lending.Now = func() time.Time { return f.now }
	f.reporting.Now = func() time.Time { return f.now }

	require.NoError(t, f.catalog.EnsureSections(config.Sections))
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) sectionID(t *testing.T, name string) string {
	t.Helper()
	sections, err := f.catalog.ListSections()
	require.NoError(t, err)
	for _, s := range sections {
		if s.Name == name {
			return s.ID
		}
	}
	t.Fatalf("section %q not seeded", name)
	return ""
}

func (f *fixture) addBook(t *testing.T, title string, copies int) string {
	t.Helper()
	book, err := f.catalog.CreateBook(services.CreateBookInput{
		Title:       title,
		Author:      "Test Author",
		Version:     "1st",
		Cost:        1000,
		SectionID:   f.sectionID(t, "SCIENCES"),
		TotalCopies: copies,
	})
	require.NoError(t, err)
	return book.ID
}

func (f *fixture) addStudent(t *testing.T, name, matric, email string) string {
	t.Helper()
	st, err := f.students.Register(services.RegisterStudentInput{
		FullName:     name,
		MatricNumber: matric,
		Email:        email,
	})
	require.NoError(t, err)
	return st.ID
}
