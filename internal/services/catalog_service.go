package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shelfmark/internal/domain"
	"shelfmark/internal/repos"
	"shelfmark/internal/validate"
)

// CatalogService owns the section registry and the book inventory ledger.
type CatalogService struct {
	db       *sqlx.DB
	Sections *repos.SectionRepo
	Books    *repos.BookRepo
}

func NewCatalogService(db *sqlx.DB, sections *repos.SectionRepo, books *repos.BookRepo) *CatalogService {
	return &CatalogService{db: db, Sections: sections, Books: books}
}

// EnsureSections seeds any missing section by name. Idempotent; safe to run
// on every startup.
func (s *CatalogService) EnsureSections(names []string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := s.Sections.InsertIfMissing(tx, uuid.NewString(), name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *CatalogService) ListSections() ([]repos.SectionRow, error) {
	return s.Sections.ListWithCounts()
}

func (s *CatalogService) ListBooks(sectionID string, includeOutOfStock bool) ([]domain.Book, error) {
	return s.Books.List(sectionID, includeOutOfStock)
}

type CreateBookInput struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Version     string  `json:"version"`
	Cost        float64 `json:"cost"`
	SectionID   string  `json:"section_id"`
	TotalCopies int     `json:"total_copies"`
}

func (s *CatalogService) CreateBook(in CreateBookInput) (domain.Book, error) {
	title, ok := validate.Title(in.Title)
	if !ok {
		return domain.Book{}, domain.InvalidArgument("title must be 1-200 characters")
	}
	author, ok := validate.Author(in.Author)
	if !ok {
		return domain.Book{}, domain.InvalidArgument("author must be 1-120 characters")
	}
	version, ok := validate.Version(in.Version)
	if !ok {
		return domain.Book{}, domain.InvalidArgument("version must be 1-60 characters")
	}
	if in.Cost <= 0 {
		return domain.Book{}, domain.InvalidArgument("cost must be greater than zero")
	}
	if in.TotalCopies < 1 {
		return domain.Book{}, domain.InvalidArgument("total_copies must be at least 1")
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return domain.Book{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.Sections.Get(tx, in.SectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, domain.NotFound("section not found")
		}
		return domain.Book{}, err
	}

	if _, err := s.Books.FindByIdentity(tx, title, author, version, in.SectionID); err == nil {
		return domain.Book{}, domain.Conflict("this book/version already exists in the selected section")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, err
	}

	available, status := domain.ReconcileCopies(in.TotalCopies, in.TotalCopies)
	book := domain.Book{
		ID:              uuid.NewString(),
		SectionID:       in.SectionID,
		Title:           title,
		Author:          author,
		Version:         version,
		Cost:            in.Cost,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: available,
		Status:          status,
	}
	if err := s.Books.Insert(tx, book); err != nil {
		return domain.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Book{}, err
	}
	return s.Books.Get(book.ID)
}

// Restock adds copies to both the total and available counts.
func (s *CatalogService) Restock(bookID string, addedCopies int) (domain.Book, error) {
	if addedCopies < 1 {
		return domain.Book{}, domain.InvalidArgument("added_copies must be at least 1")
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return domain.Book{}, err
	}
	defer func() { _ = tx.Rollback() }()

	book, err := s.Books.GetTx(tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, domain.NotFound("book not found")
		}
		return domain.Book{}, err
	}

	total := book.TotalCopies + addedCopies
	available, status := domain.ReconcileCopies(total, book.AvailableCopies+addedCopies)
	if err := s.Books.UpdateCopies(tx, bookID, total, available, status); err != nil {
		return domain.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Book{}, err
	}
	return s.Books.Get(bookID)
}
