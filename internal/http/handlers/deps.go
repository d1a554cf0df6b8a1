package handlers

import (
	"github.com/jmoiron/sqlx"

	"shelfmark/internal/config"
	"shelfmark/internal/repos"
	"shelfmark/internal/services"
)

type Deps struct {
	SectionHandler   *SectionHandler
	BookHandler      *BookHandler
	StudentHandler   *StudentHandler
	BorrowHandler    *BorrowHandler
	DashboardHandler *DashboardHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	sectionRepo := repos.NewSectionRepo(db)
	bookRepo := repos.NewBookRepo(db)
	studentRepo := repos.NewStudentRepo(db)
	borrowRepo := repos.NewBorrowRepo(db)

	catalogSvc := services.NewCatalogService(db, sectionRepo, bookRepo)
	studentSvc := services.NewStudentService(db, studentRepo, borrowRepo, cfg.Rules)
	lendingSvc := services.NewLendingService(db, studentRepo, bookRepo, borrowRepo, cfg.Rules)
	reportingSvc := services.NewReportingService(db, borrowRepo, cfg.Rules)

	return &Deps{
		SectionHandler:   &SectionHandler{Catalog: catalogSvc},
		BookHandler:      &BookHandler{Catalog: catalogSvc},
		StudentHandler:   &StudentHandler{Students: studentSvc},
		BorrowHandler:    &BorrowHandler{Lending: lendingSvc, Reporting: reportingSvc},
		DashboardHandler: &DashboardHandler{Reporting: reportingSvc},
	}
}
