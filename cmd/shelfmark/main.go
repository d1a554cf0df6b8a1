package main

import (
	"io"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"shelfmark/internal/config"
	"shelfmark/internal/domain"
	"shelfmark/internal/http/handlers"
	"shelfmark/internal/repos"
	"shelfmark/internal/services"
)

func main() {
	root := &cobra.Command{
		Use:          "shelfmark",
		Short:        "Lending library ledger service",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openAll() (config.Config, *sqlx.DB, error) {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openAll()
			if err != nil {
				return err
			}

			catalog := services.NewCatalogService(db, repos.NewSectionRepo(db), repos.NewBookRepo(db))
			if err := catalog.EnsureSections(config.Sections); err != nil {
				return err
			}

			app := handlers.NewApp(db, cfg, "./web/templates")
			return app.Listen(":" + cfg.Port)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed sections and a small demo catalog (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openAll()
			if err != nil {
				return err
			}

			sectionRepo := repos.NewSectionRepo(db)
			bookRepo := repos.NewBookRepo(db)
			catalog := services.NewCatalogService(db, sectionRepo, bookRepo)
			students := services.NewStudentService(db, repos.NewStudentRepo(db), repos.NewBorrowRepo(db), cfg.Rules)

			if err := catalog.EnsureSections(config.Sections); err != nil {
				return err
			}
			sections, err := catalog.ListSections()
			if err != nil {
				return err
			}
			byName := make(map[string]string, len(sections))
			for _, s := range sections {
				byName[s.Name] = s.ID
			}

			demoBooks := []services.CreateBookInput{
				{Title: "A Brief History of Time", Author: "Stephen Hawking", Version: "1st", Cost: 4500, SectionID: byName["SCIENCES"], TotalCopies: 3},
				{Title: "Things Fall Apart", Author: "Chinua Achebe", Version: "2nd", Cost: 2500, SectionID: byName["ARTS"], TotalCopies: 5},
				{Title: "Principles of Economics", Author: "N. Gregory Mankiw", Version: "9th", Cost: 12000, SectionID: byName["ECONOMICS"], TotalCopies: 2},
			}
			for _, in := range demoBooks {
				if _, err := catalog.CreateBook(in); err != nil && !domain.IsKind(err, domain.KindConflict) {
					return err
				}
			}

			demoStudents := []services.RegisterStudentInput{
				{FullName: "Adaeze Okafor", MatricNumber: "CS001", Email: "adaeze.okafor@example.edu", Department: "Computer Science"},
				{FullName: "Tunde Bakare", MatricNumber: "EC014", Email: "tunde.bakare@example.edu", Department: "Economics"},
			}
			for _, in := range demoStudents {
				if _, err := students.Register(in); err != nil && !domain.IsKind(err, domain.KindConflict) {
					return err
				}
			}

			log.Println("[seed] done")
			return nil
		},
	}
}
