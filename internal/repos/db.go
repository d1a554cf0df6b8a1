package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one pooled connection keeps concurrent
	// transactions serialized (and keeps :memory: databases coherent in tests).
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Sections
CREATE TABLE IF NOT EXISTS sections(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);

-- Books
CREATE TABLE IF NOT EXISTS books(
  id TEXT PRIMARY KEY,
  section_id TEXT NOT NULL REFERENCES sections(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  version TEXT NOT NULL,
  cost NUMERIC NOT NULL CHECK (cost > 0),
  total_copies INTEGER NOT NULL CHECK (total_copies >= 0),
  available_copies INTEGER NOT NULL CHECK (available_copies >= 0 AND available_copies <= total_copies),
  status TEXT NOT NULL DEFAULT 'AVAILABLE',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_books_identity ON books(title, author, version, section_id);
CREATE INDEX IF NOT EXISTS idx_books_section ON books(section_id);

-- Students
CREATE TABLE IF NOT EXISTS students(
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  matric_number TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  department TEXT,
  created_at TEXT NOT NULL
);

-- Borrow records
CREATE TABLE IF NOT EXISTS borrow_records(
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id),
  book_id TEXT NOT NULL REFERENCES books(id),
  borrowed_at TEXT NOT NULL,
  due_at TEXT NOT NULL,
  lend_days INTEGER NOT NULL CHECK (lend_days >= 1),
  returned_at TEXT,
  fine_amount NUMERIC NOT NULL DEFAULT 0
);
-- At most one open record per (student, book) pair.
CREATE UNIQUE INDEX IF NOT EXISTS idx_borrows_open ON borrow_records(student_id, book_id) WHERE returned_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_borrows_student ON borrow_records(student_id);
CREATE INDEX IF NOT EXISTS idx_borrows_book ON borrow_records(book_id);
CREATE INDEX IF NOT EXISTS idx_borrows_due ON borrow_records(due_at);
`
	_, err := db.Exec(schema)
	return err
}
