package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfmark/internal/domain"
)

func TestBorrowUntilOutOfStock(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Popular Book", 2)
	first := f.addStudent(t, "First Student", "CS201", "first@example.edu")
	second := f.addStudent(t, "Second Student", "CS202", "second@example.edu")
	third := f.addStudent(t, "Third Student", "CS203", "third@example.edu")

	v, err := f.lending.Borrow(first, bookID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.BorrowStatusBorrowed, v.Status)

	books, err := f.catalog.ListBooks("", true)
	require.NoError(t, err)
	assert.Equal(t, 1, books[0].AvailableCopies)
	assert.Equal(t, domain.BookAvailable, books[0].Status)

	_, err = f.lending.Borrow(second, bookID, 0)
	require.NoError(t, err)
	books, err = f.catalog.ListBooks("", true)
	require.NoError(t, err)
	assert.Equal(t, 0, books[0].AvailableCopies)
	assert.Equal(t, domain.BookOutOfStock, books[0].Status)

	_, err = f.lending.Borrow(third, bookID, 0)
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
}

func TestBorrowValidation(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Some Book", 1)
	studentID := f.addStudent(t, "Some Student", "CS210", "some@example.edu")

	_, err := f.lending.Borrow(studentID, bookID, 31)
	assert.True(t, domain.IsKind(err, domain.KindInvalidArgument))

	_, err = f.lending.Borrow(studentID, bookID, -1)
	assert.True(t, domain.IsKind(err, domain.KindInvalidArgument))

	_, err = f.lending.Borrow("missing-student", bookID, 7)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	_, err = f.lending.Borrow(studentID, "missing-book", 7)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestBorrowDefaultLendDays(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Default Window", 1)
	studentID := f.addStudent(t, "Window Student", "CS211", "window@example.edu")

	v, err := f.lending.Borrow(studentID, bookID, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, v.LendDays)
	assert.Equal(t, domain.FormatTime(f.now.AddDate(0, 0, 7)), v.DueAt)
}

func TestDoubleBorrowSameBook(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Held Book", 3)
	studentID := f.addStudent(t, "Greedy Student", "CS220", "greedy@example.edu")

	_, err := f.lending.Borrow(studentID, bookID, 7)
	require.NoError(t, err)

	// a student cannot hold two concurrent copies of the same book
	_, err = f.lending.Borrow(studentID, bookID, 7)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	// availability untouched by the rejected attempt
	books, err := f.catalog.ListBooks("", true)
	require.NoError(t, err)
	assert.Equal(t, 2, books[0].AvailableCopies)
}

func TestReturnComputesFine(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Fined Book", 1)
	studentID := f.addStudent(t, "Late Student", "CS230", "late@example.edu")

	v, err := f.lending.Borrow(studentID, bookID, 7)
	require.NoError(t, err)

	// ten days later: three days past due
	f.advance(10 * 24 * time.Hour)
	returned, err := f.lending.Return(v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BorrowStatusReturned, returned.Status)
	assert.Equal(t, 1500.0, returned.FineAmount)
	assert.Equal(t, 1500.0, returned.OutstandingFine)
	require.NotNil(t, returned.ReturnedAt)

	books, err := f.catalog.ListBooks("", true)
	require.NoError(t, err)
	assert.Equal(t, 1, books[0].AvailableCopies)
}

func TestReturnOnDueDateNoFine(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Punctual Book", 1)
	studentID := f.addStudent(t, "Punctual Student", "CS231", "punctual@example.edu")

	v, err := f.lending.Borrow(studentID, bookID, 7)
	require.NoError(t, err)

	// exactly seven days later, same time of day
	f.advance(7 * 24 * time.Hour)
	returned, err := f.lending.Return(v.ID)
	require.NoError(t, err)
	assert.Zero(t, returned.FineAmount)
}

func TestFineMatchesLiveComputation(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Symmetric Book", 1)
	studentID := f.addStudent(t, "Symmetric Student", "CS232", "symmetric@example.edu")

	v, err := f.lending.Borrow(studentID, bookID, 7)
	require.NoError(t, err)

	f.advance(12 * 24 * time.Hour)

	// the fine shown before return must match the fine frozen at return
	live, err := f.reporting.ListBorrows(true, true)
	require.NoError(t, err)
	require.Len(t, live, 1)

	returned, err := f.lending.Return(v.ID)
	require.NoError(t, err)
	assert.Equal(t, live[0].OutstandingFine, returned.FineAmount)
}

func TestDoubleReturn(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Returned Book", 1)
	studentID := f.addStudent(t, "Return Student", "CS233", "return@example.edu")

	v, err := f.lending.Borrow(studentID, bookID, 7)
	require.NoError(t, err)
	_, err = f.lending.Return(v.ID)
	require.NoError(t, err)

	_, err = f.lending.Return(v.ID)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	// no double increment
	books, err := f.catalog.ListBooks("", true)
	require.NoError(t, err)
	assert.Equal(t, 1, books[0].AvailableCopies)
	assert.Equal(t, 1, books[0].TotalCopies)

	_, err = f.lending.Return("missing-record")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCopyConservation(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, "Conserved Book", 3)
	a := f.addStudent(t, "Student A", "CS240", "a@example.edu")
	b := f.addStudent(t, "Student B", "CS241", "b@example.edu")

	check := func() {
		books, err := f.catalog.ListBooks("", true)
		require.NoError(t, err)
		open, err := f.reporting.ListBorrows(true, false)
		require.NoError(t, err)
		assert.Equal(t, books[0].TotalCopies, books[0].AvailableCopies+len(open))
	}

	check()
	va, err := f.lending.Borrow(a, bookID, 7)
	require.NoError(t, err)
	check()
	vb, err := f.lending.Borrow(b, bookID, 7)
	require.NoError(t, err)
	check()
	_, err = f.lending.Return(va.ID)
	require.NoError(t, err)
	check()
	_, err = f.lending.Return(vb.ID)
	require.NoError(t, err)
	check()
}
