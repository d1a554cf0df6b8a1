package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfmark/internal/config"
	"shelfmark/internal/http/handlers"
	"shelfmark/internal/repos"
	"shelfmark/internal/services"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	catalog := services.NewCatalogService(db, repos.NewSectionRepo(db), repos.NewBookRepo(db))
	require.NoError(t, catalog.EnsureSections(config.Sections))

	cfg := config.Config{Rules: config.DefaultRules()}
	return handlers.NewApp(db, cfg, "../../web/templates")
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func doJSONList(t *testing.T, app *fiber.App, path string) []map[string]any {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	resp, body := doJSON(t, app, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
}

func TestBorrowLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	sections := doJSONList(t, app, "/api/v1/sections")
	require.Len(t, sections, len(config.Sections))
	var sciencesID string
	for _, s := range sections {
		if s["name"] == "SCIENCES" {
			sciencesID = s["id"].(string)
		}
	}
	require.NotEmpty(t, sciencesID)

	resp, student := doJSON(t, app, "POST", "/api/v1/students", map[string]any{
		"full_name":     "Funke Adeyemi",
		"matric_number": "cs050",
		"email":         "Funke@Example.edu",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "CS050", student["matric_number"])
	assert.Equal(t, "funke@example.edu", student["email"])
	studentID := student["id"].(string)

	resp, book := doJSON(t, app, "POST", "/api/v1/books", map[string]any{
		"title": "Introduction to Algorithms", "author": "Cormen", "version": "3rd",
		"cost": 9000, "section_id": sciencesID, "total_copies": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bookID := book["id"].(string)
	assert.Equal(t, "AVAILABLE", book["status"])

	// duplicate identity tuple
	resp, _ = doJSON(t, app, "POST", "/api/v1/books", map[string]any{
		"title": "Introduction to Algorithms", "author": "Cormen", "version": "3rd",
		"cost": 9000, "section_id": sciencesID, "total_copies": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, borrow := doJSON(t, app, "POST", "/api/v1/borrows", map[string]any{
		"student_id": studentID, "book_id": bookID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "BORROWED", borrow["status"])
	borrowID := borrow["id"].(string)

	// same pair again while open
	resp, _ = doJSON(t, app, "POST", "/api/v1/borrows", map[string]any{
		"student_id": studentID, "book_id": bookID,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// last copy is out: a second student hits InvalidState
	resp, other := doJSON(t, app, "POST", "/api/v1/students", map[string]any{
		"full_name":     "Second Reader",
		"matric_number": "cs051",
		"email":         "second@example.edu",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, "POST", "/api/v1/borrows", map[string]any{
		"student_id": other["id"].(string), "book_id": bookID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, returned := doJSON(t, app, "POST", "/api/v1/borrows/"+borrowID+"/return", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RETURNED", returned["status"])

	resp, _ = doJSON(t, app, "POST", "/api/v1/borrows/"+borrowID+"/return", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	dash, err := app.Test(httptest.NewRequest("GET", "/api/v1/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, dash.StatusCode)
}

func TestErrorKindStatusMapping(t *testing.T) {
	app := newTestApp(t)

	// NotFound
	resp, _ := doJSON(t, app, "POST", "/api/v1/borrows", map[string]any{
		"student_id": "no-such-student", "book_id": "no-such-book",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/v1/books/no-such-book/stock", map[string]any{
		"added_copies": 1,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// InvalidArgument
	resp, _ = doJSON(t, app, "POST", "/api/v1/students", map[string]any{
		"full_name": "Valid Name", "matric_number": "CS052", "email": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// malformed body
	req := httptest.NewRequest("POST", "/api/v1/books", bytes.NewReader([]byte("not-json")))
	req.Header.Set("Content-Type", "application/json")
	r, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)

	// unknown API path stays JSON
	r, err = app.Test(httptest.NewRequest("GET", "/api/v1/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
	assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
}

func TestDashboardPageRenders(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Library Dashboard")
}
