package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"dev/bravebird/dashboard-verifier/pkg/config"
	"dev/bravebird/dashboard-verifier/pkg/models"
)

func testRouter(cfg *config.Config) *mux.Router {
	h := NewHandlers(nil, nil, cfg)

	router := mux.NewRouter()
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/checks", h.ListChecks).Methods("GET")
	apiRouter.HandleFunc("/checks/{name}", h.GetCheck).Methods("GET")
	apiRouter.HandleFunc("/runs", h.ListRuns).Methods("GET")
	apiRouter.HandleFunc("/screenshots/{filename}", h.ServeScreenshot).Methods("GET")
	return router
}

func TestListChecks(t *testing.T) {
	cfg := &config.Config{
		Checks: []models.Check{
			{Name: "dashboard", TargetURL: "http://localhost:3000"},
			{Name: "admin", TargetURL: "http://localhost:3001"},
		},
	}

	rec := httptest.NewRecorder()
	testRouter(cfg).ServeHTTP(rec, httptest.NewRequest("GET", "/api/checks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var checks []models.Check
	if err := json.Unmarshal(rec.Body.Bytes(), &checks); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(checks) != 2 {
		t.Errorf("check count = %d, want 2", len(checks))
	}
}

func TestGetCheck(t *testing.T) {
	cfg := &config.Config{
		Checks: []models.Check{{Name: "dashboard", TargetURL: "http://localhost:3000"}},
	}
	router := testRouter(cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/checks/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("known check status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/checks/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown check status = %d, want 404", rec.Code)
	}
}

func TestListRunsWithoutDatabase(t *testing.T) {
	cfg := &config.Config{}

	rec := httptest.NewRecorder()
	testRouter(cfg).ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a database", rec.Code)
	}
}

func TestServeScreenshot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dashboard.png"), []byte("not-a-real-png"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{ScreenshotDir: dir}
	router := testRouter(cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/screenshots/dashboard.png", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("existing screenshot status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content type = %q, want image/png", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/screenshots/missing.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing screenshot status = %d, want 404", rec.Code)
	}
}
