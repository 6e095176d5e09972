package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/feedscope/feedscope/app/checker"
	"github.com/feedscope/feedscope/app/database"
	"github.com/feedscope/feedscope/app/feed"
	"github.com/feedscope/feedscope/app/hub"
	"github.com/feedscope/feedscope/app/source"
)

const testRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>A story about databases</title>
      <link>https://example.com/databases</link>
      <description>Indexes and queries.</description>
    </item>
  </channel>
</rss>`

func newTestServer(t *testing.T, apiAccessKey string) (http.Handler, *httptest.Server) {
	t.Helper()

	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testRSS))
	}))
	t.Cleanup(feedServer.Close)

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	subRepo := database.NewSubscriptionRepo(db)
	itemRepo := database.NewItemRepo(db)
	client := source.NewClient(feedServer.Client(), "feedscope-test")
	registry := source.NewRegistry(client, feed.NewParser(), builtinTestPresets(), source.Options{})
	chk := checker.NewChecker(registry, subRepo, itemRepo, 2, 5*time.Second)
	feedHub := hub.NewHub(registry, chk, subRepo, itemRepo)

	handler := NewHandler(feedHub, subRepo, itemRepo)
	return NewServer(handler, apiAccessKey), feedServer
}

func builtinTestPresets() map[string]source.Preset {
	presets, _ := source.LoadPresets("")
	return presets
}

func doJSON(t *testing.T, server http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestSubscriptionEndpoints(t *testing.T) {
	server, feedServer := newTestServer(t, "")

	body := `{"kind": "news", "source": "` + feedServer.URL + `"}`

	w := doJSON(t, server, http.MethodPost, "/subscriptions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, server, http.MethodPost, "/subscriptions", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate subscribe, got %d", w.Code)
	}

	w = doJSON(t, server, http.MethodGet, "/subscriptions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listResp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if listResp.Total != 1 {
		t.Errorf("expected 1 subscription, got %d", listResp.Total)
	}

	w = doJSON(t, server, http.MethodDelete, "/subscriptions", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, server, http.MethodDelete, "/subscriptions", body)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing subscription, got %d", w.Code)
	}
}

func TestSubscribeValidation(t *testing.T) {
	server, _ := newTestServer(t, "")

	w := doJSON(t, server, http.MethodPost, "/subscriptions", `{"kind": "news"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing source, got %d", w.Code)
	}

	w = doJSON(t, server, http.MethodPost, "/subscriptions", `{"kind": "carrier-pigeon", "source": "x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", w.Code)
	}
}

func TestCheckItemsAndSearch(t *testing.T) {
	server, feedServer := newTestServer(t, "")

	body := `{"kind": "news", "source": "` + feedServer.URL + `"}`
	if w := doJSON(t, server, http.MethodPost, "/subscriptions", body); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w := doJSON(t, server, http.MethodPost, "/check", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var checkResp struct {
		TotalNewItems int `json:"total_new_items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &checkResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if checkResp.TotalNewItems != 1 {
		t.Errorf("expected 1 new item, got %d", checkResp.TotalNewItems)
	}

	w = doJSON(t, server, http.MethodGet, "/items?kind=news", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(t, server, http.MethodGet, "/search?q=databases", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var searchResp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &searchResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if searchResp.Total != 1 {
		t.Errorf("expected 1 search result, got %d", searchResp.Total)
	}

	w = doJSON(t, server, http.MethodGet, "/search", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing query, got %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	server, _ := newTestServer(t, "secret")

	w := doJSON(t, server, http.MethodGet, "/subscriptions", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid key, got %d", rec.Code)
	}

	// Health stays open regardless of the key
	w = doJSON(t, server, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for health, got %d", w.Code)
	}
}
