package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newHNServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[1, 2, 3]")
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 1, "by": "alice", "title": "A story", "url": "https://example.com/story",
			"score": 120, "descendants": 45, "time": 1767225600}`)
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 2, "by": "bob", "title": "Ask HN: Anything?",
			"text": "<p>Question body</p>", "score": 10, "descendants": 3, "time": 1767225700}`)
	})
	mux.HandleFunc("/item/3.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestHackerNewsFetch(t *testing.T) {
	server := newHNServer(t)
	adapter := &HackerNewsAdapter{
		client:  NewClient(server.Client(), "test"),
		apiBase: server.URL,
	}

	items, err := adapter.Fetch(context.Background(), "top")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Story 3 fails to resolve and is skipped, not fatal.
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	first := items[0]
	if first.Title != "A story" {
		t.Errorf("Expected title 'A story', got: %s", first.Title)
	}
	if first.Link != "https://example.com/story" {
		t.Errorf("Unexpected link: %s", first.Link)
	}
	if first.Author != "alice" {
		t.Errorf("Expected author 'alice', got: %s", first.Author)
	}
	if first.Metadata["score"] != "120" || first.Metadata["comments"] != "45" {
		t.Errorf("Unexpected metadata: %v", first.Metadata)
	}
	if first.Published == "" {
		t.Error("Expected published time from unix timestamp")
	}

	// Ask posts carry no URL and link to the discussion page.
	second := items[1]
	if second.Link != "https://news.ycombinator.com/item?id=2" {
		t.Errorf("Expected discussion link, got: %s", second.Link)
	}
	if second.Content != "Question body" {
		t.Errorf("Expected sanitized text, got: %s", second.Content)
	}
}

func TestHackerNewsFetchRespectsLimit(t *testing.T) {
	server := newHNServer(t)
	adapter := &HackerNewsAdapter{
		client:  NewClient(server.Client(), "test"),
		limit:   1,
		apiBase: server.URL,
	}

	items, err := adapter.Fetch(context.Background(), "top")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item with limit 1, got: %d", len(items))
	}
}

func TestHackerNewsUnknownList(t *testing.T) {
	adapter := &HackerNewsAdapter{client: NewClient(nil, "test")}

	if _, err := adapter.Fetch(context.Background(), "front"); err == nil {
		t.Error("Expected error for unknown list name")
	}
	if _, err := adapter.Resolve(context.Background(), "front"); err == nil {
		t.Error("Expected error for unknown list name")
	}
}

func TestHackerNewsResolve(t *testing.T) {
	adapter := &HackerNewsAdapter{client: NewClient(nil, "test")}

	res, err := adapter.Resolve(context.Background(), "best")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if res.DisplayName != "Hacker News (best)" {
		t.Errorf("Unexpected display name: %s", res.DisplayName)
	}
	if res.FeedURL != "https://hacker-news.firebaseio.com/v0/beststories.json" {
		t.Errorf("Unexpected feed URL: %s", res.FeedURL)
	}
}
