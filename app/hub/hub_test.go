package hub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feedscope/feedscope/app/checker"
	"github.com/feedscope/feedscope/app/database"
	"github.com/feedscope/feedscope/app/feed"
	"github.com/feedscope/feedscope/app/source"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Generics in practice</title>
      <link>https://example.com/generics</link>
      <description>Using generics in production code.</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Weather report</title>
      <link>https://example.com/weather</link>
      <description>Rain expected tomorrow.</description>
    </item>
  </channel>
</rss>`

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testRSS))
	}))
	t.Cleanup(server.Close)

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	client := source.NewClient(server.Client(), "feedscope-test")
	parser := feed.NewParser()
	presets, err := source.LoadPresets("")
	if err != nil {
		t.Fatalf("failed to load presets: %v", err)
	}
	registry := source.NewRegistry(client, parser, presets, source.Options{})

	subRepo := database.NewSubscriptionRepo(db)
	itemRepo := database.NewItemRepo(db)
	chk := checker.NewChecker(registry, subRepo, itemRepo, 2, 5*time.Second)

	return NewHub(registry, chk, subRepo, itemRepo), server
}

func TestSubscribeAndList(t *testing.T) {
	hub, server := newTestHub(t)
	ctx := context.Background()

	result, err := hub.Subscribe(ctx, "news", server.URL)
	if err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}
	if result.Status != "created" {
		t.Errorf("expected status created, got %q", result.Status)
	}
	if result.Subscription.DisplayName != "Example Feed" {
		t.Errorf("expected display name from the feed title, got %q", result.Subscription.DisplayName)
	}

	again, err := hub.Subscribe(ctx, "news", server.URL)
	if err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}
	if again.Status != "already_exists" {
		t.Errorf("expected status already_exists, got %q", again.Status)
	}

	subs, err := hub.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
}

func TestSubscribeRejectsUnknownKind(t *testing.T) {
	hub, _ := newTestHub(t)

	_, err := hub.Subscribe(context.Background(), "telegraph", "anything")
	if !errors.Is(err, ErrInvalidSourceKind) {
		t.Errorf("expected ErrInvalidSourceKind, got %v", err)
	}
}

func TestCheckFeedsStoresItems(t *testing.T) {
	hub, server := newTestHub(t)
	ctx := context.Background()

	if _, err := hub.Subscribe(ctx, "news", server.URL); err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}

	report, err := hub.CheckFeeds(ctx, "")
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	if report.Checked != 1 {
		t.Errorf("expected 1 checked subscription, got %d", report.Checked)
	}
	if report.TotalNewItems != 2 {
		t.Errorf("expected 2 new items, got %d", report.TotalNewItems)
	}

	// Checking again finds nothing new.
	report, err = hub.CheckFeeds(ctx, "")
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	if report.TotalNewItems != 0 {
		t.Errorf("expected 0 new items on re-check, got %d", report.TotalNewItems)
	}

	items, err := hub.GetFeedItems(ctx, "", 0)
	if err != nil {
		t.Fatalf("unexpected items error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].SourceName != "Example Feed" {
		t.Errorf("expected joined source name, got %q", items[0].SourceName)
	}
}

func TestCheckFeedsKindFilter(t *testing.T) {
	hub, server := newTestHub(t)
	ctx := context.Background()

	if _, err := hub.Subscribe(ctx, "news", server.URL); err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}

	report, err := hub.CheckFeeds(ctx, "reddit")
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	if report.Checked != 0 {
		t.Errorf("expected no subscriptions of kind reddit, got %d", report.Checked)
	}

	if _, err := hub.CheckFeeds(ctx, "bogus"); !errors.Is(err, ErrInvalidSourceKind) {
		t.Errorf("expected ErrInvalidSourceKind, got %v", err)
	}
}

func TestSearchFeeds(t *testing.T) {
	hub, server := newTestHub(t)
	ctx := context.Background()

	if _, err := hub.Subscribe(ctx, "news", server.URL); err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}
	if _, err := hub.CheckFeeds(ctx, ""); err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}

	results, err := hub.SearchFeeds(ctx, "generics", "", 0)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 search result, got %d", len(results))
	}
	if results[0].Title != "Generics in practice" {
		t.Errorf("unexpected search result title %q", results[0].Title)
	}

	empty, err := hub.SearchFeeds(ctx, "nonexistent", "", 0)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no results, got %d", len(empty))
	}
}

func TestUnsubscribe(t *testing.T) {
	hub, server := newTestHub(t)
	ctx := context.Background()

	if _, err := hub.Subscribe(ctx, "news", server.URL); err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}
	if _, err := hub.CheckFeeds(ctx, ""); err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}

	result, err := hub.Unsubscribe(ctx, "news", server.URL)
	if err != nil {
		t.Fatalf("unexpected unsubscribe error: %v", err)
	}
	if result.ItemsRemoved != 2 {
		t.Errorf("expected 2 items removed, got %d", result.ItemsRemoved)
	}

	if _, err := hub.Unsubscribe(ctx, "news", server.URL); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	subs, err := hub.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no subscriptions, got %d", len(subs))
	}
}
