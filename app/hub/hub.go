package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/feedscope/feedscope/app/checker"
	"github.com/feedscope/feedscope/app/database"
	"github.com/feedscope/feedscope/app/source"
)

var (
	ErrInvalidSourceKind = errors.New("invalid source kind")
	ErrNotFound          = errors.New("subscription not found")
)

const defaultLimit = 20

// Hub ties the adapters, the checker and the store together into the
// engine's operations.
type Hub struct {
	registry *source.Registry
	checker  *checker.Checker
	subRepo  database.SubscriptionRepository
	itemRepo database.ItemRepository
}

func NewHub(registry *source.Registry, checker *checker.Checker,
	subRepo database.SubscriptionRepository, itemRepo database.ItemRepository) *Hub {
	return &Hub{
		registry: registry,
		checker:  checker,
		subRepo:  subRepo,
		itemRepo: itemRepo,
	}
}

type SubscribeResult struct {
	Status       string // "created" or "already_exists"
	Subscription database.Subscription
}

// Subscribe registers a source. Subscribing to an already-subscribed
// source reports the existing subscription instead of failing.
func (h *Hub) Subscribe(ctx context.Context, kindName, sourceID string) (*SubscribeResult, error) {
	kind, err := h.parseKind(kindName)
	if err != nil {
		return nil, err
	}
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("empty source identifier")
	}

	existing, err := h.subRepo.GetBySource(string(kind), sourceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &SubscribeResult{Status: "already_exists", Subscription: *existing}, nil
	}

	adapter, ok := h.registry.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSourceKind, kindName)
	}

	resolution, err := adapter.Resolve(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source: %w", err)
	}

	created, err := h.subRepo.Create(string(kind), sourceID, resolution.DisplayName, resolution.FeedURL)
	if errors.Is(err, database.ErrSubscriptionExists) {
		// Lost a race with a concurrent subscribe; report that row.
		existing, getErr := h.subRepo.GetBySource(string(kind), sourceID)
		if getErr != nil {
			return nil, getErr
		}
		if existing != nil {
			return &SubscribeResult{Status: "already_exists", Subscription: *existing}, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Subscribed", "kind", kind, "source", sourceID, "name", created.DisplayName)
	return &SubscribeResult{Status: "created", Subscription: *created}, nil
}

type UnsubscribeResult struct {
	Subscription database.Subscription
	ItemsRemoved int
}

// Unsubscribe removes a source and all of its stored items.
func (h *Hub) Unsubscribe(ctx context.Context, kindName, sourceID string) (*UnsubscribeResult, error) {
	kind, err := h.parseKind(kindName)
	if err != nil {
		return nil, err
	}

	sub, err := h.subRepo.GetBySource(string(kind), sourceID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kindName, sourceID)
	}

	removed, err := h.subRepo.Delete(sub.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("Unsubscribed", "kind", kind, "source", sourceID, "items_removed", removed)
	return &UnsubscribeResult{Subscription: *sub, ItemsRemoved: removed}, nil
}

// ListSubscriptions returns every subscription with its item count.
func (h *Hub) ListSubscriptions(ctx context.Context) ([]database.Subscription, error) {
	return h.subRepo.List()
}

type SourceOutcome struct {
	SourceKind  string
	SourceID    string
	DisplayName string
	NewItems    int
	Error       string
}

type CheckReport struct {
	Checked       int
	TotalNewItems int
	Sources       []SourceOutcome
}

// CheckFeeds fetches the current content of every subscription,
// optionally narrowed to one kind. Per-source failures are reported in
// the outcome list; only a storage failure fails the whole check.
func (h *Hub) CheckFeeds(ctx context.Context, kindName string) (*CheckReport, error) {
	filter := ""
	if kindName != "" {
		kind, err := h.parseKind(kindName)
		if err != nil {
			return nil, err
		}
		filter = string(kind)
	}

	subs, err := h.subRepo.ListByKind(filter)
	if err != nil {
		return nil, err
	}

	outcomes, err := h.checker.Run(ctx, subs)
	if err != nil {
		return nil, err
	}

	report := &CheckReport{Checked: len(outcomes)}
	for _, outcome := range outcomes {
		result := SourceOutcome{
			SourceKind:  outcome.Subscription.SourceKind,
			SourceID:    outcome.Subscription.SourceID,
			DisplayName: outcome.Subscription.DisplayName,
			NewItems:    outcome.NewItems,
		}
		if outcome.Err != nil {
			result.Error = outcome.Err.Error()
		}
		report.TotalNewItems += outcome.NewItems
		report.Sources = append(report.Sources, result)
	}

	return report, nil
}

// GetFeedItems returns the most recently fetched items, optionally
// narrowed to one kind.
func (h *Hub) GetFeedItems(ctx context.Context, kindName string, limit int) ([]database.Item, error) {
	filter := ""
	if kindName != "" {
		kind, err := h.parseKind(kindName)
		if err != nil {
			return nil, err
		}
		filter = string(kind)
	}

	if limit <= 0 {
		limit = defaultLimit
	}

	return h.itemRepo.GetRecent(filter, limit)
}

// SearchFeeds runs a full-text query over stored items. An empty result
// is normal, not an error.
func (h *Hub) SearchFeeds(ctx context.Context, query, kindName string, limit int) ([]database.Item, error) {
	filter := ""
	if kindName != "" {
		kind, err := h.parseKind(kindName)
		if err != nil {
			return nil, err
		}
		filter = string(kind)
	}

	if limit <= 0 {
		limit = defaultLimit
	}

	return h.itemRepo.Search(query, filter, limit)
}

func (h *Hub) parseKind(kindName string) (source.Kind, error) {
	kind, ok := source.ParseKind(kindName)
	if !ok {
		return "", fmt.Errorf("%w: %q, expected one of %s",
			ErrInvalidSourceKind, kindName, strings.Join(source.KindNames(), ", "))
	}
	return kind, nil
}
