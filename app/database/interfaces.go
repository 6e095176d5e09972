package database

import (
	"time"
)

// NewItem is a fetched entry ready for storage. PublishedAt keeps
// whatever timestamp text the source provided.
type NewItem struct {
	Link        string
	Title       string
	Content     string
	Author      string
	PublishedAt string
	Metadata    map[string]string
}

type SubscriptionRepository interface {
	Create(sourceKind, sourceID, displayName, feedURL string) (*Subscription, error)
	GetBySource(sourceKind, sourceID string) (*Subscription, error)
	List() ([]Subscription, error)
	ListByKind(sourceKind string) ([]Subscription, error)
	UpdateLastChecked(id string, checkedAt time.Time) error
	Delete(id string) (int, error)
	Count() (int, error)
}

type ItemRepository interface {
	InsertBatch(subscriptionID string, items []NewItem, fetchedAt time.Time) (int, error)
	GetRecent(sourceKind string, limit int) ([]Item, error)
	Search(query, sourceKind string, limit int) ([]Item, error)
	CountForSubscription(subscriptionID string) (int, error)
	Count() (int, error)
}
