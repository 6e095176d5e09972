package database

import (
	"time"
)

type Subscription struct {
	ID            string
	SourceKind    string
	SourceID      string
	DisplayName   string
	FeedURL       string // Endpoint recorded when the source was resolved
	LastCheckedAt *time.Time
	CreatedAt     time.Time
	ItemCount     int // Populated by List only
}

type Item struct {
	ID             int64
	SubscriptionID string
	SourceKind     string
	SourceName     string // Subscription display name, joined on read
	Link           string
	Title          string
	Content        string
	Author         string
	PublishedAt    string // Verbatim timestamp text from the source
	FetchedAt      time.Time
	Metadata       map[string]string
}
