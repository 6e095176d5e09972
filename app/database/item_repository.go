package database

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ItemRepo handles database operations for feed items
type ItemRepo struct {
	db *DB
}

// NewItemRepo creates a new item repository
func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// InsertBatch stores a check's worth of items for one subscription in a
// single transaction. Items without a link are skipped, items whose link
// is already stored are left untouched. Returns the number of newly
// inserted rows.
func (r *ItemRepo) InsertBatch(subscriptionID string, items []NewItem, fetchedAt time.Time) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO feed_items (subscription_id, link, title, content, author, published_at, fetched_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (subscription_id, link) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, item := range items {
		if item.Link == "" {
			continue
		}

		metadata, err := encodeMetadata(item.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to encode item metadata: %w", err)
		}

		result, err := stmt.Exec(
			subscriptionID, item.Link, item.Title, item.Content, item.Author,
			item.PublishedAt, formatTime(fetchedAt), metadata,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert item: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count inserted items: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// GetRecent returns the most recently fetched items, optionally filtered
// to one source kind
func (r *ItemRepo) GetRecent(sourceKind string, limit int) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT i.id, i.subscription_id, s.source_kind, s.display_name,
		       i.link, i.title, i.content, i.author, i.published_at, i.fetched_at, i.metadata
		FROM feed_items i
		JOIN subscriptions s ON s.id = i.subscription_id
		WHERE ? = '' OR s.source_kind = ?
		ORDER BY i.fetched_at DESC, i.id DESC
		LIMIT ?
	`, sourceKind, sourceKind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Search runs a full-text query over stored titles and contents, ranked
// by relevance with recency as the tiebreak. An empty query matches
// nothing.
func (r *ItemRepo) Search(query, sourceKind string, limit int) ([]Item, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := r.db.Query(`
		SELECT i.id, i.subscription_id, s.source_kind, s.display_name,
		       i.link, i.title, i.content, i.author, i.published_at, i.fetched_at, i.metadata
		FROM feed_items_fts
		JOIN feed_items i ON i.id = feed_items_fts.rowid
		JOIN subscriptions s ON s.id = i.subscription_id
		WHERE feed_items_fts MATCH ?
		  AND (? = '' OR s.source_kind = ?)
		ORDER BY bm25(feed_items_fts), i.fetched_at DESC
		LIMIT ?
	`, match, sourceKind, sourceKind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// CountForSubscription returns the number of stored items for one subscription
func (r *ItemRepo) CountForSubscription(subscriptionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feed_items WHERE subscription_id = ?", subscriptionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get subscription item count: %w", err)
	}
	return count, nil
}

// Count returns the total number of stored items
func (r *ItemRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feed_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanItems(rows rowScanner) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var item Item
		var fetchedAt, metadata string
		err := rows.Scan(
			&item.ID, &item.SubscriptionID, &item.SourceKind, &item.SourceName,
			&item.Link, &item.Title, &item.Content, &item.Author,
			&item.PublishedAt, &fetchedAt, &metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		item.FetchedAt = parseTime(fetchedAt)
		item.Metadata = decodeMetadata(metadata)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func encodeMetadata(metadata map[string]string) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMetadata(raw string) map[string]string {
	if raw == "" || raw == "{}" {
		return nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil
	}
	return metadata
}

// ftsQuery quotes each whitespace-separated term so user input can never
// be interpreted as full-text query syntax.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
