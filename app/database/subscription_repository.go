package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrSubscriptionExists reports a (source_kind, source_id) pair that is
// already subscribed.
var ErrSubscriptionExists = errors.New("subscription already exists")

// SubscriptionRepo handles database operations for subscriptions
type SubscriptionRepo struct {
	db *DB
}

// NewSubscriptionRepo creates a new subscription repository
func NewSubscriptionRepo(db *DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// Create inserts a new subscription and returns the stored row
func (r *SubscriptionRepo) Create(sourceKind, sourceID, displayName, feedURL string) (*Subscription, error) {
	sub := &Subscription{
		ID:          uuid.NewString(),
		SourceKind:  sourceKind,
		SourceID:    sourceID,
		DisplayName: displayName,
		FeedURL:     feedURL,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	_, err := r.db.Exec(`
		INSERT INTO subscriptions (id, source_kind, source_id, display_name, feed_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sub.ID, sub.SourceKind, sub.SourceID, sub.DisplayName, sub.FeedURL, formatTime(sub.CreatedAt))

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSubscriptionExists
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	return sub, nil
}

// GetBySource retrieves a subscription by its source identity, returning
// nil when no such subscription exists
func (r *SubscriptionRepo) GetBySource(sourceKind, sourceID string) (*Subscription, error) {
	row := r.db.QueryRow(`
		SELECT id, source_kind, source_id, display_name, feed_url, last_checked_at, created_at
		FROM subscriptions
		WHERE source_kind = ? AND source_id = ?
	`, sourceKind, sourceID)

	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription by source: %w", err)
	}

	return sub, nil
}

// List returns all subscriptions with their stored item counts
func (r *SubscriptionRepo) List() ([]Subscription, error) {
	rows, err := r.db.Query(`
		SELECT s.id, s.source_kind, s.source_id, s.display_name, s.feed_url,
		       s.last_checked_at, s.created_at, COUNT(i.id)
		FROM subscriptions s
		LEFT JOIN feed_items i ON i.subscription_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var lastChecked sql.NullString
		var createdAt string
		err := rows.Scan(
			&sub.ID, &sub.SourceKind, &sub.SourceID, &sub.DisplayName, &sub.FeedURL,
			&lastChecked, &createdAt, &sub.ItemCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		sub.LastCheckedAt = parseNullTime(lastChecked)
		sub.CreatedAt = parseTime(createdAt)
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	return subs, nil
}

// ListByKind returns subscriptions of one source kind, or all of them
// when sourceKind is empty
func (r *SubscriptionRepo) ListByKind(sourceKind string) ([]Subscription, error) {
	rows, err := r.db.Query(`
		SELECT id, source_kind, source_id, display_name, feed_url, last_checked_at, created_at
		FROM subscriptions
		WHERE ? = '' OR source_kind = ?
		ORDER BY created_at, id
	`, sourceKind, sourceKind)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions by kind: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var lastChecked sql.NullString
		var createdAt string
		err := rows.Scan(
			&sub.ID, &sub.SourceKind, &sub.SourceID, &sub.DisplayName, &sub.FeedURL,
			&lastChecked, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		sub.LastCheckedAt = parseNullTime(lastChecked)
		sub.CreatedAt = parseTime(createdAt)
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	return subs, nil
}

// UpdateLastChecked stamps the time of the latest check attempt
func (r *SubscriptionRepo) UpdateLastChecked(id string, checkedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE subscriptions
		SET last_checked_at = ?
		WHERE id = ?
	`, formatTime(checkedAt), id)

	if err != nil {
		return fmt.Errorf("failed to update last checked time: %w", err)
	}

	return nil
}

// Delete removes a subscription and its stored items, returning the
// number of items removed
func (r *SubscriptionRepo) Delete(id string) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec("DELETE FROM feed_items WHERE subscription_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete subscription items: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted items: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM subscriptions WHERE id = ?", id); err != nil {
		return 0, fmt.Errorf("failed to delete subscription: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return int(removed), nil
}

// Count returns the total number of subscriptions
func (r *SubscriptionRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM subscriptions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get subscription count: %w", err)
	}
	return count, nil
}

func scanSubscription(row *sql.Row) (*Subscription, error) {
	var sub Subscription
	var lastChecked sql.NullString
	var createdAt string
	err := row.Scan(
		&sub.ID, &sub.SourceKind, &sub.SourceID, &sub.DisplayName, &sub.FeedURL,
		&lastChecked, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	sub.LastCheckedAt = parseNullTime(lastChecked)
	sub.CreatedAt = parseTime(createdAt)
	return &sub, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
