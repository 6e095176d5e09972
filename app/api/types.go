package api

import (
	"time"

	"github.com/feedscope/feedscope/app/database"
)

type subscriptionRequest struct {
	Kind   string `json:"kind" binding:"required"`
	Source string `json:"source" binding:"required"`
}

type checkRequest struct {
	Kind string `json:"kind"`
}

type subscriptionResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Source        string `json:"source"`
	DisplayName   string `json:"display_name"`
	FeedURL       string `json:"feed_url,omitempty"`
	ItemCount     int    `json:"item_count"`
	LastCheckedAt string `json:"last_checked_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type itemResponse struct {
	Kind        string            `json:"kind"`
	SourceName  string            `json:"source_name"`
	Title       string            `json:"title"`
	Link        string            `json:"link"`
	Content     string            `json:"content,omitempty"`
	Author      string            `json:"author,omitempty"`
	PublishedAt string            `json:"published_at,omitempty"`
	FetchedAt   string            `json:"fetched_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type sourceOutcomeResponse struct {
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	DisplayName string `json:"display_name"`
	NewItems    int    `json:"new_items"`
	Error       string `json:"error,omitempty"`
}

func toSubscriptionResponse(sub database.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:          sub.ID,
		Kind:        sub.SourceKind,
		Source:      sub.SourceID,
		DisplayName: sub.DisplayName,
		FeedURL:     sub.FeedURL,
		ItemCount:   sub.ItemCount,
		CreatedAt:   sub.CreatedAt.Format(time.RFC3339),
	}
	if sub.LastCheckedAt != nil {
		resp.LastCheckedAt = sub.LastCheckedAt.Format(time.RFC3339)
	}
	return resp
}

func toItemResponses(items []database.Item) []itemResponse {
	responses := make([]itemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, itemResponse{
			Kind:        item.SourceKind,
			SourceName:  item.SourceName,
			Title:       item.Title,
			Link:        item.Link,
			Content:     item.Content,
			Author:      item.Author,
			PublishedAt: item.PublishedAt,
			FetchedAt:   item.FetchedAt.Format(time.RFC3339),
			Metadata:    item.Metadata,
		})
	}
	return responses
}
