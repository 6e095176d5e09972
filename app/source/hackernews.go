package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/feedscope/feedscope/app/feed"
)

const defaultHNAPIBase = "https://hacker-news.firebaseio.com/v0"

// Story fetches hit a rate-limited public API; keep the fan-out modest.
const maxStoryFetches = 8

var hnLists = map[string]string{
	"top":  "topstories",
	"new":  "newstories",
	"best": "beststories",
	"ask":  "askstories",
	"show": "showstories",
	"job":  "jobstories",
}

// HackerNewsAdapter reads a ranked story list from the Hacker News
// Firebase API and resolves each story's metadata concurrently.
type HackerNewsAdapter struct {
	client  *Client
	limit   int
	apiBase string
}

type hnStory struct {
	ID          int    `json:"id"`
	By          string `json:"by"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
}

func (a *HackerNewsAdapter) Kind() Kind {
	return KindHackerNews
}

func (a *HackerNewsAdapter) Resolve(ctx context.Context, sourceID string) (Resolution, error) {
	list, err := a.listEndpoint(sourceID)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{
		DisplayName: fmt.Sprintf("Hacker News (%s)", sourceID),
		FeedURL:     list,
	}, nil
}

func (a *HackerNewsAdapter) Fetch(ctx context.Context, sourceID string) ([]feed.Candidate, error) {
	list, err := a.listEndpoint(sourceID)
	if err != nil {
		return nil, err
	}

	var ids []int
	if err := a.client.FetchJSON(ctx, list, &ids); err != nil {
		return nil, fmt.Errorf("failed to fetch story list: %w", err)
	}

	limit := a.limit
	if limit <= 0 {
		limit = 20
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	stories := make([]*hnStory, len(ids))
	sem := make(chan struct{}, maxStoryFetches)
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var story hnStory
			url := fmt.Sprintf("%s/item/%d.json", a.base(), id)
			if err := a.client.FetchJSON(ctx, url, &story); err != nil {
				slog.Debug("Skipping unresolvable story", "id", id, "error", err)
				return
			}
			stories[i] = &story
		}(i, id)
	}
	wg.Wait()

	items := make([]feed.Candidate, 0, len(ids))
	for _, story := range stories {
		if story == nil || story.Title == "" {
			continue
		}
		items = append(items, a.toCandidate(story))
	}

	return items, nil
}

func (a *HackerNewsAdapter) toCandidate(story *hnStory) feed.Candidate {
	link := story.URL
	if link == "" {
		// Ask/Show posts have no external URL; link to the discussion.
		link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
	}

	var published string
	if story.Time > 0 {
		published = time.Unix(story.Time, 0).UTC().Format(time.RFC3339)
	}

	return feed.Candidate{
		Title:     story.Title,
		Link:      link,
		Content:   feed.Sanitize(story.Text),
		Author:    story.By,
		Published: published,
		Metadata: map[string]string{
			"score":    strconv.Itoa(story.Score),
			"comments": strconv.Itoa(story.Descendants),
		},
	}
}

func (a *HackerNewsAdapter) listEndpoint(sourceID string) (string, error) {
	list, ok := hnLists[sourceID]
	if !ok {
		return "", fmt.Errorf("unknown Hacker News list %q: expected one of top, new, best, ask, show, job", sourceID)
	}
	return fmt.Sprintf("%s/%s.json", a.base(), list), nil
}

func (a *HackerNewsAdapter) base() string {
	if a.apiBase != "" {
		return a.apiBase
	}
	return defaultHNAPIBase
}
