package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/feedscope/feedscope/app/feed"
)

// RedditAdapter reads a subreddit through Reddit's native Atom endpoint.
type RedditAdapter struct {
	fetcher *feedFetcher
}

func (a *RedditAdapter) Kind() Kind {
	return KindReddit
}

func (a *RedditAdapter) Resolve(ctx context.Context, sourceID string) (Resolution, error) {
	sub := normalizeSubreddit(sourceID)
	if sub == "" {
		return Resolution{}, fmt.Errorf("empty subreddit name")
	}

	return Resolution{
		DisplayName: "r/" + sub,
		FeedURL:     subredditFeedURL(sub),
	}, nil
}

func (a *RedditAdapter) Fetch(ctx context.Context, sourceID string) ([]feed.Candidate, error) {
	sub := normalizeSubreddit(sourceID)
	if sub == "" {
		return nil, fmt.Errorf("empty subreddit name")
	}

	_, items, err := a.fetcher.run(ctx, subredditFeedURL(sub))
	return items, err
}

func subredditFeedURL(sub string) string {
	return fmt.Sprintf("https://www.reddit.com/r/%s/.rss", sub)
}

func normalizeSubreddit(sourceID string) string {
	sub := strings.TrimSpace(sourceID)
	sub = strings.TrimPrefix(sub, "/r/")
	sub = strings.TrimPrefix(sub, "r/")
	return strings.Trim(sub, "/")
}
