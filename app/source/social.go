package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/feedscope/feedscope/app/feed"
)

// SocialAdapter bridges social accounts through RSS. A full feed URL is
// used as-is; a bare handle goes through a Nitter-style RSS bridge.
type SocialAdapter struct {
	fetcher *feedFetcher
}

func (a *SocialAdapter) Kind() Kind {
	return KindSocial
}

func (a *SocialAdapter) Resolve(ctx context.Context, sourceID string) (Resolution, error) {
	feedURL, handle, err := socialFeedURL(sourceID)
	if err != nil {
		return Resolution{}, err
	}

	if handle != "" {
		return Resolution{DisplayName: "@" + handle, FeedURL: feedURL}, nil
	}

	name := a.fetcher.feedTitle(ctx, feedURL, defaultDisplayName(sourceID))
	return Resolution{DisplayName: name, FeedURL: feedURL}, nil
}

func (a *SocialAdapter) Fetch(ctx context.Context, sourceID string) ([]feed.Candidate, error) {
	feedURL, _, err := socialFeedURL(sourceID)
	if err != nil {
		return nil, err
	}

	_, items, err := a.fetcher.run(ctx, feedURL)
	return items, err
}

func socialFeedURL(sourceID string) (feedURL, handle string, err error) {
	id := strings.TrimSpace(sourceID)
	if id == "" {
		return "", "", fmt.Errorf("empty social source identifier")
	}
	if isURL(id) {
		return id, "", nil
	}

	handle = strings.TrimPrefix(id, "@")
	return fmt.Sprintf("https://nitter.net/%s/rss", handle), handle, nil
}
