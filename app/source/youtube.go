package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/feedscope/feedscope/app/feed"
)

// YouTubeAdapter reads a channel's video feed. The source identifier is a
// channel ID or a full feed URL; each item's metadata carries the video
// URL for downstream transcription.
type YouTubeAdapter struct {
	fetcher *feedFetcher
}

func (a *YouTubeAdapter) Kind() Kind {
	return KindYouTube
}

func (a *YouTubeAdapter) Resolve(ctx context.Context, sourceID string) (Resolution, error) {
	feedURL, err := channelFeedURL(sourceID)
	if err != nil {
		return Resolution{}, err
	}

	name := a.fetcher.feedTitle(ctx, feedURL, defaultDisplayName(sourceID))
	return Resolution{DisplayName: name, FeedURL: feedURL}, nil
}

func (a *YouTubeAdapter) Fetch(ctx context.Context, sourceID string) ([]feed.Candidate, error) {
	feedURL, err := channelFeedURL(sourceID)
	if err != nil {
		return nil, err
	}

	_, items, err := a.fetcher.run(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Link == "" {
			continue
		}
		if items[i].Metadata == nil {
			items[i].Metadata = make(map[string]string)
		}
		items[i].Metadata["video_url"] = items[i].Link
	}

	return items, nil
}

func channelFeedURL(sourceID string) (string, error) {
	id := strings.TrimSpace(sourceID)
	if id == "" {
		return "", fmt.Errorf("empty YouTube channel identifier")
	}
	if isURL(id) {
		return id, nil
	}
	return fmt.Sprintf("https://www.youtube.com/feeds/videos.xml?channel_id=%s", id), nil
}
