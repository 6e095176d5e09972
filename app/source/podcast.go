package source

import (
	"context"
	"fmt"

	"github.com/feedscope/feedscope/app/feed"
)

// PodcastAdapter reads an episode feed. The source identifier is the RSS
// URL; audio enclosures and episode durations land in item metadata.
type PodcastAdapter struct {
	fetcher *feedFetcher
}

func (a *PodcastAdapter) Kind() Kind {
	return KindPodcast
}

func (a *PodcastAdapter) Resolve(ctx context.Context, sourceID string) (Resolution, error) {
	if !isURL(sourceID) {
		return Resolution{}, fmt.Errorf("podcast source %q is not a feed URL", sourceID)
	}

	name := a.fetcher.feedTitle(ctx, sourceID, defaultDisplayName(sourceID))
	return Resolution{DisplayName: name, FeedURL: sourceID}, nil
}

func (a *PodcastAdapter) Fetch(ctx context.Context, sourceID string) ([]feed.Candidate, error) {
	if !isURL(sourceID) {
		return nil, fmt.Errorf("podcast source %q is not a feed URL", sourceID)
	}

	_, items, err := a.fetcher.run(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		meta := make(map[string]string)
		if items[i].EnclosureURL != "" {
			meta["audio_url"] = items[i].EnclosureURL
		}
		if items[i].Duration != "" {
			meta["duration"] = items[i].Duration
		}
		if len(meta) > 0 {
			items[i].Metadata = meta
		}
	}

	return items, nil
}
