package source

import (
	"context"
	"fmt"

	"github.com/feedscope/feedscope/app/feed"
)

// NewsAdapter serves RSS/Atom news outlets. The source identifier is either
// a key of the preset catalog or a directly fetchable feed URL.
type NewsAdapter struct {
	fetcher *feedFetcher
	presets map[string]Preset
}

func (a *NewsAdapter) Kind() Kind {
	return KindNews
}

func (a *NewsAdapter) Resolve(ctx context.Context, sourceID string) (Resolution, error) {
	if preset, ok := a.presets[sourceID]; ok {
		return Resolution{DisplayName: preset.Name, FeedURL: preset.URL}, nil
	}

	if isURL(sourceID) {
		name := a.fetcher.feedTitle(ctx, sourceID, defaultDisplayName(sourceID))
		return Resolution{DisplayName: name, FeedURL: sourceID}, nil
	}

	return Resolution{}, fmt.Errorf("unknown news source %q: not a preset and not a feed URL", sourceID)
}

func (a *NewsAdapter) Fetch(ctx context.Context, sourceID string) ([]feed.Candidate, error) {
	feedURL := sourceID
	if preset, ok := a.presets[sourceID]; ok {
		feedURL = preset.URL
	} else if !isURL(sourceID) {
		return nil, fmt.Errorf("unknown news source %q", sourceID)
	}

	_, items, err := a.fetcher.run(ctx, feedURL)
	return items, err
}
