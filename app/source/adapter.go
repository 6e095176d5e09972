package source

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/feedscope/feedscope/app/feed"
)

// Resolution is the outcome of turning a logical source identifier into a
// concrete subscription: a human-readable name plus the endpoint checked.
type Resolution struct {
	DisplayName string
	FeedURL     string
}

// Adapter translates one source kind's native protocol into candidates.
type Adapter interface {
	Kind() Kind
	Resolve(ctx context.Context, sourceID string) (Resolution, error)
	Fetch(ctx context.Context, sourceID string) ([]feed.Candidate, error)
}

// Options carries per-kind fetch limits from the configuration.
type Options struct {
	HNStoryLimit    int
	ArxivMaxResults int
}

// Registry holds the closed set of adapters, one per kind.
type Registry struct {
	adapters map[Kind]Adapter
}

func NewRegistry(client *Client, parser *feed.Parser, presets map[string]Preset, opts Options) *Registry {
	fetcher := &feedFetcher{client: client, parser: parser}

	registry := &Registry{adapters: make(map[Kind]Adapter)}
	for _, adapter := range []Adapter{
		&NewsAdapter{fetcher: fetcher, presets: presets},
		&RedditAdapter{fetcher: fetcher},
		&HackerNewsAdapter{client: client, limit: opts.HNStoryLimit},
		&GitHubAdapter{fetcher: fetcher},
		&ArxivAdapter{fetcher: fetcher, maxResults: opts.ArxivMaxResults},
		&YouTubeAdapter{fetcher: fetcher},
		&PodcastAdapter{fetcher: fetcher},
		&SocialAdapter{fetcher: fetcher},
	} {
		registry.adapters[adapter.Kind()] = adapter
	}

	return registry
}

func (r *Registry) Get(kind Kind) (Adapter, bool) {
	adapter, ok := r.adapters[kind]
	return adapter, ok
}

// Fetch dispatches to the adapter for the given kind.
func (r *Registry) Fetch(ctx context.Context, kind Kind, sourceID string) ([]feed.Candidate, error) {
	adapter, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for kind %q", kind)
	}
	return adapter.Fetch(ctx, sourceID)
}

// feedFetcher is the shared fetch-then-parse path for every RSS/Atom
// backed adapter.
type feedFetcher struct {
	client *Client
	parser *feed.Parser
}

func (f *feedFetcher) run(ctx context.Context, url string) (*feed.Info, []feed.Candidate, error) {
	data, err := f.client.FetchBytes(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return f.parser.Run(data)
}

// feedTitle resolves a display name from the feed itself, falling back to
// the given name when the lookup fails or the feed carries no title.
func (f *feedFetcher) feedTitle(ctx context.Context, url, fallback string) string {
	info, _, err := f.run(ctx, url)
	if err != nil || info.Title == "" {
		return fallback
	}
	return info.Title
}

var titleCaser = cases.Title(language.English)

// defaultDisplayName derives a readable label from a raw source identifier.
func defaultDisplayName(sourceID string) string {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(sourceID)
	return titleCaser.String(name)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
