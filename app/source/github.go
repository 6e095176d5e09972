package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/feedscope/feedscope/app/feed"
)

// GitHubAdapter reads a repository's releases feed. The source identifier
// is an "owner/repo" pair.
type GitHubAdapter struct {
	fetcher *feedFetcher
}

func (a *GitHubAdapter) Kind() Kind {
	return KindGitHub
}

func (a *GitHubAdapter) Resolve(ctx context.Context, sourceID string) (Resolution, error) {
	repo, err := normalizeRepo(sourceID)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{
		DisplayName: repo + " releases",
		FeedURL:     releasesFeedURL(repo),
	}, nil
}

func (a *GitHubAdapter) Fetch(ctx context.Context, sourceID string) ([]feed.Candidate, error) {
	repo, err := normalizeRepo(sourceID)
	if err != nil {
		return nil, err
	}

	_, items, err := a.fetcher.run(ctx, releasesFeedURL(repo))
	return items, err
}

func releasesFeedURL(repo string) string {
	return fmt.Sprintf("https://github.com/%s/releases.atom", repo)
}

func normalizeRepo(sourceID string) (string, error) {
	repo := strings.Trim(strings.TrimSpace(sourceID), "/")
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid GitHub repository %q: expected owner/repo", sourceID)
	}
	return repo, nil
}
