package source

import "strings"

// Kind identifies one supported source protocol. The set is closed: adding
// a kind means adding an adapter and registering it, nothing else changes.
type Kind string

const (
	KindNews       Kind = "news"
	KindReddit     Kind = "reddit"
	KindHackerNews Kind = "hackernews"
	KindGitHub     Kind = "github"
	KindArxiv      Kind = "arxiv"
	KindYouTube    Kind = "youtube"
	KindPodcast    Kind = "podcast"
	KindSocial     Kind = "social"
)

var allKinds = []Kind{
	KindNews, KindReddit, KindHackerNews, KindGitHub,
	KindArxiv, KindYouTube, KindPodcast, KindSocial,
}

// ParseKind validates a caller-supplied kind string.
func ParseKind(s string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range allKinds {
		if kind == k {
			return k, true
		}
	}
	return "", false
}

// KindNames returns the valid kind names, for error messages.
func KindNames() []string {
	names := make([]string, 0, len(allKinds))
	for _, k := range allKinds {
		names = append(names, string(k))
	}
	return names
}
