package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Parser converts raw RSS 2.0 or Atom bytes into candidate items.
// Unknown elements are tolerated; an error is returned only when the
// document cannot be recognized as a feed at all.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Info, []Candidate, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	info := &Info{
		Title:       Sanitize(parsed.Title),
		Link:        parsed.Link,
		Description: Sanitize(parsed.Description),
	}

	items := make([]Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return info, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Candidate {
	candidate := Candidate{
		Title: Sanitize(item.Title),
		Link:  item.Link,
		// Atom entries fall back from <published> to <updated>; the raw
		// string is kept verbatim, timezone handling is a caller concern.
		Published: cmp.Or(item.Published, item.Updated),
		Author:    p.extractAuthor(item),
	}

	candidate.Content = Sanitize(cmp.Or(item.Content, item.Description))

	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		candidate.EnclosureURL = item.Enclosures[0].URL
		candidate.EnclosureType = item.Enclosures[0].Type
	}

	if item.ITunesExt != nil {
		candidate.Duration = item.ITunesExt.Duration
	}

	return candidate
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	var names []string

	persons := item.Authors
	if len(persons) == 0 && item.Author != nil {
		persons = []*gofeed.Person{item.Author}
	}

	for _, person := range persons {
		if person == nil {
			continue
		}
		if name := formatPerson(person.Name, person.Email); name != "" {
			names = append(names, name)
		}
	}

	return strings.Join(names, ", ")
}

func formatPerson(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name != "" {
		return name
	}
	return email
}
