package feed

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Sanitize strips markup from free text: tags removed, entities decoded,
// runs of whitespace collapsed. Best-effort on malformed markup, never fails.
func Sanitize(s string) string {
	if s == "" {
		return s
	}

	stripped := s
	if strings.ContainsAny(s, "<&") {
		stripped = stripTags(s)
	}

	collapsed := whitespaceRe.ReplaceAllStringFunc(stripped, func(ws string) string {
		if strings.Contains(ws, "\n") {
			return "\n"
		}
		return " "
	})

	return strings.TrimSpace(collapsed)
}

func stripTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))

	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if isInvisible(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isInvisible(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isInvisible(tag string) bool {
	return tag == "script" || tag == "style"
}
