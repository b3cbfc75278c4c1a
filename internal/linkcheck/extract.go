package linkcheck

import (
	"regexp"
	"strings"
)

var (
	// [text](https://...) markdown links. The target ends at the first
	// whitespace or closing parenthesis, which also drops "(url "title")"
	// titles.
	inlineLinkPattern = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)`)

	// <https://...> autolinks.
	autoLinkPattern = regexp.MustCompile(`<(https?://[^>\s]+)>`)
)

// ExtractURLs returns the unique http(s) URLs cited by a markdown document:
// inline links first, then autolinks. Relative links, in-page anchors and
// non-http schemes such as mailto: are not checkable and are skipped.
func ExtractURLs(doc string) []string {
	var urls []string
	seen := make(map[string]bool)

	add := func(raw string) {
		url := strings.TrimRight(raw, ".,;")
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return
		}
		if seen[url] {
			return
		}
		seen[url] = true
		urls = append(urls, url)
	}

	for _, match := range inlineLinkPattern.FindAllStringSubmatch(doc, -1) {
		add(match[1])
	}
	for _, match := range autoLinkPattern.FindAllStringSubmatch(doc, -1) {
		add(match[1])
	}
	return urls
}
