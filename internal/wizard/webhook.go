package wizard

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// WebhookSlug lowercases name, strips non-word characters and joins words with hyphens.
func WebhookSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonWordPattern.ReplaceAllString(slug, "")
	slug = whitespacePattern.ReplaceAllString(slug, "-")
	return slug
}

// WebhookURL derives the LINE webhook endpoint of a store from its name.
func WebhookURL(base, name string) (string, error) {
	slug := WebhookSlug(name)
	if slug == "" {
		return "", ErrStoreNameRequired
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(slug), nil
}
