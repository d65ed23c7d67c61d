package scraper

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// permalinkSegments is how many "/"-separated segments of a post permalink
// survive canonicalization; everything past the post id is tracking noise.
const permalinkSegments = 7

// CanonicalPostLink picks the container link that resolves to the post's
// permalink (path contains both the group and the post marker) and truncates
// it to its canonical form.
func CanonicalPostLink(links []string) string {
	var postLink string
	for _, link := range links {
		if strings.Contains(link, "groups") && strings.Contains(link, "posts") {
			postLink = link
		}
	}
	if postLink == "" {
		return ""
	}
	normalized, err := normalizeLink(postLink)
	if err == nil {
		postLink = normalized
	}
	parts := strings.Split(postLink, "/")
	if len(parts) > permalinkSegments {
		parts = parts[:permalinkSegments]
	}
	return strings.Join(parts, "/")
}

// ExternalIDFromLink derives the stable post identifier from a canonical
// permalink: its last path segment.
func ExternalIDFromLink(link string) string {
	parts := strings.Split(link, "/")
	return parts[len(parts)-1]
}

func normalizeLink(rawUrl string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawUrl))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	p := idna.New(idna.ValidateForRegistration())
	if asciiHost, err := p.ToASCII(host); err == nil {
		host = asciiHost
	}
	u.Host = host
	u.Fragment = ""
	return u.String(), nil
}

// NormalizeContent puts harvested text into NFC so the exact-equality
// content check is stable across encodings of the same Hebrew string.
func NormalizeContent(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
