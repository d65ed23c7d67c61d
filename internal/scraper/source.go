package scraper

import (
	"context"

	"github.com/MeshiKro/ApartmentHunterBot/config"
)

type LoginOutcome int

const (
	LoginSuccess LoginOutcome = iota
	// LoginSoftFailure means the login surface is still showing with no
	// explicit error marker, usually a slow render.
	LoginSoftFailure
	// LoginHardFailure means the page carries an explicit failure marker.
	LoginHardFailure
)

// Session is one authenticated browsing session over a post source. The
// crawler drives it without knowing whether the backing implementation is
// an HTTP collector or a real browser.
type Session interface {
	Login(ctx context.Context, creds *config.Credentials) (LoginOutcome, error)
	Navigate(ctx context.Context, url string) error
	// Scroll loads more of the current feed. Callers issue at most one
	// scroll per harvest.
	Scroll(ctx context.Context) error
	Posts() ([]PostNode, error)
	Close() error
}

// PostNode is one rendered post container within the current page.
type PostNode interface {
	// Text is the full rendered text of the container, truncated preview
	// included.
	Text() string
	// Expand activates the content-expansion control when one is present.
	// A returned error is non-fatal; the truncated text stays usable.
	Expand(ctx context.Context) error
	// Content returns the post's message body. The second value is false
	// when the container carries no message element (ads, shares).
	Content() (string, bool)
	Links() []string
}

// RawPost is a harvested candidate before dedup and filtering.
type RawPost struct {
	ExternalID string
	Link       string
	Content    string
}
