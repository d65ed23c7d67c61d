package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/MeshiKro/ApartmentHunterBot/config"
)

const (
	postContainerSelector = "div[role='article']"
	messageSelector       = "div[data-ad-preview='message']"
	expandControlSelector = "div[role='button']"
	// loggedOutMarker shows on the public landing page when the login was
	// rejected.
	loggedOutMarker = "See more on Facebook"
)

var expandControlLabels = []string{"See more", "קרא עוד", "ראה עוד", "עוד"}

// CollySession is the HTTP implementation of Session: a cookie-carrying
// colly collector plus goquery parsing of whatever the server rendered.
type CollySession struct {
	collector  *colly.Collector
	baseURL    string
	doc        *goquery.Document
	currentURL string
	lastBody   []byte
	lastURL    string
	log        *log.Logger
}

var _ Session = (*CollySession)(nil)

func NewCollySession(cfg *config.ScraperConfig) *CollySession {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "he-IL,he;q=0.9,en-US;q=0.8")
		r.Headers.Set("Connection", "keep-alive")
	})

	s := &CollySession{
		collector: c,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		log:       log.New(os.Stdout, "[Source] ", log.LstdFlags),
	}
	c.OnResponse(func(r *colly.Response) {
		s.lastBody = r.Body
		s.lastURL = r.Request.URL.String()
	})
	return s
}

func (s *CollySession) Login(ctx context.Context, creds *config.Credentials) (LoginOutcome, error) {
	// Land on the login surface first so the session picks up its cookies.
	if _, _, err := s.fetch(ctx, s.baseURL+"/"); err != nil {
		return LoginSoftFailure, fmt.Errorf("failed to open login page: %w", err)
	}

	doc, finalURL, err := s.post(ctx, s.baseURL+"/login", map[string]string{
		"email": creds.Username,
		"pass":  creds.Password,
	})
	if err != nil {
		return LoginSoftFailure, fmt.Errorf("login request failed: %w", err)
	}
	return classifyLogin(doc, finalURL, s.baseURL), nil
}

// classifyLogin decides the outcome of one login attempt from the settled
// page: an explicit logged-out marker is a hard failure, a still-present
// login form without it is a soft one, anything else is success.
func classifyLogin(doc *goquery.Document, finalURL, baseURL string) LoginOutcome {
	if strings.Contains(doc.Text(), loggedOutMarker) {
		return LoginHardFailure
	}
	onLoginSurface := finalURL == baseURL || finalURL == baseURL+"/" || strings.Contains(finalURL, "/login")
	if onLoginSurface && doc.Find("input[name='email']").Length() > 0 {
		return LoginSoftFailure
	}
	return LoginSuccess
}

func (s *CollySession) Navigate(ctx context.Context, url string) error {
	doc, finalURL, err := s.fetch(ctx, url)
	if err != nil {
		return err
	}
	s.doc = doc
	s.currentURL = finalURL
	return nil
}

// Scroll re-requests the current feed; the server may render a longer
// slice of it on the second pass. A browser-backed Session would scroll
// for real.
func (s *CollySession) Scroll(ctx context.Context) error {
	if s.currentURL == "" {
		return errors.New("no page loaded")
	}
	doc, _, err := s.fetch(ctx, s.currentURL)
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

func (s *CollySession) Posts() ([]PostNode, error) {
	if s.doc == nil {
		return nil, errors.New("no page loaded")
	}
	var nodes []PostNode
	s.doc.Find(postContainerSelector).Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, &collyPostNode{sel: sel, sess: s})
	})
	return nodes, nil
}

func (s *CollySession) Close() error {
	s.doc = nil
	s.lastBody = nil
	return nil
}

func (s *CollySession) fetch(ctx context.Context, url string) (*goquery.Document, string, error) {
	return s.request(ctx, func() error { return s.collector.Visit(url) })
}

func (s *CollySession) post(ctx context.Context, url string, form map[string]string) (*goquery.Document, string, error) {
	return s.request(ctx, func() error { return s.collector.Post(url, form) })
}

func (s *CollySession) request(ctx context.Context, do func() error) (*goquery.Document, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	s.lastBody = nil
	s.lastURL = ""
	if err := do(); err != nil {
		return nil, "", err
	}
	if s.lastBody == nil {
		return nil, "", errors.New("no response received")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(s.lastBody))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse response: %w", err)
	}
	return doc, s.lastURL, nil
}

type collyPostNode struct {
	sel      *goquery.Selection
	sess     *CollySession
	expanded string
}

func (n *collyPostNode) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

// Links returns the container's outbound links, resolved to absolute URLs
// so permalink canonicalization sees the same shape regardless of how the
// page was rendered.
func (n *collyPostNode) Links() []string {
	base, baseErr := url.Parse(n.sess.currentURL)
	var links []string
	n.sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		if baseErr == nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		links = append(links, href)
	})
	return links
}

// Expand activates the see-more control. Over HTTP there is no script to
// click, so activation means opening the post permalink and reading the
// full message body there.
func (n *collyPostNode) Expand(ctx context.Context) error {
	if n.expandControl() == nil {
		// Already fully shown.
		return nil
	}
	link := CanonicalPostLink(n.Links())
	if link == "" {
		return errors.New("expand control present but post has no permalink")
	}
	doc, _, err := n.sess.fetch(ctx, link)
	if err != nil {
		return fmt.Errorf("failed to open post permalink %s: %w", link, err)
	}
	full := strings.TrimSpace(doc.Find(messageSelector).First().Text())
	if full == "" {
		return fmt.Errorf("permalink %s had no message body", link)
	}
	n.expanded = full
	return nil
}

func (n *collyPostNode) expandControl() *goquery.Selection {
	var found *goquery.Selection
	n.sel.Find(expandControlSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		for _, label := range expandControlLabels {
			if text == label {
				found = s
				return false
			}
		}
		return true
	})
	return found
}

func (n *collyPostNode) Content() (string, bool) {
	if n.expanded != "" {
		return n.expanded, true
	}
	msg := n.sel.Find(messageSelector).First()
	if msg.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(msg.Text()), true
}
