package scraper

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/MeshiKro/ApartmentHunterBot/config"
)

// GroupCrawler drives one session through one group's feed per Harvest
// call. Each call re-scans from the top; a harvest is not restartable
// mid-sequence.
type GroupCrawler struct {
	sess             Session
	MinRenderedPosts int
	SettleDelay      time.Duration
	ScrollDelayMin   time.Duration
	ScrollDelayMax   time.Duration
	log              *log.Logger
}

func NewGroupCrawler(sess Session, cfg *config.ScraperConfig) *GroupCrawler {
	minPosts := cfg.MinRenderedPosts
	if minPosts <= 0 {
		minPosts = 5
	}
	settle := cfg.SettleDelay
	if settle <= 0 {
		settle = 5 * time.Second
	}
	return &GroupCrawler{
		sess:             sess,
		MinRenderedPosts: minPosts,
		SettleDelay:      settle,
		ScrollDelayMin:   2 * time.Second,
		ScrollDelayMax:   4 * time.Second,
		log:              log.New(os.Stdout, "[Crawler] ", log.LstdFlags),
	}
}

// Harvest yields the group's current candidate posts. A malformed post is
// logged and skipped; only a failure to load the feed itself aborts the
// group.
func (c *GroupCrawler) Harvest(ctx context.Context, groupURL string) ([]RawPost, error) {
	c.log.Printf("Collecting posts from %s", groupURL)
	if err := c.sess.Navigate(ctx, groupURL); err != nil {
		return nil, &GroupHarvestError{GroupURL: groupURL, Err: err}
	}
	c.wait(ctx, c.SettleDelay)

	nodes, err := c.sess.Posts()
	if err != nil {
		return nil, &GroupHarvestError{GroupURL: groupURL, Err: err}
	}

	// Lazy feeds sometimes render only a handful of posts up front. One
	// scroll, never more: unbounded scrolling on an infinite feed never
	// terminates.
	if len(nodes) < c.MinRenderedPosts {
		if err := c.sess.Scroll(ctx); err != nil {
			c.log.Printf("scroll failed for %s: %v", groupURL, err)
		} else {
			c.wait(ctx, randomDelay(c.ScrollDelayMin, c.ScrollDelayMax))
			if more, err := c.sess.Posts(); err == nil {
				nodes = more
			}
		}
	}

	var rendered []PostNode
	for _, node := range nodes {
		if len(node.Text()) > 0 {
			rendered = append(rendered, node)
		}
	}
	c.log.Printf("Collected %d posts from %s", len(rendered), groupURL)

	var posts []RawPost
	for _, node := range rendered {
		post, err := c.harvestPost(ctx, node)
		if err != nil {
			c.log.Printf("Error extracting post in %s: %v", groupURL, err)
			continue
		}
		if post != nil {
			posts = append(posts, *post)
		}
	}
	return posts, nil
}

func (c *GroupCrawler) harvestPost(ctx context.Context, node PostNode) (*RawPost, error) {
	if err := node.Expand(ctx); err != nil {
		// Non-fatal: proceed with the truncated text as rendered.
		c.log.Printf("could not expand post: %v", err)
	}

	content, ok := node.Content()
	if !ok {
		// No message body; a not-yet-hydrated placeholder or an ad.
		return nil, nil
	}
	content = NormalizeContent(content)
	if content == "" {
		return nil, nil
	}

	link := CanonicalPostLink(node.Links())
	if link == "" {
		return nil, &PostExtractionError{Err: errors.New("no group post permalink found")}
	}

	return &RawPost{
		ExternalID: ExternalIDFromLink(link),
		Link:       link,
		Content:    content,
	}, nil
}

func (c *GroupCrawler) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
