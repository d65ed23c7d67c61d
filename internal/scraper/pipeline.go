package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MeshiKro/ApartmentHunterBot/config"
	"github.com/MeshiKro/ApartmentHunterBot/internal/extractor"
	"github.com/MeshiKro/ApartmentHunterBot/internal/store"
	"github.com/MeshiKro/ApartmentHunterBot/models"
)

// Pipeline is one crawl-extract-dedup-persist run over all configured
// groups. It holds no locking: single-flight invocation is the caller's
// job.
type Pipeline struct {
	cfg             *config.ScraperConfig
	sess            Session
	manager         *SessionManager
	crawler         *GroupCrawler
	dedup           *DedupGate
	filter          *KeywordFilter
	extractor       extractor.FieldExtractor
	store           store.PostStore
	GroupBackoffMin time.Duration
	GroupBackoffMax time.Duration
	log             *log.Logger
}

func NewPipeline(
	cfg *config.ScraperConfig,
	sess Session,
	dedup *DedupGate,
	fieldExtractor extractor.FieldExtractor,
	postStore store.PostStore,
) *Pipeline {
	return &Pipeline{
		cfg:             cfg,
		sess:            sess,
		manager:         NewSessionManager(cfg.MaxLoginAttempts),
		crawler:         NewGroupCrawler(sess, cfg),
		dedup:           dedup,
		filter:          NewKeywordFilter(cfg.UnwantedKeywords),
		extractor:       fieldExtractor,
		store:           postStore,
		GroupBackoffMin: 10 * time.Second,
		GroupBackoffMax: 30 * time.Second,
		log:             log.New(os.Stdout, "[Pipeline] ", log.LstdFlags),
	}
}

// RunOnce crawls every configured group once, persisting each accepted post
// as it clears the gate. Groups are processed strictly sequentially over a
// single session; a group failure costs that group only.
func (p *Pipeline) RunOnce(ctx context.Context, creds *config.Credentials) (*models.ScrapeRun, error) {
	run := &models.ScrapeRun{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	p.log.Printf("Starting run %s over %d groups", run.RunID, len(p.cfg.GroupURLs))

	if err := p.manager.Establish(ctx, p.sess, creds); err != nil {
		return run, err
	}

	for _, groupURL := range p.cfg.GroupURLs {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		posts, err := p.crawler.Harvest(ctx, groupURL)
		if err != nil {
			p.log.Printf("Error scraping posts from %s: %v", groupURL, err)
			run.GroupsFailed++
			p.wait(ctx, randomDelay(p.GroupBackoffMin, p.GroupBackoffMax))
			continue
		}
		run.GroupsOK++

		inserted := 0
		for _, raw := range posts {
			saved, err := p.processPost(ctx, raw, run.RunID)
			if err != nil {
				p.log.Printf("Skipping post %s: %v", raw.ExternalID, err)
				continue
			}
			if saved {
				inserted++
			}
		}
		p.log.Printf("Inserted %d posts from %s", inserted, groupURL)
		run.PostsInserted += inserted
	}

	p.log.Printf("Run %s complete: %d posts inserted, %d groups ok, %d failed",
		run.RunID, run.PostsInserted, run.GroupsOK, run.GroupsFailed)
	return run, nil
}

func (p *Pipeline) processPost(ctx context.Context, raw RawPost, runID string) (bool, error) {
	dup, err := p.dedup.IsDuplicate(ctx, raw)
	if err != nil {
		return false, err
	}
	if dup {
		return false, nil
	}
	if p.filter.IsUnwanted(raw.Content) {
		return false, nil
	}

	post := &models.Post{
		ExternalID:  raw.ExternalID,
		Link:        raw.Link,
		Content:     raw.Content,
		HasBeenSent: false,
		DatePosted:  primitive.NewDateTimeFromTime(time.Now()),
		RunID:       runID,
	}
	if p.extractor != nil {
		fields := p.extractor.Extract(raw.Content)
		post.Price = fields.Price
		post.Rooms = fields.Rooms
		post.Size = fields.Size
	}

	if err := p.store.Insert(ctx, post); err != nil {
		return false, fmt.Errorf("failed to insert post %s: %w", raw.ExternalID, err)
	}
	p.dedup.Remember(raw.ExternalID)
	return true, nil
}

func (p *Pipeline) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
