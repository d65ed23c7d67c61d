package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	redisbloom "github.com/RedisBloom/redisbloom-go"

	"github.com/MeshiKro/ApartmentHunterBot/config"
	"github.com/MeshiKro/ApartmentHunterBot/internal/store"
)

const (
	approxItems     = 1_000_000
	errorRate       = 0.01
	bloomFilterName = "seen_post_ids"
)

// BloomFilter is a redis-backed set of already-stored post identifiers.
type BloomFilter struct {
	client *redisbloom.Client
}

func NewRedisBloomFilter(cfg *config.RedisConfig) (*BloomFilter, error) {
	client := redisbloom.NewClient(
		cfg.Host,
		"",
		nil,
	)
	if err := client.Reserve(bloomFilterName, errorRate, approxItems); err != nil {
		if strings.Contains(err.Error(), "item exists") {
			log.Println("Skipping : Bloom filter already reserved")
		} else {
			return nil, fmt.Errorf("could not reserve bloom filter :%w", err)
		}
	}
	return &BloomFilter{
		client,
	}, nil
}

func (r *BloomFilter) Add(id string) error {
	_, err := r.client.Add(bloomFilterName, id)
	return err
}

func (r *BloomFilter) Exists(id string) (bool, error) {
	exists, err := r.client.Exists(bloomFilterName, id)
	if err != nil {
		return false, fmt.Errorf("failed to check bloom filter : %w", err)
	}
	return exists, nil
}

// DedupGate rejects candidates already present in the store, first by
// identifier, then by exact content equality. The bloom filter is a fast
// path only: a miss skips the identifier query, a hit (or any bloom error)
// falls through to the store, so a false positive can never reject a new
// post.
type DedupGate struct {
	store store.PostStore
	bloom *BloomFilter
	log   *log.Logger
}

func NewDedupGate(postStore store.PostStore, bloom *BloomFilter) *DedupGate {
	return &DedupGate{
		store: postStore,
		bloom: bloom,
		log:   log.New(os.Stdout, "[Dedup] ", log.LstdFlags),
	}
}

func (g *DedupGate) IsDuplicate(ctx context.Context, candidate RawPost) (bool, error) {
	checkID := true
	if g.bloom != nil {
		seen, err := g.bloom.Exists(candidate.ExternalID)
		if err != nil {
			g.log.Printf("bloom check failed for %s, falling back to store: %v", candidate.ExternalID, err)
		} else if !seen {
			checkID = false
		}
	}
	if checkID {
		exists, err := g.store.Exists(ctx, candidate.ExternalID)
		if err != nil {
			return false, fmt.Errorf("identifier check failed for %s: %w", candidate.ExternalID, err)
		}
		if exists {
			return true, nil
		}
	}

	exists, err := g.store.ExistsByContent(ctx, candidate.Content)
	if err != nil {
		return false, fmt.Errorf("content check failed for %s: %w", candidate.ExternalID, err)
	}
	return exists, nil
}

// Remember records an identifier that has just been inserted.
func (g *DedupGate) Remember(externalID string) {
	if g.bloom == nil {
		return
	}
	if err := g.bloom.Add(externalID); err != nil {
		g.log.Printf("failed to add %s to bloom filter: %v", externalID, err)
	}
}
