// Package etl backfills the relational posts table from the document
// store: batch-read, extract structured fields, load.
package etl

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MeshiKro/ApartmentHunterBot/internal/extractor"
	"github.com/MeshiKro/ApartmentHunterBot/internal/store"
	"github.com/MeshiKro/ApartmentHunterBot/models"
)

const resumeCursorKey = "last_extracted_object_id"

type Processor struct {
	mongo     *store.MongoClient
	db        *store.DB
	redis     *redis.Client
	extractor extractor.FieldExtractor
	batchSize int
	log       *log.Logger
}

func NewProcessor(mongo *store.MongoClient, db *store.DB, redisClient *redis.Client, fieldExtractor extractor.FieldExtractor, batchSize int) *Processor {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Processor{
		mongo:     mongo,
		db:        db,
		redis:     redisClient,
		extractor: fieldExtractor,
		batchSize: batchSize,
		log:       log.New(os.Stdout, "[ETL] ", log.LstdFlags),
	}
}

// Run walks the whole collection in _id order and loads one relational row
// per post. The cursor survives in redis, so an interrupted run resumes
// where it stopped; the ON CONFLICT insert keeps re-processing harmless.
func (p *Processor) Run(ctx context.Context) (int, error) {
	lastID := p.loadCursor(ctx)
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			p.saveCursor(lastID)
			return total, err
		}
		posts, nextID, err := p.mongo.GetBatchPosts(ctx, p.batchSize, lastID)
		if err != nil {
			p.saveCursor(lastID)
			return total, fmt.Errorf("failed to get batch: %w", err)
		}
		if len(posts) == 0 {
			p.log.Println("No more documents to process.")
			break
		}

		for _, post := range posts {
			fields := p.extractor.Extract(post.Content)
			row := &models.ExtractedPost{
				MongoID: post.ID.Hex(),
				Content: post.Content,
				Rooms:   fields.Rooms,
				Size:    fields.Size,
				Price:   intToFloat(fields.Price),
			}
			if err := p.db.InsertExtractedPost(row); err != nil {
				p.log.Printf("failed to insert row for %s: %v", post.ID.Hex(), err)
				continue
			}
			total++
		}
		lastID = nextID
		p.saveCursor(lastID)
		p.log.Printf("Processed %d documents so far", total)
	}
	return total, nil
}

func (p *Processor) loadCursor(ctx context.Context) *primitive.ObjectID {
	if p.redis == nil {
		return nil
	}
	id, err := p.redis.Get(ctx, resumeCursorKey).Result()
	if err != nil || id == "" {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	p.log.Printf("Resuming after %s", oid.Hex())
	return &oid
}

func (p *Processor) saveCursor(lastID *primitive.ObjectID) {
	if p.redis == nil || lastID == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.redis.Set(ctx, resumeCursorKey, lastID.Hex(), 0).Err(); err != nil {
		p.log.Printf("Failed to save cursor to Redis: %v", err)
	}
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
