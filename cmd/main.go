package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MeshiKro/ApartmentHunterBot/config"
	"github.com/MeshiKro/ApartmentHunterBot/internal/etl"
	"github.com/MeshiKro/ApartmentHunterBot/internal/extractor"
	"github.com/MeshiKro/ApartmentHunterBot/internal/notifier"
	"github.com/MeshiKro/ApartmentHunterBot/internal/scraper"
	"github.com/MeshiKro/ApartmentHunterBot/internal/store"
	"github.com/MeshiKro/ApartmentHunterBot/pkg"
)

const (
	scrapeLockKey = "scrape_run_lock"
	scrapeLockTTL = 30 * time.Minute
)

func main() {
	var (
		configFile = flag.String("config", "bot", "Name of the configuration file (without extension)")
		mode       = flag.String("mode", "run", "Mode: scrape, notify, run or etl")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Printf("Failed to load configuration %s: %v", *configFile, err)
		log.Println("Using default configuration...")
		cfg = config.GetDefaultConfig()
	}
	if cfg.Scraper.GroupsFile != "" {
		urls, err := pkg.LoadGroupURLs(cfg.Scraper.GroupsFile)
		if err != nil {
			log.Fatalf("Failed to load groups file: %v", err)
		}
		cfg.Scraper.GroupURLs = urls
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	mongoClient, err := store.NewMongoClient(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to the post store: %v", err)
	}
	defer mongoClient.Disconnect()

	switch *mode {
	case "scrape":
		runScrape(ctx, cfg, mongoClient)
	case "notify":
		runNotify(ctx, cfg, mongoClient)
	case "run":
		runScrape(ctx, cfg, mongoClient)
		runNotify(ctx, cfg, mongoClient)
	case "etl":
		runETL(ctx, cfg, mongoClient)
	default:
		log.Fatalf("Unknown mode: %s. Use scrape, notify, run or etl.", *mode)
	}
}

// runScrape holds a redis lease for the duration of the run; the pipeline
// itself carries no locking, single-flight is enforced here at the caller.
func runScrape(ctx context.Context, cfg *config.Config, mongoClient *store.MongoClient) {
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}

	redisClient, err := store.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	runToken := uuid.NewString()
	acquired, err := redisClient.SetNX(ctx, scrapeLockKey, runToken, scrapeLockTTL).Result()
	if err != nil {
		log.Fatalf("Failed to acquire the run lock: %v", err)
	}
	if !acquired {
		log.Fatal("Scraper is already running. Please wait until it finishes.")
	}
	defer releaseLock(redisClient, runToken)

	var bloom *scraper.BloomFilter
	if cfg.Scraper.UseBloomFilter {
		bloom, err = scraper.NewRedisBloomFilter(&cfg.Redis)
		if err != nil {
			log.Printf("Bloom filter unavailable, continuing without it: %v", err)
			bloom = nil
		}
	}

	fieldExtractor, err := extractor.New(&cfg.Extractor)
	if err != nil {
		log.Fatalf("Failed to build the field extractor: %v", err)
	}

	sess := scraper.NewCollySession(&cfg.Scraper)
	defer sess.Close()

	dedup := scraper.NewDedupGate(mongoClient, bloom)
	pipeline := scraper.NewPipeline(&cfg.Scraper, sess, dedup, fieldExtractor, mongoClient)

	start := time.Now()
	run, err := pipeline.RunOnce(ctx, creds)
	if err != nil {
		log.Printf("Run %s aborted: %v", run.RunID, err)
		return
	}
	total := time.Since(start)
	log.Printf("Total running time: %s (%.2f minutes)", total, total.Minutes())
}

func releaseLock(redisClient *redis.Client, runToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Only release a lease this run still owns; an expired lease may have
	// been taken over by a newer run.
	current, err := redisClient.Get(ctx, scrapeLockKey).Result()
	if err != nil || current != runToken {
		return
	}
	if err := redisClient.Del(ctx, scrapeLockKey).Err(); err != nil {
		log.Printf("Failed to release the run lock: %v", err)
	}
}

func runNotify(ctx context.Context, cfg *config.Config, mongoClient *store.MongoClient) {
	sink, err := notifier.NewSMTPSink(&cfg.Email)
	if err != nil {
		log.Fatalf("Failed to build the email sink: %v", err)
	}
	recipients := notifier.ResolveRecipients(&cfg.Email)
	if len(recipients) == 0 {
		log.Fatal("No notification recipients configured")
	}

	cycle := notifier.NewCycle(mongoClient, sink, recipients, cfg.Email.Subject)
	sent, err := cycle.Run(ctx)
	if err != nil {
		log.Printf("Notification cycle failed: %v", err)
		return
	}
	log.Printf("Notification cycle complete: %d posts sent", sent)
}

func runETL(ctx context.Context, cfg *config.Config, mongoClient *store.MongoClient) {
	db, err := store.NewDBConnection(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer db.Close()

	redisClient, err := store.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, ETL will run without a resume cursor: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	fieldExtractor, err := extractor.New(&cfg.Extractor)
	if err != nil {
		log.Fatalf("Failed to build the field extractor: %v", err)
	}

	processor := etl.NewProcessor(mongoClient, db, redisClient, fieldExtractor, cfg.ETL.BatchSize)
	total, err := processor.Run(ctx)
	if err != nil {
		log.Printf("ETL stopped after %d documents: %v", total, err)
		return
	}
	log.Printf("ETL complete: %d documents loaded", total)
}
