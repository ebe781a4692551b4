package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"car-rag-platform/internal/config"
	"car-rag-platform/internal/database"
	"car-rag-platform/internal/logger"
	"car-rag-platform/internal/queue"
	"car-rag-platform/internal/scraper"
	"car-rag-platform/models"
)

// Scrapes listing pages, stores them in MongoDB and enqueues an indexing
// task per listing. With SCRAPE_CRON set it keeps running on that schedule.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())

	store := database.NewListingStore(mongoClient, cfg.DBName)

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()

	sink := func(ctx context.Context, l models.Listing) error {
		if err := store.SaveListing(ctx, l); err != nil {
			return err
		}
		task, err := queue.NewIndexListingTask(l.URL)
		if err != nil {
			return err
		}
		if _, err := client.EnqueueContext(ctx, task); err != nil {
			return err
		}
		logger.Info("Listing queued for indexing", "url", l.URL)
		return nil
	}

	runScrape := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()

		s := scraper.NewScraper(scraper.Config{
			BaseURL:   cfg.ScrapeBaseURL,
			StartPage: cfg.ScrapeStartPage,
			MaxPages:  cfg.ScrapeMaxPages,
			RenderJS:  cfg.ScrapeRenderJS,
		}, sink)

		saved, err := s.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("Scrape complete", "listings", saved)
		return nil
	}

	if cfg.ScrapeCron == "" {
		if err := runScrape(); err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		return
	}

	sched := scraper.NewScheduler()
	if err := sched.ScheduleCron("scrape", cfg.ScrapeCron, func() error {
		if err := runScrape(); err != nil {
			logger.Error("Scheduled scrape failed", "error", err)
			return err
		}
		return nil
	}); err != nil {
		log.Fatalf("Failed to schedule scrape: %v", err)
	}
	sched.Start()
	logger.Info("Scrape scheduler started", "cron", cfg.ScrapeCron)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sched.Stop()
}
