package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"shipdesk/internal/config"
	"shipdesk/internal/draft"
	"shipdesk/internal/extraction"
	"shipdesk/internal/handler"
	"shipdesk/internal/port"
	"shipdesk/internal/pricing"
	"shipdesk/internal/repository/memory"
	"shipdesk/internal/repository/postgres"
	"shipdesk/internal/router"
	"shipdesk/internal/service"
	s3storage "shipdesk/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Log.Level == "debug" {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	// Initialize draft persistence
	var (
		draftRepo port.DraftRepository
		pinger    handler.Pinger
	)
	switch cfg.Draft.Backend {
	case "memory":
		log.Printf("using in-memory draft repository; drafts will not survive a restart")
		draftRepo = memory.NewDraftRepo()
	default:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		draftRepo = postgres.NewDraftRepo(db)
		pinger = postgres.NewPinger(db)
	}

	store := draft.NewStore(draftRepo, cfg.Draft.Namespace)
	if err := store.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}

	// Initialize document archive
	var archive port.DocumentArchive
	if cfg.S3.Bucket != "" {
		archive, err = s3storage.NewS3Archive(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 archive: %w", err)
		}
		log.Printf("archiving trade documents to s3://%s/%s", cfg.S3.Bucket, cfg.S3.KeyPrefix)
	}

	// Initialize services
	extractor := extraction.New(&cfg.Extraction)
	calculator := pricing.NewCalculator(pricing.DefaultRules())
	draftSvc := service.NewDraftService(store, extractor, archive, calculator, &cfg.Extraction, cfg.Draft.Namespace)

	// Initialize handlers
	draftH := handler.NewDraftHandler(draftSvc)
	healthH := handler.NewHealthHandler(pinger)

	// Setup router
	r := router.Setup(draftH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
