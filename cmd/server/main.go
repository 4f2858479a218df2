package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"deckflow/internal/assets"
	"deckflow/internal/config"
	"deckflow/internal/database"
	"deckflow/internal/export"
	"deckflow/internal/generation"
	"deckflow/internal/handlers"
	"deckflow/internal/jobs"
	"deckflow/internal/llm"
	"deckflow/internal/logging"
	"deckflow/internal/middleware"
	"deckflow/internal/services"
	"deckflow/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting DeckFlow Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Store: %s)", cfg.Port, cfg.StoreBackend)

	if cfg.LLMAPIKey == "" {
		log.Println("⚠️  LLM_API_KEY not set, generation requests will fail against most providers")
	}

	// Deck store backend
	deckStore, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize deck store: %v", err)
	}
	defer deckStore.Close(context.Background())

	// Prometheus metrics
	metrics := services.InitMetrics()

	// LLM client, shared by planner and writer
	llmClient := llm.NewClient(llm.Options{
		BaseURL:    cfg.LLMBaseURL,
		APIKey:     cfg.LLMAPIKey,
		Timeout:    cfg.LLMTimeout,
		RateLimit:  cfg.LLMRateLimit,
		RateBurst:  cfg.LLMRateBurst,
		MaxRetries: cfg.LLMMaxRetries,
		Recorder:   metrics,
	})

	// Assets: base CSS, theme palettes and persona prompts
	assetManager := assets.NewManager(cfg.AssetsDir)
	defer assetManager.Close()

	planner := generation.NewPlanner(llmClient, cfg.PlannerModel)
	planner.SetPersonas(assetManager.Personas())
	writer := generation.NewWriter(llmClient, cfg.WriterModel)

	if cfg.AssetHotReload {
		if err := assetManager.Watch(func() {
			planner.SetPersonas(assetManager.Personas())
		}); err != nil {
			log.Printf("⚠️ Asset hot reload disabled: %v", err)
		} else {
			log.Printf("👁️ Watching %s for asset changes", cfg.AssetsDir)
		}
	}

	// Generation pipeline
	reporter := generation.NewStoreReporter(deckStore)
	orchestrator := generation.NewOrchestrator(deckStore, planner, writer, reporter, cfg.MaxDecks, cfg.MaxSlideConcurrency)
	orchestrator.SetMetrics(metrics)
	slideService := generation.NewSlideService(deckStore, writer)
	log.Printf("🎯 Generation pipeline ready (max %d decks, %d slides per deck)", cfg.MaxDecks, cfg.MaxSlideConcurrency)

	exporter := export.NewExporter(assetManager, cfg.ChromePath)
	summaryCache := services.NewSummaryCacheService(cfg.SummaryCacheTTL)

	// Background jobs
	var jobScheduler *jobs.Scheduler
	if cfg.RetentionEnabled {
		jobScheduler, err = jobs.NewScheduler()
		if err != nil {
			log.Fatalf("❌ Failed to create job scheduler: %v", err)
		}
		cleanupJob := jobs.NewStaleDeckCleanupJob(deckStore, cfg.StaleDeckAge)
		if err := jobScheduler.Register(cfg.RetentionSchedule, cleanupJob); err != nil {
			log.Fatalf("❌ Failed to register stale deck cleanup: %v", err)
		}
		jobScheduler.Start()
		log.Printf("📅 Stale deck cleanup scheduled (%s, max age %s)", cfg.RetentionSchedule, cfg.StaleDeckAge)
	} else {
		log.Println("⚠️ Retention cleanup disabled")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "DeckFlow v1.0",
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 300 * time.Second, // PDF export holds the response while Chrome renders
		IdleTimeout:  120 * time.Second,
		BodyLimit:    25 * 1024 * 1024, // uploaded PDFs and spreadsheets
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("deckflow")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowedOrigins != "*",
	}))

	rateLimitConfig := middleware.LoadRateLimitConfig()
	if cfg.RateLimitEnabled {
		log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Read=%d/min, Generate=%d/min, Export=%d/min",
			rateLimitConfig.GlobalAPIMax,
			rateLimitConfig.ReadMax,
			rateLimitConfig.GenerateMax,
			rateLimitConfig.ExportMax,
		)
		app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	} else {
		log.Println("⚠️ [RATE-LIMIT] Rate limiting disabled")
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(deckStore)
	deckHandler := handlers.NewDeckHandler(deckStore, orchestrator, summaryCache)
	slideHandler := handlers.NewSlideHandler(slideService, summaryCache)
	exportHandler := handlers.NewExportHandler(deckStore, exporter)
	fileHandler := handlers.NewFileHandler()

	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")

	decks := api.Group("/decks")
	if cfg.RateLimitEnabled {
		decks.Post("/", middleware.GenerateRateLimiter(rateLimitConfig), deckHandler.CreateDeck)
	} else {
		decks.Post("/", deckHandler.CreateDeck)
	}
	if cfg.RateLimitEnabled {
		readLimiter := middleware.ReadRateLimiter(rateLimitConfig)
		decks.Get("/", readLimiter, deckHandler.ListDecks)
		decks.Get("/:deckID", readLimiter, deckHandler.GetDeck)
		decks.Get("/:deckID/data", readLimiter, deckHandler.GetDeckData)
	} else {
		decks.Get("/", deckHandler.ListDecks)
		decks.Get("/:deckID", deckHandler.GetDeck)
		decks.Get("/:deckID/data", deckHandler.GetDeckData)
	}
	decks.Post("/:deckID/cancel", deckHandler.CancelDeck)
	decks.Delete("/:deckID", deckHandler.DeleteDeck)

	if cfg.RateLimitEnabled {
		decks.Get("/:deckID/export", middleware.ExportRateLimiter(rateLimitConfig), exportHandler.ExportDeck)
	} else {
		decks.Get("/:deckID/export", exportHandler.ExportDeck)
	}

	slides := decks.Group("/:deckID/slides/:order")
	if cfg.RateLimitEnabled {
		slides.Post("/modify", middleware.GenerateRateLimiter(rateLimitConfig), slideHandler.ModifySlide)
	} else {
		slides.Post("/modify", slideHandler.ModifySlide)
	}
	slides.Get("/versions", slideHandler.GetSlideVersions)
	slides.Post("/revert", slideHandler.RevertSlide)
	slides.Post("/save", slideHandler.SaveSlide)

	api.Post("/files/extract", fileHandler.ExtractFiles)

	log.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		// Let running generations finish their current writes (30s max)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := orchestrator.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Error waiting for generations: %v", err)
		}
		if err := slideService.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Error waiting for slide modifications: %v", err)
		}

		if jobScheduler != nil {
			if err := jobScheduler.Stop(); err != nil {
				log.Printf("⚠️ Error stopping job scheduler: %v", err)
			}
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// buildStore picks the deck store backend from configuration.
func buildStore(cfg *config.Config) (store.DeckStore, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		log.Printf("🗄️ Using SQLite deck store at %s", cfg.SQLitePath)
		return store.NewSQLiteDeckStore(cfg.SQLitePath)
	case "memory":
		log.Println("🗄️ Using in-memory deck store (decks are lost on restart)")
		return store.NewMemoryDeckStore(), nil
	default:
		log.Println("🔗 Connecting to MongoDB...")
		mongoDB, err := database.NewMongoDB(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoDB.Initialize(ctx); err != nil {
			mongoDB.Close(context.Background())
			return nil, err
		}
		log.Println("✅ MongoDB connected successfully")
		return store.NewMongoDeckStore(mongoDB), nil
	}
}
