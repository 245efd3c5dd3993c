package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmatch-backend/cmd"
	"jobmatch-backend/internal/api"
	"jobmatch-backend/internal/artifact"
	"jobmatch-backend/internal/corpus"
	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/email"
	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/enrich"
	"jobmatch-backend/internal/inference"
	"jobmatch-backend/internal/messaging"
	"jobmatch-backend/internal/training"
	"jobmatch-backend/internal/verification"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type APIConfig struct {
	cmd.StorageConfig

	DatabaseURL string `env:"DATABASE_URL,notEmpty,required"`

	// Empty means no broker: training jobs run in-process off an in-memory
	// queue, which is the local development mode.
	RabbitMQURL string `env:"RABBITMQ_URL"`

	EmbeddingModel  string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-large"`
	GenerationModel string `env:"GENERATION_MODEL" envDefault:"gpt-4o-mini"`

	MailGatewayURL string `env:"MAIL_GATEWAY_URL"`
	MailAPIKey     string `env:"MAIL_API_KEY"`
	MailFrom       string `env:"MAIL_FROM" envDefault:"noreply@jobmatch.example"`
	ReportEmail    string `env:"TRAINING_REPORT_EMAIL"`

	Platforms string `env:"PLATFORMS" envDefault:"apec,linkedin,indeed,jungle,hellowork"`
	Regions   string `env:"REGIONS" envDefault:"france"`

	APIPort string `env:"API_PORT" envDefault:"8001"`
}

func main() {
	log.Println("Starting API server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	logger := slog.Default()

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	objects, err := cmd.NewObjectStore(cfg.StorageConfig)
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}

	artifacts := artifact.NewStore(objects, logger)
	embedder := embedding.NewOpenAIEmbedder(cfg.EmbeddingModel)

	var enricher *enrich.Orchestrator
	if generator, err := enrich.NewOpenAIGenerator(cfg.GenerationModel); err != nil {
		logger.Warn("generation client unavailable, matches will not be enriched", "error", err)
	} else {
		enricher = enrich.NewOrchestrator(generator, logger)
	}

	engine := inference.NewEngine(artifacts, embedder, enricher, db, logger)

	var mailer email.Mailer
	if cfg.MailGatewayURL != "" {
		mailer = email.NewGatewayMailer(cfg.MailGatewayURL, cfg.MailAPIKey, cfg.MailFrom)
	} else {
		logger.Warn("no mail gateway configured, verification codes will not be delivered")
	}

	var publisher messaging.Publisher
	if cfg.RabbitMQURL != "" {
		rabbit, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = rabbit
	} else {
		// Single-process mode: consume training tasks in the background.
		logger.Info("no broker configured, running training worker in-process")
		queue := messaging.NewInMemoryQueue()
		publisher = queue

		pipeline := training.NewPipeline(corpus.NewLoader(objects), embedder, artifacts, logger)
		worker := messaging.NewTrainingWorker(db, pipeline, mailer, cfg.ReportEmail, logger)
		go worker.Run(context.Background(), queue)
	}
	defer publisher.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	service := api.NewBackendService(db, engine, publisher, verification.NewStore(), mailer,
		cmd.SplitList(cfg.Platforms), cmd.SplitList(cfg.Regions))
	service.AddRoutes(r)

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
