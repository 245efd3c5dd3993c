package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"jobmatch-backend/cmd"
	"jobmatch-backend/internal/artifact"
	"jobmatch-backend/internal/corpus"
	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/email"
	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/messaging"
	"jobmatch-backend/internal/training"

	"github.com/caarlos0/env/v11"
)

type WorkerConfig struct {
	cmd.StorageConfig

	DatabaseURL string `env:"DATABASE_URL,notEmpty,required"`

	// Required when consuming the queue, unused in -train-all mode.
	RabbitMQURL string `env:"RABBITMQ_URL"`

	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-large"`

	MailGatewayURL string `env:"MAIL_GATEWAY_URL"`
	MailAPIKey     string `env:"MAIL_API_KEY"`
	MailFrom       string `env:"MAIL_FROM" envDefault:"noreply@jobmatch.example"`
	ReportEmail    string `env:"TRAINING_REPORT_EMAIL"`

	Platforms string `env:"PLATFORMS" envDefault:"apec,linkedin,indeed,jungle,hellowork"`
	Regions   string `env:"REGIONS" envDefault:"france"`
}

func main() {
	log.Println("Starting training worker...")

	trainAll := flag.Bool("train-all", false, "train every configured platform/region pair once and exit")
	cmd.LoadEnvFile()

	var cfg WorkerConfig
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

	pipeline := training.NewPipeline(
		corpus.NewLoader(objects),
		embedding.NewOpenAIEmbedder(cfg.EmbeddingModel),
		artifact.NewStore(objects, logger),
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down worker...")
		cancel()
	}()

	if *trainAll {
		runTrainAll(ctx, pipeline, cfg)
		return
	}

	if cfg.RabbitMQURL == "" {
		log.Fatalf("RABBITMQ_URL is required when consuming the queue")
	}
	receiver, err := messaging.NewRabbitMQReceiver(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer receiver.Close()

	var mailer email.Mailer
	if cfg.MailGatewayURL != "" {
		mailer = email.NewGatewayMailer(cfg.MailGatewayURL, cfg.MailAPIKey, cfg.MailFrom)
	}
	worker := messaging.NewTrainingWorker(db, pipeline, mailer, cfg.ReportEmail, logger)

	worker.Run(ctx, receiver)
	log.Println("Worker stopped.")
}

func runTrainAll(ctx context.Context, pipeline *training.Pipeline, cfg WorkerConfig) {
	var pairs []training.Pair
	for _, platform := range cmd.SplitList(cfg.Platforms) {
		for _, region := range cmd.SplitList(cfg.Regions) {
			pairs = append(pairs, training.Pair{Platform: platform, Region: region})
		}
	}

	results, failures := pipeline.RunAll(ctx, pairs)
	for _, res := range results {
		log.Printf("trained %s/%s: %d documents, %d clusters, best classifier %s",
			res.Platform, res.Region, res.Documents, res.ClusterCount, res.BestClassifier)
	}
	for pair, err := range failures {
		log.Printf("training failed for %s: %v", pair, err)
	}
	if len(failures) > 0 {
		os.Exit(1)
	}
}
