// Package cmd holds wiring shared by the api and worker binaries.
package cmd

import (
	"context"
	"flag"
	"log"
	"strings"

	"jobmatch-backend/internal/storage"

	"github.com/joho/godotenv"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	if err := godotenv.Load(configPath); err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// StorageConfig is the object store part of both binaries' configuration.
type StorageConfig struct {
	LocalDir          string `env:"LOCAL_STORAGE_DIR"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"eu-west-3"`
	BucketName        string `env:"MODEL_BUCKET_NAME" envDefault:"jobmatch"`
}

// NewObjectStore picks local disk when LOCAL_STORAGE_DIR is set, S3 otherwise.
func NewObjectStore(cfg StorageConfig) (storage.ObjectStore, error) {
	if cfg.LocalDir != "" {
		log.Printf("using local object store at %s", cfg.LocalDir)
		return storage.NewLocalObjectStore(cfg.LocalDir)
	}

	store, err := storage.NewS3ObjectStore(storage.S3ClientConfig{
		EndpointURL:     cfg.S3EndpointURL,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.BucketName,
	})
	if err != nil {
		return nil, err
	}
	if err := store.CreateBucket(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// SplitList parses a comma separated env value into its entries.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
