package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omnicloud/archiver/internal/api"
	"github.com/omnicloud/archiver/internal/archivepipeline"
	"github.com/omnicloud/archiver/internal/config"
	"github.com/omnicloud/archiver/internal/objectstore"
	"github.com/omnicloud/archiver/internal/registry"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a key=value config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	s3Client, err := objectstore.NewClient(ctx, objectstore.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		log.Fatalf("object store client: %v", err)
	}

	registryClient := registry.NewClient(cfg.RegistryBaseURL, &http.Client{Timeout: cfg.RegistryTimeout})

	pipeline := &archivepipeline.Pipeline{
		Registry:        registryClient,
		S3:              s3Client,
		Bucket:          cfg.S3Bucket,
		S3PublicBaseURL: cfg.S3PublicBaseURL,
		MinPartSize:     cfg.MinPartSize,
		MaxPartSize:     cfg.MaxPartSize,
		PieceLength:     cfg.PieceLength,
		TrackerURL:      cfg.TrackerURL,
		CreatedBy:       cfg.CreatedBy,
	}

	server := api.NewServer(cfg.ListenAddr, pipeline, Version)

	go func() {
		log.Printf("archiver listening on %s", cfg.ListenAddr)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	log.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("shutdown signal received, stopping archiver...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down server: %v", err)
	}

	log.Println("archiver stopped")
}
