package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// HTTP server
	ListenAddr string

	// Registry client (Hugging Face-style API)
	RegistryBaseURL string
	RegistryTimeout time.Duration

	// S3-compatible object store
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3UseSSL        bool
	S3PublicBaseURL string // used to build the torrent's web-seed URL

	// Multipart sink sizing (spec §9 Open Question 4: deployment constants,
	// must respect the backend's minimum part size, typically 5 MiB, and
	// its maximum part count, typically 10 000)
	MinPartSize int64
	MaxPartSize int64

	// Torrent generation
	PieceLength int64
	TrackerURL  string
	CreatedBy   string
}

const (
	minAbsolutePartSize = 5 * 1024 * 1024 // S3-compatible absolute floor
	maxPartCount        = 10000
)

// Load reads configuration from a simple key=value file (if present) and
// then applies environment-variable overrides, mirroring the teacher's
// file-then-env precedence.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		ListenAddr:      ":10858",
		RegistryBaseURL: "https://huggingface.co",
		RegistryTimeout: 30 * time.Second,

		S3Region: "us-east-1",
		S3UseSSL: true,

		MinPartSize: 60 * 1024 * 1024,
		MaxPartSize: 60 * 1024 * 1024,

		PieceLength: 1 * 1024 * 1024,
		TrackerURL:  "udp://tracker.opentrackr.org:1337/announce",
		CreatedBy:   "omnicloud-archiver",
	}

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg.loadFromEnv()

	if cfg.MinPartSize < minAbsolutePartSize {
		return nil, fmt.Errorf("MIN_PART_SIZE must be at least %d bytes", minAbsolutePartSize)
	}
	if cfg.MaxPartSize < cfg.MinPartSize {
		return nil, fmt.Errorf("MAX_PART_SIZE must be >= MIN_PART_SIZE")
	}
	if cfg.PieceLength <= 0 {
		return nil, fmt.Errorf("PIECE_LENGTH must be positive")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET must be set (in config file or environment)")
	}

	return cfg, nil
}

// loadFromFile reads key=value pairs, one per line, skipping blanks and
// lines starting with '#'.
func (cfg *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "listen_addr":
			cfg.ListenAddr = value
		case "registry_base_url":
			cfg.RegistryBaseURL = value
		case "registry_timeout_seconds":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.RegistryTimeout = time.Duration(n) * time.Second
			}
		case "s3_endpoint":
			cfg.S3Endpoint = value
		case "s3_region":
			cfg.S3Region = value
		case "s3_bucket":
			cfg.S3Bucket = value
		case "s3_access_key":
			cfg.S3AccessKey = value
		case "s3_secret_key":
			cfg.S3SecretKey = value
		case "s3_use_ssl":
			cfg.S3UseSSL = value == "true" || value == "1" || value == "yes"
		case "s3_public_base_url":
			cfg.S3PublicBaseURL = value
		case "min_part_size":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				cfg.MinPartSize = n
			}
		case "max_part_size":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				cfg.MaxPartSize = n
			}
		case "piece_length":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				cfg.PieceLength = n
			}
		case "tracker_url":
			cfg.TrackerURL = value
		case "created_by":
			cfg.CreatedBy = value
		}
	}

	return scanner.Err()
}

// loadFromEnv overrides config fields from environment variables.
func (cfg *Config) loadFromEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("REGISTRY_BASE_URL"); v != "" {
		cfg.RegistryBaseURL = v
	}
	if v := os.Getenv("REGISTRY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RegistryTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3Endpoint = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.S3Region = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3Bucket = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.S3AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.S3SecretKey = v
	}
	if v := os.Getenv("S3_USE_SSL"); v != "" {
		cfg.S3UseSSL = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("S3_PUBLIC_BASE_URL"); v != "" {
		cfg.S3PublicBaseURL = v
	}
	if v := os.Getenv("MIN_PART_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MinPartSize = n
		}
	}
	if v := os.Getenv("MAX_PART_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxPartSize = n
		}
	}
	if v := os.Getenv("PIECE_LENGTH"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.PieceLength = n
		}
	}
	if v := os.Getenv("TRACKER_URL"); v != "" {
		cfg.TrackerURL = v
	}
	if v := os.Getenv("CREATED_BY"); v != "" {
		cfg.CreatedBy = v
	}
}

// MaxArchiveSize returns the largest archive this sink configuration can
// upload given the backend's part-count ceiling.
func (cfg *Config) MaxArchiveSize() int64 {
	return cfg.MaxPartSize * maxPartCount
}
