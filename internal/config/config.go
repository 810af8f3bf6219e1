package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the scribepipe API server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
}

// WorkerConfig holds all configuration for the transcription worker.
type WorkerConfig struct {
	NATS       NATSConfig
	Storage    StorageConfig
	FFmpegPath string
	Whisper    WhisperConfig
	WorkDir    string
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type NATSConfig struct {
	URL            string
	JobSubject     string
	OutcomeSubject string
	WorkerQueue    string
}

type StorageConfig struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
}

type WhisperConfig struct {
	BinPath   string
	ModelPath string
	Language  string
}

// Load reads server configuration from environment variables and returns a
// validated Config. Returns an error with a descriptive message if any
// required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("SCRIBEPIPE_PORT", 8080),
			Env:  envString("SCRIBEPIPE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		NATS: loadNATS(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWorker reads worker configuration from environment variables.
func LoadWorker() (*WorkerConfig, error) {
	cfg := &WorkerConfig{
		NATS: loadNATS(),
		Storage: StorageConfig{
			Region:       envString("AWS_REGION", "us-west-1"),
			Endpoint:     os.Getenv("AWS_S3_ENDPOINT"),
			UsePathStyle: envBool("AWS_S3_USE_PATH_STYLE", false),
		},
		FFmpegPath: envString("FFMPEG_PATH", "ffmpeg"),
		Whisper: WhisperConfig{
			BinPath:   envString("WHISPER_PATH", "whisper-cli"),
			ModelPath: os.Getenv("WHISPER_MODEL"),
			Language:  envString("TRANSCRIBE_LANGUAGE", "korean"),
		},
		WorkDir: os.Getenv("SCRIBEPIPE_WORK_DIR"),
	}

	if cfg.Whisper.ModelPath == "" {
		return nil, fmt.Errorf("WHISPER_MODEL is required")
	}
	return cfg, nil
}

func loadNATS() NATSConfig {
	return NATSConfig{
		URL:            envString("NATS_URL", "nats://127.0.0.1:4222"),
		JobSubject:     envString("NATS_JOB_SUBJECT", "scribepipe.jobs"),
		OutcomeSubject: envString("NATS_OUTCOME_SUBJECT", "scribepipe.outcomes"),
		WorkerQueue:    envString("NATS_WORKER_QUEUE", "transcribe-workers"),
	}
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if !strings.HasPrefix(c.NATS.URL, "nats://") && !strings.HasPrefix(c.NATS.URL, "tls://") {
		return fmt.Errorf("NATS_URL must start with nats:// or tls://, got %q", c.NATS.URL)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true"
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
