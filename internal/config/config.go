package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all configuration parameters of the application.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	ServerPort  string `env:"SERVER_PORT"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	UploadLimit    int           `env:"UPLOAD_LIMIT" envDefault:"5"`

	// AppSecret is the shared application secret. Signed URLs fall back to it
	// when no dedicated signing secret is configured.
	AppSecret string `env:"APP_SECRET,required"`

	// Signed URL settings (nginx secure_link compatible).
	SignedURLSecret    string        `env:"SIGNED_URL_SECRET"`
	SignedURLAlgorithm string        `env:"SIGNED_URL_ALGORITHM" envDefault:"md5"`
	SignedURLTTL       time.Duration `env:"SIGNED_URL_TTL" envDefault:"1h"`
	MediaBasePath      string        `env:"MEDIA_BASE_PATH" envDefault:"/media"`

	// MinIO / S3 settings.
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION,required"`

	// RabbitMQ settings: one queue per enrichment worker class.
	RabbitMQ struct {
		RabbitMQURL     string `env:"RABBITMQ_URL,required"`
		VisionQueueName string `env:"RABBITMQ_VISION_QUEUE_NAME" envDefault:"gallery_vision_queue"`
		EXIFQueueName   string `env:"RABBITMQ_EXIF_QUEUE_NAME" envDefault:"gallery_exif_queue"`
	}

	// Vision inference backends. Empty URLs disable the corresponding
	// sub-task; the job degrades to an empty result instead of failing.
	Vision struct {
		DetectorURL   string        `env:"VISION_DETECTOR_URL"`
		RecognizerURL string        `env:"VISION_RECOGNIZER_URL"`
		Timeout       time.Duration `env:"VISION_TIMEOUT" envDefault:"30s"`
	}
}

// SigningSecret returns the dedicated signed-URL secret, falling back to the
// application secret when none is configured.
func (c *Config) SigningSecret() string {
	if c.SignedURLSecret != "" {
		return c.SignedURLSecret
	}
	return c.AppSecret
}

// LoadConfig loads configuration from environment variables.
// In development it picks up a .env file first.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration from environment: %w", err)
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	return &cfg, nil
}
