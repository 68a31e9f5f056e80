package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type MySQLConfig struct {
	DSN string `yaml:"dsn" env:"MYSQL_DSN" env-default:"root:root@tcp(localhost:3306)/practice_marketplace?charset=utf8mb4&parseTime=True&loc=UTC"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"LISTING_CACHE_TTL" env-default:"1h"`
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"true"`
}

type NATSConfig struct {
	URL     string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	Enabled bool   `yaml:"enabled" env:"NATS_ENABLED" env-default:"true"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"listing-media"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	Enabled   bool   `yaml:"enabled" env:"MINIO_ENABLED" env-default:"true"`
}

type MeilisearchConfig struct {
	Host        string `yaml:"host" env:"MEILISEARCH_HOST" env-default:"http://localhost:7700"`
	APIKey      string `yaml:"api_key" env:"MEILISEARCH_API_KEY"`
	Enabled     bool   `yaml:"enabled" env:"MEILISEARCH_ENABLED" env-default:"true"`
	ReindexCron string `yaml:"reindex_cron" env:"MEILISEARCH_REINDEX_CRON" env-default:"@every 1h"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	OutputFile string `yaml:"output_file" env:"LOG_OUTPUT_FILE"`
}

type MetricsConfig struct {
	Port      string `yaml:"port" env:"METRICS_PORT" env-default:"9091"`
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE" env-default:"marketplace"`
}

type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	ServiceName string            `yaml:"service_name" env:"SERVICE_NAME" env-default:"practice-marketplace"`
	HTTPServer  HTTPServerConfig  `yaml:"http_server"`
	MySQL       MySQLConfig       `yaml:"mysql"`
	Redis       RedisConfig       `yaml:"redis"`
	NATS        NATSConfig        `yaml:"nats"`
	Minio       MinioConfig       `yaml:"minio"`
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
	JWT         JWTConfig         `yaml:"jwt"`
	Logger      LoggerConfig      `yaml:"logger"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Tracing     TracingConfig     `yaml:"tracing"`
}

// LoadConfig reads the yaml file at path when present and falls back
// to environment variables, so containers can run without a file.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: config file not found at %s, loading from environment variables only.", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
