package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	LedgerDriverMongo  = "mongo"
	LedgerDriverMemory = "memory"
)

// Feature toggles have no env-default: cleanenv would apply a "true"
// default over an explicit false from the yaml file.
type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	GRPCServer GRPCServerConfig `yaml:"grpc_server"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	MongoDB    MongoDBConfig    `yaml:"mongo"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Redis      RedisConfig      `yaml:"redis"`
	Lock       LockConfig       `yaml:"lock"`
	Cache      CacheConfig      `yaml:"cache"`
	NATS       NATSConfig       `yaml:"nats"`
	Minio      MinioConfig      `yaml:"minio"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	JWT        JWTConfig        `yaml:"jwt"`
	Admin      AdminConfig      `yaml:"admin"`
	Logger     logger.Config    `yaml:"logger"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"15s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"HTTP_MAX_UPLOAD_BYTES" env-default:"10485760"`
	MediaBaseURL    string        `yaml:"media_base_url" env:"HTTP_MEDIA_BASE_URL" env-default:"http://localhost:8080/media"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env-default:"15s"`
}

type GRPCServerConfig struct {
	Port              string        `yaml:"port" env:"GRPC_PORT" env-default:"50060"`
	MaxConnectionIdle time.Duration `yaml:"max_connection_idle" env-default:"15m"`
	TimeoutGraceful   time.Duration `yaml:"timeout_graceful_shutdown" env-default:"15s"`
}

type MetricsConfig struct {
	Port      string `yaml:"port" env:"METRICS_PORT" env-default:"9095"`
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE" env-default:"estate"`
}

type MongoDBConfig struct {
	URI            string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017/?replicaSet=rs0"`
	User           string        `yaml:"user" env:"MONGO_USER"`
	Password       string        `yaml:"password" env:"MONGO_PASSWORD"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE" env-default:"estate_db"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env-default:"10s"`
}

type LedgerConfig struct {
	Driver    string        `yaml:"driver" env:"LEDGER_DRIVER" env-default:"mongo"`
	TxTimeout time.Duration `yaml:"tx_timeout" env:"LEDGER_TX_TIMEOUT" env-default:"5s"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
}

type LockConfig struct {
	Enabled    bool          `yaml:"enabled" env:"LOCK_ENABLED"`
	Expiry     time.Duration `yaml:"expiry" env:"LOCK_EXPIRY" env-default:"10s"`
	Tries      int           `yaml:"tries" env:"LOCK_TRIES" env-default:"32"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"LOCK_RETRY_DELAY" env-default:"50ms"`
}

type CacheConfig struct {
	PropertyTTL time.Duration `yaml:"property_ttl" env:"CACHE_PROPERTY_TTL" env-default:"1h"`
}

type NATSConfig struct {
	URL     string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	Enabled bool   `yaml:"enabled" env:"NATS_ENABLED"`
}

type MinioConfig struct {
	Enabled         bool   `yaml:"enabled" env:"MINIO_ENABLED"`
	Endpoint        string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MINIO_SECRET_ACCESS_KEY"`
	UseSSL          bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	Bucket          string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"property-images"`
	PublicURL       string `yaml:"public_url" env:"MINIO_PUBLIC_URL" env-default:"http://localhost:9000"`
}

type SMTPConfig struct {
	Enabled      bool          `yaml:"enabled" env:"SMTP_ENABLED"`
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	SenderEmail  string        `yaml:"sender_email" env:"SMTP_SENDER_EMAIL"`
	Encryption   string        `yaml:"encryption" env:"SMTP_ENCRYPTION" env-default:"tls"`
	ServerName   string        `yaml:"server_name" env:"SMTP_SERVER_NAME"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SMTP_WRITE_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
	Issuer   string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"estate-service"`
}

// AdminConfig seeds the first administrator. Skipped when Email is empty.
type AdminConfig struct {
	Name     string `yaml:"name" env:"ADMIN_NAME" env-default:"Administrator"`
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

type TracingConfig struct {
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"estate-service"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	switch c.Ledger.Driver {
	case LedgerDriverMongo, LedgerDriverMemory:
	default:
		return fmt.Errorf("unknown ledger driver %q", c.Ledger.Driver)
	}
	if c.Ledger.TxTimeout <= 0 {
		return errors.New("ledger tx_timeout must be positive")
	}
	if c.Lock.Enabled && !c.Redis.Enabled {
		return errors.New("lock requires redis to be enabled")
	}
	if c.SMTP.Enabled && (c.SMTP.Host == "" || c.SMTP.SenderEmail == "") {
		return errors.New("smtp requires host and sender_email when enabled")
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		return errors.New("admin password is required when admin email is set")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
		log.Printf("Warning: config file not found at %s, loading from environment variables only", path)
		if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
			return nil, errEnv
		}
	}
	if err := cfg.Validate(); err != nil {
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
