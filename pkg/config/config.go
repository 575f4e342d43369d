package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported document store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Supported slide object store drivers.
const (
	SlidesDriverLocal = "local"
	SlidesDriverMinio = "minio"
)

// DefaultBackendURL is used when PROCESSING_BACKEND_URL is not set.
const DefaultBackendURL = "http://localhost:8888"

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	StoreDriver string
	Database    DatabaseConfig
	Mongo       MongoConfig
	Backend     BackendConfig
	Upload      UploadConfig
	Slides      SlidesConfig
	CORS        CORSConfig
	Log         LogConfig
	Client      ClientConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// MongoConfig locates the MongoDB deployment used when STORE_DRIVER=mongo.
type MongoConfig struct {
	URI      string
	Database string
}

// BackendConfig points at the external extraction/chat service.
type BackendConfig struct {
	BaseURL          string
	ChatHistoryPairs int
}

// UploadConfig bounds accepted PDF sizes.
type UploadConfig struct {
	MinBytes int64
	MaxBytes int64
}

// SlidesConfig selects where slide decks live and how links are signed.
type SlidesConfig struct {
	Driver          string
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Minio           MinioConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ClientConfig is read by the terminal client only.
type ClientConfig struct {
	APIURL string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER")))

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Mongo = MongoConfig{
		URI:      v.GetString("MONGODB_URI"),
		Database: v.GetString("MONGODB_DATABASE"),
	}

	backendURL := strings.TrimRight(strings.TrimSpace(v.GetString("PROCESSING_BACKEND_URL")), "/")
	if backendURL == "" {
		backendURL = DefaultBackendURL
	}
	cfg.Backend = BackendConfig{
		BaseURL:          backendURL,
		ChatHistoryPairs: v.GetInt("CHAT_HISTORY_PAIRS"),
	}

	cfg.Upload = UploadConfig{
		MinBytes: v.GetInt64("UPLOAD_MIN_BYTES"),
		MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
	}

	cfg.Slides = SlidesConfig{
		Driver:          strings.ToLower(strings.TrimSpace(v.GetString("SLIDES_DRIVER"))),
		StorageDir:      v.GetString("SLIDES_STORAGE_DIR"),
		SignedURLSecret: v.GetString("SLIDES_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("SLIDES_SIGNED_URL_TTL"), time.Hour),
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Client = ClientConfig{APIURL: strings.TrimRight(v.GetString("PORTAL_API_URL"), "/")}

	return cfg, nil
}

// Validate checks the settings the server cannot start without. Store
// credentials have no defaults, so a missing value is fatal.
func (c *Config) Validate() error {
	var missing []string
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.Database.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.Database.User == "" {
			missing = append(missing, "DB_USER")
		}
		if c.Database.Password == "" {
			missing = append(missing, "DB_PASSWORD")
		}
		if c.Database.Name == "" {
			missing = append(missing, "DB_NAME")
		}
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			missing = append(missing, "MONGODB_URI")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.Slides.Driver {
	case SlidesDriverLocal:
		if c.Slides.SignedURLSecret == "" {
			missing = append(missing, "SLIDES_SIGNED_URL_SECRET")
		}
	case SlidesDriverMinio:
		if c.Slides.Minio.Endpoint == "" {
			missing = append(missing, "MINIO_ENDPOINT")
		}
		if c.Slides.Minio.AccessKey == "" {
			missing = append(missing, "MINIO_ACCESS_KEY")
		}
		if c.Slides.Minio.SecretKey == "" {
			missing = append(missing, "MINIO_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unsupported SLIDES_DRIVER %q", c.Slides.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Upload.MinBytes > c.Upload.MaxBytes {
		return fmt.Errorf("UPLOAD_MIN_BYTES (%d) exceeds UPLOAD_MAX_BYTES (%d)", c.Upload.MinBytes, c.Upload.MaxBytes)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("MONGODB_DATABASE", "unibuddy")

	v.SetDefault("CHAT_HISTORY_PAIRS", 5)

	v.SetDefault("UPLOAD_MIN_BYTES", 10*1024)
	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)

	v.SetDefault("SLIDES_DRIVER", SlidesDriverLocal)
	v.SetDefault("SLIDES_STORAGE_DIR", "./slides")
	v.SetDefault("SLIDES_SIGNED_URL_TTL", "1h")
	v.SetDefault("MINIO_BUCKET", "ppt")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PORTAL_API_URL", "http://localhost:8080")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
