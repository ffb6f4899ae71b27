package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Storage  StorageConfig
	Buffer   BufferConfig
	Thumbs   ThumbnailConfig
	Query    QueryConfig
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

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig names the two designated storage locations and their roots.
type StorageConfig struct {
	MainName      string
	MainDir       string
	ThumbnailName string
	ThumbnailDir  string
	AutoConnect   bool
}

// BufferConfig tunes the in-process payload buffer.
type BufferConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// ThumbnailConfig tunes thumbnail generation.
type ThumbnailConfig struct {
	DefaultTier string
}

// QueryConfig governs the optional redis-backed result cache.
type QueryConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

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

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Storage = StorageConfig{
		MainName:      v.GetString("STORAGE_MAIN_NAME"),
		MainDir:       v.GetString("STORAGE_MAIN_DIR"),
		ThumbnailName: v.GetString("STORAGE_THUMBNAIL_NAME"),
		ThumbnailDir:  v.GetString("STORAGE_THUMBNAIL_DIR"),
		AutoConnect:   v.GetBool("STORAGE_AUTO_CONNECT"),
	}

	cfg.Buffer = BufferConfig{
		TTL:           parseDuration(v.GetString("BUFFER_TTL"), 2*time.Minute),
		SweepInterval: parseDuration(v.GetString("BUFFER_SWEEP_INTERVAL"), 10*time.Second),
	}

	cfg.Thumbs = ThumbnailConfig{
		DefaultTier: v.GetString("THUMBNAIL_DEFAULT_TIER"),
	}

	cfg.Query = QueryConfig{
		CacheEnabled: v.GetBool("QUERY_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("QUERY_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8735)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mediavault")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORAGE_MAIN_NAME", "default")
	v.SetDefault("STORAGE_MAIN_DIR", "./data/files")
	v.SetDefault("STORAGE_THUMBNAIL_NAME", "thumbnails")
	v.SetDefault("STORAGE_THUMBNAIL_DIR", "./data/thumbnails")
	v.SetDefault("STORAGE_AUTO_CONNECT", true)

	v.SetDefault("BUFFER_TTL", "120s")
	v.SetDefault("BUFFER_SWEEP_INTERVAL", "10s")

	v.SetDefault("THUMBNAIL_DEFAULT_TIER", "medium")

	v.SetDefault("QUERY_CACHE_ENABLED", false)
	v.SetDefault("QUERY_CACHE_TTL", "5m")
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
