package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"3000"`

	// Trek-API (Laravel-Backend)
	APIBaseURL string        `envconfig:"TREK_API_BASE_URL" default:"http://161.97.167.73:8001/api"`
	APITimeout time.Duration `envconfig:"TREK_API_TIMEOUT" default:"30s"`

	FeaturedLimit   int `envconfig:"FEATURED_LIMIT" default:"3"`
	ReviewsPerPage  int `envconfig:"REVIEWS_PER_PAGE" default:"8"`
	ReviewRateLimit int `envconfig:"REVIEW_RATE_LIMIT" default:"5"` // pro Minute und IP
	ReviewRateBurst int `envconfig:"REVIEW_RATE_BURST" default:"2"`

	// Proxies, deren X-Forwarded-For übernommen wird. Leer: nur die Verbindungsadresse zählt.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	// Optionaler Antwort-Cache für öffentliche GETs
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	// Snapshot-Protokoll (optional)
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 0 * * *"`
	SnapshotKeep int    `envconfig:"SNAPSHOT_KEEP" default:"14"`

	// S3-Ablage für Snapshots (optional)
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// CacheEnabled meldet, ob ein Redis für den Antwort-Cache konfiguriert ist.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != "" && c.CacheTTL > 0
}

// SnapshotsEnabled meldet, ob Datenbank und S3 für Snapshots konfiguriert sind.
func (c *Config) SnapshotsEnabled() bool {
	return c.DBHost != "" && c.DBName != "" && c.S3URL != "" && c.S3Bucket != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
