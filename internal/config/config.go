package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Storage backends
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// Catalog sources
const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// Config is the server configuration, read from the environment
type Config struct {
	HTTPHost    string
	HTTPPort    int
	CORSOrigins []string

	LogLevel  string
	LogFormat string

	StorageType string
	RedisURL    string
	DatabaseURL string

	CatalogSource string
	CatalogFile   string

	NATSURL           string
	NATSSubjectPrefix string

	GracePeriod       time.Duration
	RoomTTL           time.Duration
	FinishedRetention time.Duration
	SweepInterval     time.Duration
	ConcealPolicy     string
	PairingBaseline   int
	PairingTolerance  int
	TicketCost        int
}

// Default returns the configuration used when no environment is set
func Default() Config {
	return Config{
		HTTPHost:          "",
		HTTPPort:          8080,
		CORSOrigins:       []string{"*"},
		LogLevel:          "info",
		LogFormat:         "json",
		StorageType:       StorageTypeMemory,
		CatalogSource:     CatalogSourceFile,
		NATSSubjectPrefix: "elostealo",
		GracePeriod:       30 * time.Second,
		RoomTTL:           30 * time.Minute,
		FinishedRetention: 10 * time.Minute,
		SweepInterval:     time.Minute,
		ConcealPolicy:     "full",
		PairingBaseline:   1500,
		PairingTolerance:  150,
		TicketCost:        bcrypt.MinCost,
	}
}

// Load reads a .env file when present, then the process environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a lookup function such as os.LookupEnv
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	r := reader{lookup: lookup}

	cfg.HTTPHost = r.str("HTTP_HOST", cfg.HTTPHost)
	cfg.HTTPPort = r.int("HTTP_PORT", cfg.HTTPPort)
	cfg.CORSOrigins = r.list("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.LogLevel = r.str("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = r.str("LOG_FORMAT", cfg.LogFormat)
	cfg.StorageType = r.str("STORAGE_TYPE", cfg.StorageType)
	cfg.RedisURL = r.str("REDIS_URL", cfg.RedisURL)
	cfg.DatabaseURL = r.str("DATABASE_URL", cfg.DatabaseURL)
	cfg.CatalogSource = r.str("CATALOG_SOURCE", cfg.CatalogSource)
	cfg.CatalogFile = r.str("CATALOG_FILE", cfg.CatalogFile)
	cfg.NATSURL = r.str("NATS_URL", cfg.NATSURL)
	cfg.NATSSubjectPrefix = r.str("NATS_SUBJECT_PREFIX", cfg.NATSSubjectPrefix)
	cfg.GracePeriod = r.duration("GRACE_PERIOD", cfg.GracePeriod)
	cfg.RoomTTL = r.duration("ROOM_TTL", cfg.RoomTTL)
	cfg.FinishedRetention = r.duration("FINISHED_RETENTION", cfg.FinishedRetention)
	cfg.SweepInterval = r.duration("SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.ConcealPolicy = r.str("CONCEAL_POLICY", cfg.ConcealPolicy)
	cfg.PairingBaseline = r.int("PAIRING_BASELINE", cfg.PairingBaseline)
	cfg.PairingTolerance = r.int("PAIRING_TOLERANCE", cfg.PairingTolerance)
	cfg.TicketCost = r.int("TICKET_COST", cfg.TicketCost)

	if len(r.errs) > 0 {
		return Config{}, errors.Join(r.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StorageTypePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType)
	}

	switch c.CatalogSource {
	case CatalogSourceFile:
	case CatalogSourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.GracePeriod <= 0 || c.RoomTTL <= 0 || c.SweepInterval <= 0 || c.FinishedRetention <= 0 {
		return errors.New("durations must be positive")
	}
	if c.PairingTolerance < 0 {
		return errors.New("PAIRING_TOLERANCE must not be negative")
	}
	return nil
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}

func (r *reader) list(key string, def []string) []string {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
