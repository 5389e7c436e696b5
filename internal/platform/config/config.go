package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Object store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
)

// Lock backends.
const (
	LockStore = "store" // leases written to the object store itself
	LockRedis = "redis" // redsync over a redis server
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	StoreBackend string
	LockBackend  string

	PgsqlURL        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisNamespace  string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Circuit breaker around remote object stores
	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Authorisations carried inside ledger requests
	AuthorisationSecret string
	AuthorisationExpiry time.Duration

	AccountLockTimeout time.Duration
	AccountLockLease   time.Duration
	LedgerLockTimeout  time.Duration
	LedgerLockLease    time.Duration

	RateLimit          string
	CORSAllowedOrigins []string

	RabbitMQURL   string
	AlertExchange string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORE_BACKEND", StoreMemory)
	viper.SetDefault("LOCK_BACKEND", LockStore)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_NAMESPACE", "ledger")
	viper.SetDefault("MONGO_URI", "")
	viper.SetDefault("MONGO_DATABASE", "ledger")
	viper.SetDefault("MONGO_COLLECTION", "objects")
	viper.SetDefault("BREAKER_FAILURES", 5)
	viper.SetDefault("BREAKER_OPEN_TIMEOUT", "30s")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "acquire-ledger")
	viper.SetDefault("AUTHORISATION_SECRET", "")
	viper.SetDefault("AUTHORISATION_EXPIRY", "15m")
	viper.SetDefault("ACCOUNT_LOCK_TIMEOUT", "10s")
	viper.SetDefault("ACCOUNT_LOCK_LEASE", "10s")
	viper.SetDefault("LEDGER_LOCK_TIMEOUT", "600s")
	viper.SetDefault("LEDGER_LOCK_LEASE", "600s")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("ALERT_EXCHANGE", "ledger.alerts")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.StoreBackend = strings.ToLower(viper.GetString("STORE_BACKEND"))
	switch cfg.StoreBackend {
	case StoreMemory, StorePostgres, StoreRedis, StoreMongo:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	cfg.LockBackend = strings.ToLower(viper.GetString("LOCK_BACKEND"))
	switch cfg.LockBackend {
	case LockStore, LockRedis:
	default:
		return nil, fmt.Errorf("unknown LOCK_BACKEND %q", cfg.LockBackend)
	}

	cfg.PgsqlURL = viper.GetString("PGSQL_URL")
	if cfg.StoreBackend == StorePostgres && cfg.PgsqlURL == "" {
		return nil, fmt.Errorf("PGSQL_URL is required for the postgres store")
	}
	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")
	cfg.RedisNamespace = viper.GetString("REDIS_NAMESPACE")
	cfg.MongoURI = viper.GetString("MONGO_URI")
	if cfg.StoreBackend == StoreMongo && cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required for the mongo store")
	}
	cfg.MongoDatabase = viper.GetString("MONGO_DATABASE")
	cfg.MongoCollection = viper.GetString("MONGO_COLLECTION")
	if cfg.StoreBackend == StoreMemory && cfg.IsProduction {
		log.Println("Warning: the memory store loses every account on restart. THIS IS NOT FOR PRODUCTION.")
	}

	cfg.BreakerFailures = viper.GetUint32("BREAKER_FAILURES")
	cfg.BreakerOpenTimeout = durationOrDefault("BREAKER_OPEN_TIMEOUT", 30*time.Second)

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "acquire-ledger"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.AuthorisationSecret = viper.GetString("AUTHORISATION_SECRET")
	if cfg.AuthorisationSecret == "" {
		cfg.AuthorisationSecret = cfg.JWTSecret
		log.Println("Warning: AUTHORISATION_SECRET not set. Reusing JWT_SECRET.")
	}
	cfg.AuthorisationExpiry = durationOrDefault("AUTHORISATION_EXPIRY", 15*time.Minute)

	cfg.AccountLockTimeout = durationOrDefault("ACCOUNT_LOCK_TIMEOUT", 10*time.Second)
	cfg.AccountLockLease = durationOrDefault("ACCOUNT_LOCK_LEASE", 10*time.Second)
	cfg.LedgerLockTimeout = durationOrDefault("LEDGER_LOCK_TIMEOUT", 600*time.Second)
	cfg.LedgerLockLease = durationOrDefault("LEDGER_LOCK_LEASE", 600*time.Second)

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.RabbitMQURL = viper.GetString("RABBITMQ_URL")
	cfg.AlertExchange = viper.GetString("ALERT_EXCHANGE")

	return cfg, nil
}

// durationOrDefault parses a duration setting, falling back with a warning.
func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
