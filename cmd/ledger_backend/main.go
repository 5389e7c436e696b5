package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/adapters/alerts"
	"github.com/SscSPs/acquire_ledger/internal/adapters/identity/jwtauth"
	"github.com/SscSPs/acquire_ledger/internal/adapters/lock/redislock"
	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/breaker"
	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/memory"
	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/mongostore"
	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/pgsql"
	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/redisstore"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/core/services"
	"github.com/SscSPs/acquire_ledger/internal/handlers"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/SscSPs/acquire_ledger/internal/mutex"
	"github.com/SscSPs/acquire_ledger/internal/platform/config"
	"github.com/SscSPs/acquire_ledger/internal/repositories/objstore"
	"github.com/SscSPs/acquire_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for the given principal and exit")
	flag.Parse()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *issueToken != "" {
		token, err := jwtauth.IssuePrincipalToken(*issueToken, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiryDuration)
		if err != nil {
			logger.Error("Failed to issue token", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	ctx := context.Background()
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()
	fail := func(msg string, err error) {
		logger.Error(msg, slog.String("error", err.Error()))
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.StoreBackend == config.StoreRedis || cfg.LockBackend == config.LockRedis {
		redisClient, err = redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			fail("Failed to connect to redis", err)
		}
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		logger.Info("Connected to redis", slog.String("addr", cfg.RedisAddr))
	}

	store, err := newObjectStore(ctx, cfg, redisClient, logger, &cleanups)
	if err != nil {
		fail("Failed to initialise object store", err)
	}

	var locker portsrepo.Locker
	switch cfg.LockBackend {
	case config.LockRedis:
		if locker, err = redislock.New(redisClient); err != nil {
			fail("Failed to initialise redis locker", err)
		}
	default:
		locker = mutex.NewLocker(store)
	}

	auth, err := jwtauth.New(cfg.AuthorisationSecret, cfg.JWTIssuer, cfg.AuthorisationExpiry)
	if err != nil {
		fail("Failed to initialise authorisation service", err)
	}

	alertPublisher := alerts.Fanout{alerts.LogPublisher{}}
	if cfg.RabbitMQURL != "" {
		conn, ch, err := alerts.DialRabbitMQ(cfg.RabbitMQURL, cfg.AlertExchange)
		if err != nil {
			fail("Failed to connect to RabbitMQ", err)
		}
		publisher, err := alerts.NewRabbitMQPublisher(ch, cfg.AlertExchange, "ledger.unbalanced")
		if err != nil {
			fail("Failed to create alert publisher", err)
		}
		cleanups = append(cleanups, func() {
			_ = publisher.Close()
			_ = conn.Close()
		})
		alertPublisher = append(alertPublisher, publisher)
		logger.Info("Publishing ledger alerts to RabbitMQ", slog.String("exchange", cfg.AlertExchange))
	}

	repos := objstore.NewRepositoryProvider(store, locker)
	container := services.NewServiceContainer(cfg, repos, auth, alertPublisher)
	if err := run(cfg, container, logger); err != nil {
		fail("Server failed to run", err)
	}
}

// newObjectStore connects the configured backend. Remote backends are
// wrapped in a circuit breaker.
func newObjectStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger, cleanups *[]func()) (portsrepo.ObjectStore, error) {
	settings := breaker.Settings{
		Name:                cfg.StoreBackend,
		ConsecutiveFailures: cfg.BreakerFailures,
		OpenTimeout:         cfg.BreakerOpenTimeout,
	}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		if err := pgsql.Migrate(cfg.PgsqlURL, logger); err != nil {
			return nil, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.PgsqlURL, 0, logger)
		if err != nil {
			return nil, err
		}
		*cleanups = append(*cleanups, func() { database.ClosePgxPool(pool, logger) })
		return breaker.New(pgsql.NewObjectStore(pool), settings, logger), nil

	case config.StoreRedis:
		return breaker.New(redisstore.New(redisClient, cfg.RedisNamespace), settings, logger), nil

	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongostore.Connect(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		*cleanups = append(*cleanups, func() { _ = client.Disconnect(context.Background()) })
		collection := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		logger.Info("Connected to mongo object store", slog.String("database", cfg.MongoDatabase), slog.String("collection", cfg.MongoCollection))
		return breaker.New(mongostore.New(collection), settings, logger), nil
	}

	logger.Warn("Using the in-memory object store")
	return memory.New(), nil
}

func run(cfg *config.Config, container *portssvc.ServiceContainer, logger *slog.Logger) error {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}

	handlers.RegisterRoutes(r, cfg, container, limiterInstance)

	logger.Info("Server starting", slog.String("port", cfg.Port),
		slog.String("store", cfg.StoreBackend), slog.String("lock", cfg.LockBackend))
	return r.Run(":" + cfg.Port)
}
