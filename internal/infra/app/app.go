package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/config"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/database"
	kafkainfra "github.com/Vinoddhakad18/go-architecture/internal/infra/kafka"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/logger"
	redisinfra "github.com/Vinoddhakad18/go-architecture/internal/infra/redis"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/security"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/telemetry"
	postgresrepo "github.com/Vinoddhakad18/go-architecture/internal/repository/postgres"
	redisrepo "github.com/Vinoddhakad18/go-architecture/internal/repository/redis"
	"github.com/Vinoddhakad18/go-architecture/internal/transport/http/middleware"
	"github.com/Vinoddhakad18/go-architecture/internal/transport/http/routes"
	"github.com/Vinoddhakad18/go-architecture/internal/usecase"
)

// Application owns the process-wide resources and the HTTP engine.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

// New wires every layer together from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	codec, err := security.NewTokenCodec(cfg.JWT, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	blacklistStore := redisrepo.NewStore(redisClient.Client(), cfg.Redis.BlacklistPrefix)
	fenceStore := redisrepo.NewStore(redisClient.Client(), cfg.Redis.FencePrefix)
	cacheStore := redisrepo.NewStore(redisClient.Client(), cfg.Redis.CachePrefix)

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
			producer = nil
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	ttls := domain.CacheTTLs{
		Short:  cfg.Cache.ShortTTL,
		Medium: cfg.Cache.MediumTTL,
		Long:   cfg.Cache.LongTTL,
	}

	ledger := usecase.NewRevocationLedger(codec, blacklistStore, fenceStore, cfg.JWT.RefreshTokenTTL, log)
	authService := usecase.NewAuthService(repos.Users, codec, ledger, eventPublisher, log)
	userService := usecase.NewUserService(repos.Users, cacheStore, ttls, eventPublisher, log)
	productService := usecase.NewProductService(repos.Products, cacheStore, ttls, log)

	cacheMetrics, err := telemetry.NewCacheMetrics(prometheus.DefaultRegisterer, "arch")
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init cache metrics: %w", err)
	}
	productService.WithCacheObserver(cacheMetrics)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: "arch"})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "arch:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:     authService,
			Users:    userService,
			Products: productService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
