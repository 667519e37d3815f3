package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/config"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/database"
	kafkainfra "github.com/whiteflags26/turfmania-sub000/internal/infra/kafka"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/logger"
	redisinfra "github.com/whiteflags26/turfmania-sub000/internal/infra/redis"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/security"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/telemetry"
	postgresrepo "github.com/whiteflags26/turfmania-sub000/internal/repository/postgres"
	redisrepo "github.com/whiteflags26/turfmania-sub000/internal/repository/redis"
	"github.com/whiteflags26/turfmania-sub000/internal/transport/http/middleware"
	"github.com/whiteflags26/turfmania-sub000/internal/transport/http/routes"
	"github.com/whiteflags26/turfmania-sub000/internal/usecase"
)

type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	tracing *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracing *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracing, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	verifier, err := security.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		return nil, fmt.Errorf("init token verifier: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	decisionCache := redisrepo.NewDecisionCache(redisClient.Client(), cfg.Redis.DecisionPrefix, cfg.Redis.DecisionTTL)

	rateLimitTTL := cfg.Redis.RateLimitTTL
	if rateLimitTTL <= 0 {
		rateLimitTTL = 2 * cfg.RateLimit.WindowDuration
	}
	rateLimitStore := redisrepo.NewRateLimitStore(redisClient.Client(), cfg.Redis.RateLimitPrefix, rateLimitTTL)
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	repos := postgresrepo.NewRepositories(pool)
	txManager := postgresrepo.NewTxManager(pool, repos)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	permissionService := usecase.NewPermissionService(repos.Permissions)
	authzService := usecase.NewAuthzService(repos.Assignments, repos.Permissions, decisionCache, log)
	roleService := usecase.NewRoleService(repos.Roles, repos.Permissions, repos.Organizations, repos.Events,
		repos.Assignments, txManager, eventPublisher, decisionCache, log)
	assignmentService := usecase.NewAssignmentService(repos.Users, repos.Roles, repos.Organizations, repos.Events,
		repos.Assignments, eventPublisher, decisionCache, log)
	ownerService := usecase.NewOwnerService(repos.Users, txManager, eventPublisher, decisionCache, log)
	organizationService := usecase.NewOrganizationService(repos.Organizations, repos.Users, txManager, ownerService, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:       cfg,
		Logger:       log,
		RateLimiter:  rateLimiter,
		Verifier:     verifier,
		AuthzMetrics: metrics,
		HTTPMetrics:  httpMetrics,
		Database:     pool,
		Cache:        redisClient,
		Services: routes.ServiceSet{
			Permissions:   permissionService,
			Roles:         roleService,
			Assignments:   assignmentService,
			Authz:         authzService,
			Organizations: organizationService,
			Owner:         ownerService,
		},
	})

	return &Application{
		cfg:     cfg,
		engine:  engine,
		logger:  log,
		pool:    pool,
		redis:   redisClient,
		tracing: tracing,
	}, nil
}

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
		if a.tracing != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = a.tracing.Shutdown(shutdownCtx)
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

	a.logger.Info("starting access API",
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
