package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/hostel-saas/internal/di"
	"github.com/prohmpiriya/hostel-saas/internal/handler"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/migrations"
	"github.com/prohmpiriya/hostel-saas/pkg/config"
	"github.com/prohmpiriya/hostel-saas/pkg/database"
	"github.com/prohmpiriya/hostel-saas/pkg/kafka"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
	pkgredis "github.com/prohmpiriya/hostel-saas/pkg/redis"
	"github.com/prohmpiriya/hostel-saas/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hostel-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logger
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.ServiceName = cfg.App.Name
	logCfg.Development = cfg.IsDevelopment()
	logCfg.OutputPath = cfg.Log.OutputPath
	logCfg.OTLPEnabled = cfg.Log.OTLPEnabled
	log, err := logger.Init(logCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Close()

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tel, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}

	// Storage
	var (
		db    *database.PostgresDB
		store *repository.Store
		sink  middleware.AuditSink = middleware.LogAuditSink{Log: log.Named("audit")}
	)
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("using in-memory storage; data is lost on restart")
		store = repository.NewMemoryStore().Store()
	default:
		db, err = database.NewPostgres(ctx, &database.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MinConns:        int32(cfg.Database.MaxIdleConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
			MaxRetries:      cfg.Database.MaxRetries,
			RetryInterval:   cfg.Database.RetryInterval,
		})
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			migs, err := database.LoadMigrations(migrations.FS, ".")
			if err != nil {
				return err
			}
			applied, err := database.Migrate(ctx, db.Pool(), migs)
			if err != nil {
				return err
			}
			log.Info("database migrated", zap.Strings("applied", applied))
		}

		store = repository.NewPostgresStore(db.Pool())
		sink = repository.NewPostgresAuditRepository(db.Pool())
	}

	// Redis
	var rdb *pkgredis.Client
	if cfg.Redis.Enabled {
		rdb, err = pkgredis.NewRedis(ctx, &pkgredis.Config{
			Addr:          cfg.Redis.Addr(),
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: time.Second,
			Tracing:       cfg.OTel.Enabled,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	// Kafka
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(ctx, kafka.ProducerConfig{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.Kafka.ClientID,
			TopicPrefix:   cfg.Kafka.TopicPrefix,
			ProduceLinger: 5 * time.Millisecond,
			PingTimeout:   5 * time.Second,
		})
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := producer.Close(closeCtx); err != nil {
				log.Warn("kafka flush on shutdown failed", zap.Error(err))
			}
		}()
	}

	container := di.NewContainer(&di.ContainerConfig{
		DB:       db,
		Redis:    rdb,
		Producer: producer,
		Store:    store,
		Log:      log,
		Auth: service.AuthConfig{
			JWTSecret: cfg.JWT.Secret,
			Issuer:    cfg.JWT.Issuer,
			TokenTTL:  cfg.JWT.AccessTokenTTL,
		},
		StatsCacheTTL: cfg.Stats.CacheTTL,
		Version:       cfg.App.Version,
	})

	if cfg.SuperAdmin.Enabled() {
		created, err := container.AuthService.EnsureSuperAdmin(ctx, cfg.SuperAdmin.Name, cfg.SuperAdmin.Email, cfg.SuperAdmin.Password)
		if err != nil {
			return fmt.Errorf("failed to seed super admin: %w", err)
		}
		if created {
			log.Info("super admin created", zap.String("email", cfg.SuperAdmin.Email))
		}
	}

	// Router
	routerCfg := handler.RouterConfig{
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Metrics:     middleware.NewHTTPMetrics(cfg.Metrics.Prefix),
		Log:         log,
	}
	if cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		rl.Limit = cfg.RateLimit.Limit
		rl.Window = cfg.RateLimit.Window
		rl.RedisClient = rdb
		routerCfg.RateLimit = &rl
	}
	var audit *middleware.AuditLogger
	if cfg.Audit.Enabled {
		audit = middleware.NewAuditLogger(middleware.DefaultAuditConfig(sink), log)
		routerCfg.Audit = audit
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(container.Handlers(), routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("hostel api listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if audit != nil {
		if err := audit.Close(); err != nil {
			log.Warn("audit flush failed", zap.Error(err))
		}
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("telemetry shutdown failed", zap.Error(err))
	}

	log.Info("hostel api stopped")
	return nil
}
