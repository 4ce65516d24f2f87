package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/iliyamo/login-service/internal/config"
	"github.com/iliyamo/login-service/internal/database"
	"github.com/iliyamo/login-service/internal/handler"
	"github.com/iliyamo/login-service/internal/logger"
	"github.com/iliyamo/login-service/internal/metrics"
	"github.com/iliyamo/login-service/internal/password"
	"github.com/iliyamo/login-service/internal/queue"
	"github.com/iliyamo/login-service/internal/repository"
	"github.com/iliyamo/login-service/internal/router"
	"github.com/iliyamo/login-service/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New("login-service", cfg.Env, cfg.LogLevel, cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if cfg.Secrets.SecretID != "" {
		provider, err := config.NewAWSSecretsProvider(ctx, cfg.Secrets.Region)
		if err != nil {
			logg.Fatal("secrets provider", zap.Error(err))
		}
		if err := config.ApplyDBSecret(ctx, provider, &cfg); err != nil {
			logg.Fatal("resolve db secret", zap.Error(err))
		}
	}

	db, err := database.Open(cfg.DB)
	if db == nil {
		logg.Fatal("open credential store", zap.Error(err))
	}
	defer db.Close()
	if err != nil {
		// Keep serving; lookups report StoreUnavailable until the store is back.
		logg.Warn("credential store not reachable at startup", zap.Error(err),
			zap.String("host", cfg.DB.Host), zap.String("database", cfg.DB.Name))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	loginMetrics := metrics.NewLogin(reg)

	var events service.EventPublisher
	if cfg.Audit.Enabled() {
		pub := queue.NewPublisher(cfg.Audit.AMQPURL, cfg.Audit.Queue, cfg.Audit.Buffer, logg)
		go pub.Run(ctx)
		events = pub
		if cfg.Audit.ConsumerEnabled {
			c := &queue.Consumer{URL: cfg.Audit.AMQPURL, Queue: cfg.Audit.Queue, Dir: cfg.Audit.LogDir, Log: logg}
			go c.Run(ctx)
		}
	}

	users := repository.NewUserRepo(db)
	authSvc, err := service.NewAuthService(users, password.NewBcrypt(cfg.BcryptCost), logg, loginMetrics, events)
	if err != nil {
		logg.Fatal("auth service", zap.Error(err))
	}

	deps := router.Deps{
		Auth:           handler.NewAuthHandler(authSvc, cfg.RequestTimeout),
		Store:          users,
		Log:            logg,
		LoginPath:      cfg.LoginPath,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.MetricsEnabled {
		deps.Metrics = reg
	}
	e := router.New(deps)
	e.Debug = cfg.Debug

	go func() {
		logg.Info("listening", zap.String("addr", cfg.Addr()), zap.String("login_path", cfg.LoginPath))
		if err := e.Start(cfg.Addr()); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown", zap.Error(err))
	}
}
