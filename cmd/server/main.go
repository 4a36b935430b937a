package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appinstruments "invest-profitability/internal/application/service/instruments"
	appprofitability "invest-profitability/internal/application/service/profitability"
	"invest-profitability/internal/config"
	"invest-profitability/internal/domain/interfaces"
	"invest-profitability/internal/infrastructure/cache"
	"invest-profitability/internal/infrastructure/invest"
	inframarketdata "invest-profitability/internal/infrastructure/marketdata"
	infrahttp "invest-profitability/internal/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	provider, err := invest.NewProvider(ctx, invest.Config{
		Token:         cfg.Invest.Token,
		Endpoint:      cfg.Invest.Endpoint,
		AppName:       cfg.Invest.AppName,
		SkipTLSVerify: cfg.Invest.InsecureSkipVerify,
		RateLimit:     cfg.Invest.RateLimit,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to init invest api client: %v", err)
	}
	defer provider.Close()

	var quoteStore interfaces.QuoteStore
	if cfg.Postgres.DSN != "" {
		repo, err := inframarketdata.NewRepository(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatalf("failed to init quote store: %v", err)
		}
		defer repo.Close()
		quoteStore = repo
	} else {
		logger.Info("DATABASE_DSN not set, historic quote store disabled")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	instrumentService := appinstruments.NewService(provider, cfg.History.BaseCurrency, logger)

	scheduler := cache.NewScheduler(logger)
	if err := instrumentService.RegisterEvictions(scheduler, appinstruments.EvictionPeriods{
		Instruments:  cfg.Cache.InstrumentsEvery,
		LastPrices:   cfg.Cache.LastPricesEvery,
		CurrencyFigi: cfg.Cache.CurrencyEvery,
	}); err != nil {
		logger.Fatalf("failed to schedule cache evictions: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	profitabilityService := appprofitability.NewService(provider, instrumentService, quoteStore, appprofitability.Config{
		BaseCurrency:     cfg.History.BaseCurrency,
		MaxLookaheadDays: cfg.History.MaxLookaheadDays,
		Workers:          cfg.History.Workers,
	}, logger)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	handler := infrahttp.NewHandler(instrumentService, profitabilityService, redisClient, cacheTTL, logger)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
