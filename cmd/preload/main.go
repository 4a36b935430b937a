// Command preload fills the historic quote store with the daily opens a
// profitability run needs, so later API requests are served from Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	appinstruments "invest-profitability/internal/application/service/instruments"
	appprofitability "invest-profitability/internal/application/service/profitability"
	"invest-profitability/internal/config"
	domain "invest-profitability/internal/domain/entity/instruments"
	"invest-profitability/internal/infrastructure/invest"
	inframarketdata "invest-profitability/internal/infrastructure/marketdata"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultPreloadYears = 1

type preloadConfig struct {
	Queries []string
	Years   int
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	loadDotenv(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		logger.Fatal("DATABASE_DSN is required")
	}
	preload, err := loadPreloadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	repo, err := inframarketdata.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer repo.Close()

	provider, err := invest.NewProvider(ctx, invest.Config{
		Token:         cfg.Invest.Token,
		Endpoint:      cfg.Invest.Endpoint,
		AppName:       cfg.Invest.AppName,
		SkipTLSVerify: cfg.Invest.InsecureSkipVerify,
		RateLimit:     cfg.Invest.RateLimit,
	}, logger)
	if err != nil {
		logger.Fatalf("create invest api client: %v", err)
	}
	defer provider.Close()

	instruments := appinstruments.NewService(provider, cfg.History.BaseCurrency, logger)
	engine := appprofitability.NewService(provider, instruments, repo, appprofitability.Config{
		BaseCurrency:     cfg.History.BaseCurrency,
		MaxLookaheadDays: cfg.History.MaxLookaheadDays,
		Workers:          cfg.History.Workers,
	}, logger)

	for _, query := range preload.Queries {
		inst, found, err := instruments.FindInstrument(ctx, query)
		if err != nil {
			logger.Fatalf("find %q: %v", query, err)
		}
		if !found {
			logger.WithField("query", query).Warn("skip unknown instrument")
			continue
		}

		summary, err := engine.Calculate(ctx, domain.Basket{inst: 1}, preload.Years)
		if err != nil {
			logger.WithError(err).WithField("instrument", inst.String()).Error("preload failed")
			continue
		}
		logger.WithFields(logrus.Fields{
			"instrument": inst.String(),
			"purchases":  summary.Purchases,
			"gain":       summary.GainPercent.StringFixed(2),
		}).Info("daily opens stored")
	}
	logger.Info("preload finished")
}

func loadDotenv(logger *logrus.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.WithError(err).Debug("no .env file loaded")
	}
}

func loadPreloadConfig() (*preloadConfig, error) {
	var queries []string
	for _, query := range strings.Split(os.Getenv("PRELOAD_QUERIES"), ",") {
		if query = strings.TrimSpace(query); query != "" {
			queries = append(queries, query)
		}
	}
	if len(queries) == 0 {
		return nil, errors.New("PRELOAD_QUERIES is required")
	}

	years := defaultPreloadYears
	if value := strings.TrimSpace(os.Getenv("PRELOAD_YEARS")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("PRELOAD_YEARS must be a positive integer, got %q", value)
		}
		years = parsed
	}

	return &preloadConfig{Queries: queries, Years: years}, nil
}
