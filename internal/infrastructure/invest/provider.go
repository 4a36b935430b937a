package invest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	instruments "invest-profitability/internal/domain/entity/instruments"
	marketdata "invest-profitability/internal/domain/entity/marketdata"
	"invest-profitability/internal/domain/interfaces"

	investgo "github.com/russianinvestments/invest-api-go-sdk/investgo"
	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint  = "https://invest-public-api.tinkoff.ru:443"
	DefaultAppName   = "invest-profitability"
	DefaultRateLimit = 10 // requests per second
)

const listStatus = pb.InstrumentStatus_INSTRUMENT_STATUS_BASE

// a one-day window holds at most one day candle
const dayCandleLimit int32 = 1

// Config carries T-Invest API connection settings.
type Config struct {
	Token         string
	Endpoint      string
	AppName       string
	SkipTLSVerify bool
	// RateLimit caps outgoing requests per second; zero means DefaultRateLimit.
	RateLimit int
}

// Provider serves instrument listings, daily candles and last prices from the T-Invest API.
type Provider struct {
	client      *investgo.Client
	instruments *investgo.InstrumentsServiceClient
	marketdata  *investgo.MarketDataServiceClient
	limiter     *rate.Limiter
	logger      *logrus.Entry
}

var _ interfaces.MarketDataProvider = (*Provider)(nil)

func NewProvider(ctx context.Context, cfg Config, logger *logrus.Logger) (*Provider, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("invest api token is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	client, err := investgo.NewClient(ctx, investgo.Config{
		EndPoint:           cfg.Endpoint,
		Token:              cfg.Token,
		AppName:            cfg.AppName,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create invest api client: %w", err)
	}

	return &Provider{
		client:      client,
		instruments: client.NewInstrumentsServiceClient(),
		marketdata:  client.NewMarketDataServiceClient(),
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		logger:      logger.WithField("component", "invest_provider"),
	}, nil
}

func (p *Provider) Close() {
	if p == nil || p.client == nil {
		return
	}
	if err := p.client.Stop(); err != nil {
		p.logger.WithError(err).Error("stop invest api client")
	}
}

func (p *Provider) ListShares(ctx context.Context) ([]instruments.ShareRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := p.instruments.Shares(listStatus)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	records := make([]instruments.ShareRecord, 0, len(resp.GetInstruments()))
	for _, share := range resp.GetInstruments() {
		if share == nil {
			continue
		}
		records = append(records, convertShare(share))
	}
	return records, nil
}

func (p *Provider) ListEtfs(ctx context.Context) ([]instruments.EtfRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := p.instruments.Etfs(listStatus)
	if err != nil {
		return nil, fmt.Errorf("list etfs: %w", err)
	}
	records := make([]instruments.EtfRecord, 0, len(resp.GetInstruments()))
	for _, etf := range resp.GetInstruments() {
		if etf == nil {
			continue
		}
		records = append(records, convertEtf(etf))
	}
	return records, nil
}

func (p *Provider) ListCurrencies(ctx context.Context) ([]instruments.CurrencyRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := p.instruments.Currencies(listStatus)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	records := make([]instruments.CurrencyRecord, 0, len(resp.GetInstruments()))
	for _, currency := range resp.GetInstruments() {
		if currency == nil {
			continue
		}
		records = append(records, convertCurrency(currency))
	}
	return records, nil
}

func (p *Provider) GetDailyCandles(ctx context.Context, figi string, from, to time.Time) ([]marketdata.Candle, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := p.marketdata.GetCandles(figi, pb.CandleInterval_CANDLE_INTERVAL_DAY, from, to,
		pb.GetCandlesRequest_CANDLE_SOURCE_UNSPECIFIED, dayCandleLimit)
	if err != nil {
		return nil, fmt.Errorf("get candles for %s: %w", figi, err)
	}
	candles := make([]marketdata.Candle, 0, len(resp.GetCandles()))
	for _, candle := range resp.GetCandles() {
		if candle == nil {
			continue
		}
		candles = append(candles, convertCandle(figi, candle))
	}
	return candles, nil
}

func (p *Provider) GetLastPrices(ctx context.Context, figis []string) ([]marketdata.LastPrice, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := p.marketdata.GetLastPrices(figis)
	if err != nil {
		return nil, fmt.Errorf("get last prices: %w", err)
	}
	prices := make([]marketdata.LastPrice, 0, len(resp.GetLastPrices()))
	for _, price := range resp.GetLastPrices() {
		if price == nil || price.GetPrice() == nil {
			p.logger.Warn("skip last price without quotation")
			continue
		}
		prices = append(prices, convertLastPrice(price))
	}
	return prices, nil
}
