package interfaces

import (
	"context"
	"time"

	instruments "invest-profitability/internal/domain/entity/instruments"
	marketdata "invest-profitability/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// MarketDataProvider is the external market-data and instrument directory.
type MarketDataProvider interface {
	ListShares(ctx context.Context) ([]instruments.ShareRecord, error)
	ListEtfs(ctx context.Context) ([]instruments.EtfRecord, error)
	ListCurrencies(ctx context.Context) ([]instruments.CurrencyRecord, error)

	// GetDailyCandles returns day candles with period start in [from, to).
	GetDailyCandles(ctx context.Context, figi string, from, to time.Time) ([]marketdata.Candle, error)
	GetLastPrices(ctx context.Context, figis []string) ([]marketdata.LastPrice, error)
}

// QuoteStore keeps historic daily opening prices, which never change once published.
type QuoteStore interface {
	GetOpen(ctx context.Context, figi string, day time.Time) (decimal.Decimal, bool, error)
	SaveOpen(ctx context.Context, figi string, day time.Time, price decimal.Decimal) error
	Close()
}
