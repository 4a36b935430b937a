// Package testing provides an in-memory market-data provider for tests.
package testing

import (
	"context"
	"sync"
	"time"

	instruments "invest-profitability/internal/domain/entity/instruments"
	marketdata "invest-profitability/internal/domain/entity/marketdata"
	"invest-profitability/internal/domain/interfaces"
)

const dayLayout = "2006-01-02"

// CandleCall records one GetDailyCandles request.
type CandleCall struct {
	Figi string
	From time.Time
	To   time.Time
}

// MockMarketDataProvider is a concurrency-safe MarketDataProvider backed by maps.
type MockMarketDataProvider struct {
	mu sync.Mutex

	shares     []instruments.ShareRecord
	etfs       []instruments.EtfRecord
	currencies []instruments.CurrencyRecord

	opens      map[string]map[string]marketdata.Quotation
	constant   map[string]marketdata.Quotation
	closed     map[string]map[string]bool
	lastPrices map[string]marketdata.Quotation

	err         error
	calls       map[string]int
	candleCalls []CandleCall
}

var _ interfaces.MarketDataProvider = (*MockMarketDataProvider)(nil)

func NewMockMarketDataProvider() *MockMarketDataProvider {
	return &MockMarketDataProvider{
		opens:      make(map[string]map[string]marketdata.Quotation),
		constant:   make(map[string]marketdata.Quotation),
		closed:     make(map[string]map[string]bool),
		lastPrices: make(map[string]marketdata.Quotation),
		calls:      make(map[string]int),
	}
}

func (m *MockMarketDataProvider) SetShares(shares ...instruments.ShareRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shares = shares
}

func (m *MockMarketDataProvider) SetEtfs(etfs ...instruments.EtfRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etfs = etfs
}

func (m *MockMarketDataProvider) SetCurrencies(currencies ...instruments.CurrencyRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currencies = currencies
}

// SetOpen publishes a day candle for figi on the calendar day of day.
func (m *MockMarketDataProvider) SetOpen(figi string, day time.Time, open marketdata.Quotation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opens[figi] == nil {
		m.opens[figi] = make(map[string]marketdata.Quotation)
	}
	m.opens[figi][day.UTC().Format(dayLayout)] = open
}

// SetConstantOpen makes figi trade every day at open unless the day is closed.
func (m *MockMarketDataProvider) SetConstantOpen(figi string, open marketdata.Quotation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constant[figi] = open
}

// SetClosed marks a day without trading for figi.
func (m *MockMarketDataProvider) SetClosed(figi string, day time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed[figi] == nil {
		m.closed[figi] = make(map[string]bool)
	}
	m.closed[figi][day.UTC().Format(dayLayout)] = true
}

func (m *MockMarketDataProvider) SetLastPrice(figi string, price marketdata.Quotation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPrices[figi] = price
}

// SetError makes every call fail with err; nil restores normal behavior.
func (m *MockMarketDataProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times method was invoked.
func (m *MockMarketDataProvider) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockMarketDataProvider) CandleCalls() []CandleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CandleCall, len(m.candleCalls))
	copy(out, m.candleCalls)
	return out
}

func (m *MockMarketDataProvider) ListShares(ctx context.Context) ([]instruments.ShareRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["ListShares"]++
	if m.err != nil {
		return nil, m.err
	}
	return append([]instruments.ShareRecord(nil), m.shares...), nil
}

func (m *MockMarketDataProvider) ListEtfs(ctx context.Context) ([]instruments.EtfRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["ListEtfs"]++
	if m.err != nil {
		return nil, m.err
	}
	return append([]instruments.EtfRecord(nil), m.etfs...), nil
}

func (m *MockMarketDataProvider) ListCurrencies(ctx context.Context) ([]instruments.CurrencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["ListCurrencies"]++
	if m.err != nil {
		return nil, m.err
	}
	return append([]instruments.CurrencyRecord(nil), m.currencies...), nil
}

func (m *MockMarketDataProvider) GetDailyCandles(ctx context.Context, figi string, from, to time.Time) ([]marketdata.Candle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetDailyCandles"]++
	m.candleCalls = append(m.candleCalls, CandleCall{Figi: figi, From: from, To: to})
	if m.err != nil {
		return nil, m.err
	}

	var candles []marketdata.Candle
	for day := from.UTC(); day.Before(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		if m.closed[figi][key] {
			continue
		}
		open, ok := m.opens[figi][key]
		if !ok {
			open, ok = m.constant[figi]
		}
		if ok {
			candles = append(candles, marketdata.Candle{Figi: figi, Time: day, Open: open, Close: open})
		}
	}
	return candles, nil
}

func (m *MockMarketDataProvider) GetLastPrices(ctx context.Context, figis []string) ([]marketdata.LastPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetLastPrices"]++
	if m.err != nil {
		return nil, m.err
	}
	var prices []marketdata.LastPrice
	for _, figi := range figis {
		if price, ok := m.lastPrices[figi]; ok {
			prices = append(prices, marketdata.LastPrice{Figi: figi, Price: price})
		}
	}
	return prices, nil
}
