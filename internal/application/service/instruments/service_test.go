package instruments

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "invest-profitability/internal/domain/entity/instruments"
	marketdata "invest-profitability/internal/domain/entity/marketdata"
	"invest-profitability/internal/domain/errs"
	"invest-profitability/internal/infrastructure/cache"
	mocks "invest-profitability/internal/testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *mocks.MockMarketDataProvider) {
	t.Helper()
	provider := mocks.NewMockMarketDataProvider()
	provider.SetShares(
		domain.ShareRecord{Ticker: "SBER", Figi: "BBG004730N88", Name: "Сбербанк России", Lot: 10, Currency: "rub"},
		domain.ShareRecord{Ticker: "AAPL", Figi: "BBG000B9XRY4", Name: "Apple", Lot: 1, Currency: "usd"},
	)
	provider.SetEtfs(
		domain.EtfRecord{Ticker: "FXUS", Figi: "BBG005HLSZ23", Name: "FinEx Акции американских компаний", Lot: 1, Currency: "rub"},
		domain.EtfRecord{Ticker: "BBG004730N88", Figi: "ETF-TICKER-CLASH", Name: "Clash", Lot: 1, Currency: "rub"},
	)
	provider.SetCurrencies(
		domain.CurrencyRecord{Ticker: "USD000UTSTOM", Figi: "BBG0013HGFT4", Currency: "usd"},
		domain.CurrencyRecord{Ticker: "EUR_RUB__TOM", Figi: "BBG0013HJJ31", Currency: "eur"},
	)
	logger, _ := test.NewNullLogger()
	return NewService(provider, "rub", logger), provider
}

func TestFindInstrumentByTickerFigiAndName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	got, ok, err := svc.FindInstrument(ctx, "SBER")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "BBG004730N88", got.Figi)
	assert.Equal(t, domain.ShareType, got.Type)

	got, ok, err = svc.FindInstrument(ctx, "BBG005HLSZ23")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "FXUS", got.Ticker)
	assert.Equal(t, domain.EtfType, got.Type)

	got, ok, err = svc.FindInstrument(ctx, "Apple")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AAPL", got.Ticker)
}

func TestFindInstrumentTickerBeatsFigi(t *testing.T) {
	svc, _ := newTestService(t)

	// "BBG004730N88" is SBER's FIGI and the ETF's ticker: the ticker match wins.
	got, ok, err := svc.FindInstrument(context.Background(), "BBG004730N88")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ETF-TICKER-CLASH", got.Figi)
}

func TestFindInstrumentNameMatchIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService(t)

	_, ok, err := svc.FindInstrument(context.Background(), "apple")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindInstrumentCachesByQuery(t *testing.T) {
	svc, provider := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.FindInstrument(ctx, "SBER")
		require.NoError(t, err)
		_, ok, err := svc.FindInstrument(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 2, provider.Calls("ListShares"))
	assert.Equal(t, 2, provider.Calls("ListEtfs"))

	svc.EvictAll()
	_, _, err := svc.FindInstrument(ctx, "SBER")
	require.NoError(t, err)
	assert.Equal(t, 3, provider.Calls("ListShares"))
}

func TestFindInstrumentPropagatesProviderError(t *testing.T) {
	svc, provider := newTestService(t)
	boom := errors.New("unavailable")
	provider.SetError(boom)

	_, _, err := svc.FindInstrument(context.Background(), "SBER")
	require.ErrorIs(t, err, boom)

	provider.SetError(nil)
	_, ok, err := svc.FindInstrument(context.Background(), "SBER")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLastPrice(t *testing.T) {
	svc, provider := newTestService(t)
	provider.SetLastPrice("BBG004730N88", marketdata.Quotation{Units: 250, Nano: 150_000_000})
	ctx := context.Background()

	got, err := svc.LastPrice(ctx, "BBG004730N88")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("250.15").Equal(got))

	_, err = svc.LastPrice(ctx, "BBG004730N88")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.Calls("GetLastPrices"))
}

func TestLastPriceMissingIsExternalDataFault(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.LastPrice(context.Background(), "UNKNOWN")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrExternalData))
}

func TestCurrencyFigi(t *testing.T) {
	svc, provider := newTestService(t)
	ctx := context.Background()

	figi, err := svc.CurrencyFigi(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, "BBG0013HGFT4", figi)

	figi, err = svc.CurrencyFigi(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "BBG0013HJJ31", figi)

	_, err = svc.CurrencyFigi(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.Calls("ListCurrencies"))

	_, err = svc.CurrencyFigi(ctx, "chf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestConvertToBase(t *testing.T) {
	svc, provider := newTestService(t)
	provider.SetLastPrice("BBG0013HGFT4", marketdata.Quotation{Units: 75, Nano: 500_000_000})
	ctx := context.Background()

	got, err := svc.ConvertToBase(ctx, decimal.NewFromInt(2), "usd")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(151).Equal(got))

	_, err = svc.ConvertToBase(ctx, decimal.NewFromInt(2), "RUB")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}

func TestConvertToBaseIsMonotonicInRate(t *testing.T) {
	ctx := context.Background()
	price := decimal.RequireFromString("10.5")

	convert := func(rate marketdata.Quotation) decimal.Decimal {
		svc, provider := newTestService(t)
		provider.SetLastPrice("BBG0013HGFT4", rate)
		got, err := svc.ConvertToBase(ctx, price, "usd")
		require.NoError(t, err)
		return got
	}

	low := convert(marketdata.Quotation{Units: 70})
	high := convert(marketdata.Quotation{Units: 140})
	assert.True(t, high.GreaterThan(low))
	assert.True(t, high.Equal(low.Mul(decimal.NewFromInt(2))))
}

func TestBasketValue(t *testing.T) {
	svc, provider := newTestService(t)
	provider.SetLastPrice("BBG004730N88", marketdata.Quotation{Units: 250})
	provider.SetLastPrice("BBG000B9XRY4", marketdata.Quotation{Units: 150})
	provider.SetLastPrice("BBG0013HGFT4", marketdata.Quotation{Units: 80})

	basket := domain.Basket{
		{Ticker: "SBER", Figi: "BBG004730N88", Currency: "rub"}: 3,
		{Ticker: "AAPL", Figi: "BBG000B9XRY4", Currency: "usd"}: 2,
	}
	got, err := svc.BasketValue(context.Background(), basket)
	require.NoError(t, err)
	// 250*3 + 150*80*2
	assert.True(t, decimal.NewFromInt(24750).Equal(got), "got %s", got)

	_, err = svc.BasketValue(context.Background(), domain.Basket{{Figi: "X"}: 0})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}

func TestRegisterEvictions(t *testing.T) {
	svc, _ := newTestService(t)
	logger, _ := test.NewNullLogger()
	scheduler := cache.NewScheduler(logger)

	require.NoError(t, svc.RegisterEvictions(scheduler, DefaultEvictionPeriods()))
	assert.Equal(t, 3, scheduler.Scheduled())

	bad := DefaultEvictionPeriods()
	bad.LastPrices = time.Millisecond
	require.Error(t, svc.RegisterEvictions(cache.NewScheduler(logger), bad))
}
