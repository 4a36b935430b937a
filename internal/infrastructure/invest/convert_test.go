package invest

import (
	"context"
	"errors"
	"testing"
	"time"

	instruments "invest-profitability/internal/domain/entity/instruments"
	marketdata "invest-profitability/internal/domain/entity/marketdata"

	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestConvertShareAndEtf(t *testing.T) {
	share := convertShare(&pb.Share{
		Figi: "BBG004730N88", Ticker: "SBER", ClassCode: "TQBR", Lot: 10,
		Currency: "rub", Name: "Сбербанк России", Sector: "financial",
	})
	assert.Equal(t, instruments.ShareRecord{
		Ticker: "SBER", Figi: "BBG004730N88", ClassCode: "TQBR", Name: "Сбербанк России",
		Lot: 10, Currency: "rub", Sector: "financial",
	}, share)

	etf := convertEtf(&pb.Etf{Figi: "BBG005HLSZ23", Ticker: "FXUS", Lot: 1, Currency: "usd", FocusType: "equity"})
	assert.Equal(t, "FXUS", etf.Ticker)
	assert.Equal(t, "equity", etf.FocusType)
}

func TestConvertCurrency(t *testing.T) {
	got := convertCurrency(&pb.Currency{Figi: "BBG0013HGFT4", Ticker: "USD000UTSTOM", Name: "Доллар США", Currency: "usd"})
	assert.Equal(t, instruments.CurrencyRecord{Ticker: "USD000UTSTOM", Figi: "BBG0013HGFT4", Name: "Доллар США", Currency: "usd"}, got)
}

func TestConvertCandle(t *testing.T) {
	at := time.Date(2021, time.March, 1, 7, 0, 0, 0, time.UTC)
	got := convertCandle("F1", &pb.HistoricCandle{
		Open:  &pb.Quotation{Units: 100, Nano: 500_000_000},
		Close: &pb.Quotation{Units: 101},
		Time:  timestamppb.New(at),
	})
	assert.Equal(t, "F1", got.Figi)
	assert.Equal(t, at, got.Time)
	assert.Equal(t, marketdata.Quotation{Units: 100, Nano: 500_000_000}, got.Open)
	assert.Equal(t, marketdata.Quotation{}, got.High)
}

func TestConvertLastPrice(t *testing.T) {
	got := convertLastPrice(&pb.LastPrice{Figi: "F1", Price: &pb.Quotation{Units: 73, Nano: 250_000_000}})
	assert.Equal(t, "F1", got.Figi)
	assert.Equal(t, marketdata.Quotation{Units: 73, Nano: 250_000_000}, got.Price)
	assert.True(t, got.Time.IsZero())
}

func TestNewProviderRequiresToken(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Token: "  "}, logrus.New())
	require.Error(t, err)
}

func TestProviderStopsOnCancelledContext(t *testing.T) {
	p := &Provider{
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		logger:  logrus.NewEntry(logrus.New()),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetDailyCandles(ctx, "F1", time.Now(), time.Now().Add(24*time.Hour))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
