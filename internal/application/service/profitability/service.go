package profitability

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "invest-profitability/internal/domain/entity/instruments"
	summary "invest-profitability/internal/domain/entity/profitability"
	"invest-profitability/internal/domain/errs"
	interfaces "invest-profitability/internal/domain/interfaces"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxLookaheadDays = 10
	DefaultWorkers          = 4
	defaultBaseCurrency     = "rub"
)

var hundred = decimal.NewFromInt(100)

// CurrencyResolver maps a currency code to the FIGI of its tradable instrument.
type CurrencyResolver interface {
	CurrencyFigi(ctx context.Context, currency string) (string, error)
}

type Config struct {
	BaseCurrency string
	// MaxLookaheadDays bounds how many days after a non-trading day are tried.
	MaxLookaheadDays int
	// Workers bounds how many purchase dates are valued at once.
	Workers int
}

// Service reconstructs historic basket values and aggregates them into a Summary.
type Service struct {
	provider   interfaces.MarketDataProvider
	currencies CurrencyResolver
	store      interfaces.QuoteStore
	cfg        Config
	logger     *logrus.Entry
}

// NewService builds the engine. store may be nil.
func NewService(provider interfaces.MarketDataProvider, currencies CurrencyResolver, store interfaces.QuoteStore, cfg Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = defaultBaseCurrency
	}
	cfg.BaseCurrency = strings.ToLower(cfg.BaseCurrency)
	if cfg.MaxLookaheadDays <= 0 {
		cfg.MaxLookaheadDays = DefaultMaxLookaheadDays
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Service{
		provider:   provider,
		currencies: currencies,
		store:      store,
		cfg:        cfg,
		logger:     logger.WithField("component", "profitability_service"),
	}
}

// Calculate simulates buying basket on every purchase date of the last years
// and summarizes the resulting value series.
func (s *Service) Calculate(ctx context.Context, basket domain.Basket, years int) (summary.Summary, error) {
	dates, err := PurchaseDates(years)
	if err != nil {
		return summary.Summary{}, err
	}
	if err := basket.Validate(); err != nil {
		return summary.Summary{}, err
	}

	start := time.Now()
	values := make([]decimal.Decimal, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			value, err := s.BasketValueAt(gctx, basket, date)
			if err != nil {
				return fmt.Errorf("value basket on %s: %w", date.Format(time.DateOnly), err)
			}
			values[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary.Summary{}, err
	}

	result := Summarize(values)
	s.logger.WithFields(logrus.Fields{
		"years":       years,
		"instruments": len(basket),
		"purchases":   result.Purchases,
		"took_ms":     time.Since(start).Milliseconds(),
	}).Info("historic profitability calculated")
	return result, nil
}

// Summarize aggregates a chronological value series. A zero first value
// yields GainPercent 0 with GainDefined false.
func Summarize(values []decimal.Decimal) summary.Summary {
	if len(values) == 0 {
		return summary.Summary{}
	}
	initial := values[0]
	final := values[len(values)-1]

	total := decimal.Zero
	for _, value := range values {
		total = total.Add(value)
	}

	result := summary.Summary{
		TotalReplenishments: total,
		TotalCollected:      final.Mul(decimal.NewFromInt(int64(len(values)))),
		Purchases:           len(values),
	}
	if !initial.IsZero() {
		result.GainPercent = final.Sub(initial).Div(initial.Abs()).Mul(hundred)
		result.GainDefined = true
	}
	return result
}

// BasketValueAt is the base-currency value of basket on date.
func (s *Service) BasketValueAt(ctx context.Context, basket domain.Basket, date time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, instrument := range basket.Instruments() {
		price, err := s.HistoricPrice(ctx, instrument, date)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(basket[instrument]))))
	}
	return total, nil
}

// HistoricPrice is the base-currency opening price of instrument on date,
// converted at the same day's currency opening price when needed.
func (s *Service) HistoricPrice(ctx context.Context, instrument domain.Instrument, date time.Time) (decimal.Decimal, error) {
	price, err := s.HistoricQuotation(ctx, instrument.Figi, date)
	if err != nil {
		return decimal.Zero, err
	}
	if instrument.InBaseCurrency(s.cfg.BaseCurrency) {
		return price, nil
	}
	currencyFigi, err := s.currencies.CurrencyFigi(ctx, instrument.Currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolve currency of %s: %w", instrument, err)
	}
	rate, err := s.HistoricQuotation(ctx, currencyFigi, date)
	if err != nil {
		return decimal.Zero, err
	}
	return price.Mul(rate), nil
}

// HistoricQuotation returns the opening price of the first trading day at or
// after date, trying at most MaxLookaheadDays following days. With a quote
// store attached the price is also kept under date, so a non-trading purchase
// date is answered from the store next time.
func (s *Service) HistoricQuotation(ctx context.Context, figi string, date time.Time) (decimal.Decimal, error) {
	for offset := 0; offset <= s.cfg.MaxLookaheadDays; offset++ {
		day := date.AddDate(0, 0, offset)

		if price, ok := s.storedOpen(ctx, figi, day); ok {
			return price, nil
		}

		candles, err := s.provider.GetDailyCandles(ctx, figi, day, day.AddDate(0, 0, 1))
		if err != nil {
			return decimal.Zero, fmt.Errorf("daily candles for %s: %w", figi, err)
		}
		if len(candles) == 0 {
			continue
		}

		price, err := candles[0].Open.Decimal()
		if err != nil {
			return decimal.Zero, fmt.Errorf("open of %s on %s: %w", figi, day.Format(time.DateOnly), err)
		}
		if offset > 0 {
			s.logger.WithFields(logrus.Fields{
				"figi":    figi,
				"date":    date.Format(time.DateOnly),
				"skipped": offset,
			}).Debug("no trading on purchase date, used next trading day")
		}
		s.saveOpen(ctx, figi, day, price)
		if offset > 0 {
			s.saveOpen(ctx, figi, date, price)
		}
		return price, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s has no candles from %s within %d days",
		errs.ErrNoTradingData, figi, date.Format(time.DateOnly), s.cfg.MaxLookaheadDays)
}

func (s *Service) storedOpen(ctx context.Context, figi string, day time.Time) (decimal.Decimal, bool) {
	if s.store == nil {
		return decimal.Zero, false
	}
	price, ok, err := s.store.GetOpen(ctx, figi, day)
	if err != nil {
		s.logger.WithError(err).WithField("figi", figi).Warn("quote store read failed")
		return decimal.Zero, false
	}
	return price, ok
}

func (s *Service) saveOpen(ctx context.Context, figi string, day time.Time, price decimal.Decimal) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveOpen(ctx, figi, day, price); err != nil {
		s.logger.WithError(err).WithField("figi", figi).Warn("quote store write failed")
	}
}
