package instruments

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "invest-profitability/internal/domain/entity/instruments"
	"invest-profitability/internal/domain/errs"
	interfaces "invest-profitability/internal/domain/interfaces"
	"invest-profitability/internal/infrastructure/cache"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	InstrumentsRegion  = "instruments"
	LastPricesRegion   = "lastPrices"
	CurrencyFigiRegion = "currencyFigi"

	DefaultBaseCurrency = "rub"
)

// EvictionPeriods sets how often each cache region is flushed.
type EvictionPeriods struct {
	Instruments  time.Duration
	LastPrices   time.Duration
	CurrencyFigi time.Duration
}

func DefaultEvictionPeriods() EvictionPeriods {
	return EvictionPeriods{
		Instruments:  24 * time.Hour,
		LastPrices:   5 * time.Minute,
		CurrencyFigi: 24 * time.Hour,
	}
}

type searchResult struct {
	instrument domain.Instrument
	found      bool
}

// Service resolves instruments, last prices and currency instruments,
// memoizing each lookup in its own cache region.
type Service struct {
	provider     interfaces.MarketDataProvider
	baseCurrency string
	logger       *logrus.Entry

	instruments  *cache.Region[string, searchResult]
	lastPrices   *cache.Region[string, decimal.Decimal]
	currencyFigi *cache.Region[string, string]
}

func NewService(provider interfaces.MarketDataProvider, baseCurrency string, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if baseCurrency == "" {
		baseCurrency = DefaultBaseCurrency
	}
	return &Service{
		provider:     provider,
		baseCurrency: strings.ToLower(baseCurrency),
		logger:       logger.WithField("component", "instrument_service"),
		instruments:  cache.NewRegion[string, searchResult](InstrumentsRegion, logger),
		lastPrices:   cache.NewRegion[string, decimal.Decimal](LastPricesRegion, logger),
		currencyFigi: cache.NewRegion[string, string](CurrencyFigiRegion, logger),
	}
}

func (s *Service) BaseCurrency() string {
	return s.baseCurrency
}

// RegisterEvictions schedules the periodic flush of every region.
func (s *Service) RegisterEvictions(scheduler *cache.Scheduler, periods EvictionPeriods) error {
	if err := scheduler.Schedule(s.instruments, periods.Instruments); err != nil {
		return err
	}
	if err := scheduler.Schedule(s.lastPrices, periods.LastPrices); err != nil {
		return err
	}
	return scheduler.Schedule(s.currencyFigi, periods.CurrencyFigi)
}

// FindInstrument searches shares then ETFs by exact ticker, then exact FIGI,
// then a case-sensitive name substring. A miss is reported with ok=false.
func (s *Service) FindInstrument(ctx context.Context, query string) (domain.Instrument, bool, error) {
	result, err := s.instruments.GetOrCompute(query, func() (searchResult, error) {
		return s.searchInstrument(ctx, query)
	})
	if err != nil {
		return domain.Instrument{}, false, err
	}
	return result.instrument, result.found, nil
}

func (s *Service) searchInstrument(ctx context.Context, query string) (searchResult, error) {
	var (
		shares []domain.ShareRecord
		etfs   []domain.EtfRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shares, err = s.provider.ListShares(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		etfs, err = s.provider.ListEtfs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return searchResult{}, fmt.Errorf("list instruments: %w", err)
	}

	candidates := make([]domain.Instrument, 0, len(shares)+len(etfs))
	for _, share := range shares {
		candidates = append(candidates, domain.FromShare(share))
	}
	for _, etf := range etfs {
		candidates = append(candidates, domain.FromEtf(etf))
	}

	matchers := []func(domain.Instrument) bool{
		func(i domain.Instrument) bool { return i.Ticker == query },
		func(i domain.Instrument) bool { return i.Figi == query },
		func(i domain.Instrument) bool { return strings.Contains(i.Name, query) },
	}
	for _, match := range matchers {
		for _, candidate := range candidates {
			if match(candidate) {
				return searchResult{instrument: candidate, found: true}, nil
			}
		}
	}

	s.logger.WithField("query", query).Info("instrument not found")
	return searchResult{}, nil
}

// LastPrice returns the latest traded price of figi.
func (s *Service) LastPrice(ctx context.Context, figi string) (decimal.Decimal, error) {
	return s.lastPrices.GetOrCompute(figi, func() (decimal.Decimal, error) {
		prices, err := s.provider.GetLastPrices(ctx, []string{figi})
		if err != nil {
			return decimal.Zero, fmt.Errorf("last price for %s: %w", figi, err)
		}
		for _, price := range prices {
			if price.Figi != "" && price.Figi != figi {
				continue
			}
			return price.Price.Decimal()
		}
		return decimal.Zero, fmt.Errorf("%w: no last price for %s", errs.ErrExternalData, figi)
	})
}

// CurrencyFigi resolves a currency code to the FIGI of its tradable instrument.
func (s *Service) CurrencyFigi(ctx context.Context, currency string) (string, error) {
	return s.currencyFigi.GetOrCompute(currency, func() (string, error) {
		records, err := s.provider.ListCurrencies(ctx)
		if err != nil {
			return "", fmt.Errorf("list currencies: %w", err)
		}
		code := strings.ToLower(currency)
		for _, record := range records {
			if strings.Contains(strings.ToLower(record.Ticker), code) {
				return record.Figi, nil
			}
		}
		return "", fmt.Errorf("%w: currency %q", errs.ErrNotFound, currency)
	})
}

// ConvertToBase converts price quoted in currency at the current exchange rate.
// The base currency itself is rejected; callers short-circuit it.
func (s *Service) ConvertToBase(ctx context.Context, price decimal.Decimal, currency string) (decimal.Decimal, error) {
	if strings.EqualFold(currency, s.baseCurrency) {
		return decimal.Zero, fmt.Errorf("%w: %q is the base currency", errs.ErrInvalidArgument, currency)
	}
	figi, err := s.CurrencyFigi(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := s.LastPrice(ctx, figi)
	if err != nil {
		return decimal.Zero, err
	}
	return price.Mul(rate), nil
}

// BasketValue prices the basket at last prices in the base currency.
func (s *Service) BasketValue(ctx context.Context, basket domain.Basket) (decimal.Decimal, error) {
	if err := basket.Validate(); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, instrument := range basket.Instruments() {
		price, err := s.LastPrice(ctx, instrument.Figi)
		if err != nil {
			return decimal.Zero, err
		}
		if !instrument.InBaseCurrency(s.baseCurrency) {
			if price, err = s.ConvertToBase(ctx, price, instrument.Currency); err != nil {
				return decimal.Zero, err
			}
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(basket[instrument]))))
	}
	return total, nil
}

// EvictAll flushes every region immediately.
func (s *Service) EvictAll() {
	s.instruments.EvictAll()
	s.lastPrices.EvictAll()
	s.currencyFigi.EvictAll()
}
