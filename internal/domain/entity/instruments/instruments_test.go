package instruments

import (
	"errors"
	"testing"

	"invest-profitability/internal/domain/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromShareAndEtf(t *testing.T) {
	share := FromShare(ShareRecord{Ticker: "SBER", Figi: "BBG004730N88", ClassCode: "TQBR", Name: "Сбербанк", Lot: 10, Currency: "RUB", Sector: "financial"})
	etf := FromEtf(EtfRecord{Ticker: "FXUS", Figi: "BBG005HLSZ23", ClassCode: "TQTF", Name: "FinEx USA", Lot: 1, Currency: "usd", FocusType: "equity"})

	assert.Equal(t, Instrument{Ticker: "SBER", Figi: "BBG004730N88", ClassCode: "TQBR", Name: "Сбербанк", Lot: 10, Currency: "rub", Type: ShareType}, share)
	assert.Equal(t, EtfType, etf.Type)
	assert.Equal(t, "usd", etf.Currency)
	assert.True(t, share.InBaseCurrency("rub"))
	assert.False(t, etf.InBaseCurrency("rub"))
}

func TestInstrumentIsMapKey(t *testing.T) {
	a := Instrument{Ticker: "A", Figi: "F1", Currency: "rub", Type: ShareType}
	b := a
	basket := Basket{a: 1}
	basket[b] += 2

	assert.Len(t, basket, 1)
	assert.Equal(t, 3, basket[a])
}

func TestBasketValidate(t *testing.T) {
	ok := Basket{{Figi: "F1"}: 1, {Figi: "F2"}: 5}
	require.NoError(t, ok.Validate())
	require.NoError(t, Basket{}.Validate())

	for _, quantity := range []int{0, -3} {
		err := Basket{{Figi: "F1"}: quantity}.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	}
}

func TestBasketInstrumentsOrderedByFigi(t *testing.T) {
	basket := Basket{{Figi: "F3"}: 1, {Figi: "F1"}: 1, {Figi: "F2"}: 1}
	got := basket.Instruments()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"F1", "F2", "F3"}, []string{got[0].Figi, got[1].Figi, got[2].Figi})
}

func TestFormatPrice(t *testing.T) {
	price := decimal.RequireFromString("1234.5")
	cases := map[string]string{
		"usd": "$1234.50",
		"rub": "1234.50 ₽",
		"EUR": "€1234.50",
		"hkd": "1234.50 hkd",
	}
	for currency, want := range cases {
		assert.Equal(t, want, FormatPrice(price, currency), currency)
	}
}

func TestInstrumentTypeIsValid(t *testing.T) {
	assert.True(t, ShareType.IsValid())
	assert.True(t, EtfType.IsValid())
	assert.False(t, InstrumentType("bond").IsValid())
}
