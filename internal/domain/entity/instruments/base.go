package instruments

import (
	"fmt"
	"strings"
)

type InstrumentType string

const (
	ShareType InstrumentType = "SHARE"
	EtfType   InstrumentType = "ETF"
)

func (it InstrumentType) String() string {
	return string(it)
}

func (it InstrumentType) IsValid() bool {
	switch it {
	case ShareType, EtfType:
		return true
	default:
		return false
	}
}

// Instrument is the unified shape of a tradable share or ETF.
// All fields are comparable, so an Instrument can key a Basket directly.
type Instrument struct {
	Ticker    string         `json:"ticker"`
	Figi      string         `json:"figi"`
	ClassCode string         `json:"class_code"`
	Name      string         `json:"name"`
	Lot       int32          `json:"lot"`
	Currency  string         `json:"currency"`
	Type      InstrumentType `json:"type"`
}

func (i Instrument) GetFigi() string   { return i.Figi }
func (i Instrument) GetTicker() string { return i.Ticker }
func (i Instrument) GetLots() int32    { return i.Lot }

// InBaseCurrency reports whether the instrument is quoted in base.
func (i Instrument) InBaseCurrency(base string) bool {
	return strings.EqualFold(i.Currency, base)
}

func (i Instrument) String() string {
	return fmt.Sprintf("%s (%s)", i.Ticker, i.Figi)
}
