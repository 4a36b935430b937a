package instruments

import "strings"

// ShareRecord is a share as listed by the market-data provider.
type ShareRecord struct {
	Ticker    string
	Figi      string
	ClassCode string
	Name      string
	Lot       int32
	Currency  string
	Sector    string
}

// EtfRecord is an exchange-traded fund as listed by the market-data provider.
type EtfRecord struct {
	Ticker    string
	Figi      string
	ClassCode string
	Name      string
	Lot       int32
	Currency  string
	FocusType string
}

// CurrencyRecord is a tradable currency instrument (e.g. USD000UTSTOM).
type CurrencyRecord struct {
	Ticker   string
	Figi     string
	Name     string
	Currency string
}

func FromShare(s ShareRecord) Instrument {
	return Instrument{
		Ticker:    s.Ticker,
		Figi:      s.Figi,
		ClassCode: s.ClassCode,
		Name:      s.Name,
		Lot:       s.Lot,
		Currency:  strings.ToLower(s.Currency),
		Type:      ShareType,
	}
}

func FromEtf(e EtfRecord) Instrument {
	return Instrument{
		Ticker:    e.Ticker,
		Figi:      e.Figi,
		ClassCode: e.ClassCode,
		Name:      e.Name,
		Lot:       e.Lot,
		Currency:  strings.ToLower(e.Currency),
		Type:      EtfType,
	}
}
