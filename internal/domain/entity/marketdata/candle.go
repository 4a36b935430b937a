package marketdata

import "time"

// Candle is a daily OHLC aggregate; only the opening price is consumed.
type Candle struct {
	Figi  string    `json:"figi"`
	Time  time.Time `json:"time"`
	Open  Quotation `json:"open"`
	High  Quotation `json:"high"`
	Low   Quotation `json:"low"`
	Close Quotation `json:"close"`
}

// LastPrice is the most recent traded price of an instrument.
type LastPrice struct {
	Figi  string    `json:"figi"`
	Price Quotation `json:"price"`
	Time  time.Time `json:"time"`
}
