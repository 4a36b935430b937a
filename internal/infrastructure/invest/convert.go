package invest

import (
	"time"

	instruments "invest-profitability/internal/domain/entity/instruments"
	marketdata "invest-profitability/internal/domain/entity/marketdata"

	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func convertShare(msg *pb.Share) instruments.ShareRecord {
	return instruments.ShareRecord{
		Ticker:    msg.GetTicker(),
		Figi:      msg.GetFigi(),
		ClassCode: msg.GetClassCode(),
		Name:      msg.GetName(),
		Lot:       msg.GetLot(),
		Currency:  msg.GetCurrency(),
		Sector:    msg.GetSector(),
	}
}

func convertEtf(msg *pb.Etf) instruments.EtfRecord {
	return instruments.EtfRecord{
		Ticker:    msg.GetTicker(),
		Figi:      msg.GetFigi(),
		ClassCode: msg.GetClassCode(),
		Name:      msg.GetName(),
		Lot:       msg.GetLot(),
		Currency:  msg.GetCurrency(),
		FocusType: msg.GetFocusType(),
	}
}

func convertCurrency(msg *pb.Currency) instruments.CurrencyRecord {
	return instruments.CurrencyRecord{
		Ticker:   msg.GetTicker(),
		Figi:     msg.GetFigi(),
		Name:     msg.GetName(),
		Currency: msg.GetCurrency(),
	}
}

func convertCandle(figi string, msg *pb.HistoricCandle) marketdata.Candle {
	return marketdata.Candle{
		Figi:  figi,
		Time:  timestampToTime(msg.GetTime()),
		Open:  convertQuotation(msg.GetOpen()),
		High:  convertQuotation(msg.GetHigh()),
		Low:   convertQuotation(msg.GetLow()),
		Close: convertQuotation(msg.GetClose()),
	}
}

func convertLastPrice(msg *pb.LastPrice) marketdata.LastPrice {
	return marketdata.LastPrice{
		Figi:  msg.GetFigi(),
		Price: convertQuotation(msg.GetPrice()),
		Time:  timestampToTime(msg.GetTime()),
	}
}

func convertQuotation(q *pb.Quotation) marketdata.Quotation {
	if q == nil {
		return marketdata.Quotation{}
	}
	return marketdata.Quotation{Units: q.GetUnits(), Nano: q.GetNano()}
}

func timestampToTime(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime().UTC()
}
