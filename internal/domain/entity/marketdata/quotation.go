package marketdata

import (
	"fmt"

	"invest-profitability/internal/domain/errs"

	"github.com/shopspring/decimal"
)

const nanosPerUnit = 1_000_000_000

// Quotation is the provider's fixed-point price: whole units plus billionths.
type Quotation struct {
	Units int64 `json:"units"`
	Nano  int32 `json:"nano"`
}

// Validate rejects a nano part outside one unit or with a sign opposite to units.
func (q Quotation) Validate() error {
	if q.Nano <= -nanosPerUnit || q.Nano >= nanosPerUnit {
		return fmt.Errorf("%w: quotation nano %d out of range", errs.ErrExternalData, q.Nano)
	}
	if (q.Units > 0 && q.Nano < 0) || (q.Units < 0 && q.Nano > 0) {
		return fmt.Errorf("%w: quotation %d/%d has mixed signs", errs.ErrExternalData, q.Units, q.Nano)
	}
	return nil
}

// Decimal composes units and nano into one exact decimal value.
func (q Quotation) Decimal() (decimal.Decimal, error) {
	if err := q.Validate(); err != nil {
		return decimal.Zero, err
	}
	return decimal.New(q.Units, 0).Add(decimal.New(int64(q.Nano), -9)), nil
}
