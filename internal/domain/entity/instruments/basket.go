package instruments

import (
	"fmt"
	"sort"

	"invest-profitability/internal/domain/errs"
)

// Basket maps an instrument to the number of lots held.
type Basket map[Instrument]int

// Validate rejects non-positive quantities.
func (b Basket) Validate() error {
	for instrument, quantity := range b {
		if quantity <= 0 {
			return fmt.Errorf("%w: quantity for %s must be positive, got %d", errs.ErrInvalidArgument, instrument, quantity)
		}
	}
	return nil
}

// Instruments returns the basket keys ordered by FIGI.
func (b Basket) Instruments() []Instrument {
	keys := make([]Instrument, 0, len(b))
	for instrument := range b {
		keys = append(keys, instrument)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Figi < keys[j].Figi })
	return keys
}
