package profitability

import (
	"fmt"
	"time"

	"invest-profitability/internal/domain/errs"
)

// ReferenceDate anchors the simulated purchases: every purchase falls a whole
// number of months before it.
func ReferenceDate() time.Time {
	return time.Date(2021, time.December, 1, 12, 0, 0, 0, time.UTC)
}

// PurchaseDates returns years*12-1 monthly purchase dates, oldest first.
func PurchaseDates(years int) ([]time.Time, error) {
	if years <= 0 {
		return nil, fmt.Errorf("%w: years must be positive, got %d", errs.ErrInvalidArgument, years)
	}
	months := years*12 - 1
	anchor := ReferenceDate()
	dates := make([]time.Time, 0, months)
	for m := months; m >= 1; m-- {
		dates = append(dates, anchor.AddDate(0, -m, 0))
	}
	return dates, nil
}
