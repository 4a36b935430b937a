// Package errs holds the error kinds shared across the service.
// Call sites wrap them with context; callers match with errors.Is.
package errs

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrExternalData    = errors.New("external data fault")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoTradingData   = errors.New("no trading data")
)
