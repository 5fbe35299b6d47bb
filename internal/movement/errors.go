package movement

import "errors"

var (
	ErrNotFound             = errors.New("movement not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrVoided               = errors.New("movement is voided")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingDate          = errors.New("date is required")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)
