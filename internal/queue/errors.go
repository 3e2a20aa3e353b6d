package queue

import "errors"

var (
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrOrderNumberRequired  = errors.New("order number is required")
	ErrSessionDateRequired  = errors.New("session date is required")
	ErrUnknownStatus        = errors.New("unknown ticket status")
	ErrInvalidTransition    = errors.New("invalid status transition")
)
