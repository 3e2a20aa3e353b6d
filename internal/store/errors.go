package store

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrNoSubscribe    = errors.New("store does not support subscriptions")
)
