package store

import (
	"context"

	"fila/queue-manager/internal/models"
)

// TicketStore is the shared source of truth for tickets. Every in-memory
// copy held by a device is a cache reconciled against it; the store is
// partitioned by session date (YYYY-MM-DD).
type TicketStore interface {
	GetTickets(ctx context.Context, sessionDate string) ([]models.Ticket, error)
	AddTicket(ctx context.Context, sessionDate string, ticket models.Ticket) error
	UpdateTicket(ctx context.Context, sessionDate string, ticket models.Ticket) error
	DeleteTicket(ctx context.Context, sessionDate, ticketID string) error

	// NextSequence returns the next call-code sequence number for the
	// session. The counter is owned by the store so that two devices
	// creating tickets at the same instant cannot mint the same password.
	NextSequence(ctx context.Context, sessionDate string) (int, error)

	// Changes returns a channel that signals whenever the session's ticket
	// set may have changed. Backends without push support return
	// ErrNoSubscribe and callers fall back to interval polling.
	Changes(ctx context.Context, sessionDate string) (<-chan struct{}, error)
}

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, userID string) error
}
