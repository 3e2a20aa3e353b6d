package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/store"

	"github.com/google/uuid"
)

const passwordPad = 3

type Service struct {
	store store.TicketStore
	now   func() time.Time
}

type CreateInput struct {
	CustomerName string
	OrderNumber  string
	ClientType   string
	VehicleType  string
	Priority     string
	SessionDate  string
}

func NewService(st store.TicketStore) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (models.Ticket, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.OrderNumber = strings.TrimSpace(input.OrderNumber)
	if input.CustomerName == "" {
		return models.Ticket{}, ErrCustomerNameRequired
	}
	if input.OrderNumber == "" {
		return models.Ticket{}, ErrOrderNumberRequired
	}
	if input.SessionDate == "" {
		return models.Ticket{}, ErrSessionDateRequired
	}
	if input.Priority == "" {
		input.Priority = models.PriorityNormal
	}

	seq, err := s.store.NextSequence(ctx, input.SessionDate)
	if err != nil {
		return models.Ticket{}, err
	}
	prefix := "N"
	if input.Priority == models.PriorityPriority {
		prefix = "P"
	}

	ticket := models.Ticket{
		TicketID:     uuid.NewString(),
		Password:     fmt.Sprintf("%s-%0*d", prefix, passwordPad, seq),
		CustomerName: input.CustomerName,
		OrderNumber:  input.OrderNumber,
		ClientType:   input.ClientType,
		VehicleType:  input.VehicleType,
		Priority:     input.Priority,
		Status:       models.StatusWaitingSeparation,
		SessionDate:  input.SessionDate,
		ArrivalTime:  s.now(),
	}

	if err := s.store.AddTicket(ctx, input.SessionDate, ticket); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

// Transition applies a guarded status change: the target must be a legal
// successor of the ticket's current status.
func (s *Service) Transition(ctx context.Context, sessionDate, ticketID, newStatus string) (models.Ticket, error) {
	if !models.ValidStatus(newStatus) {
		return models.Ticket{}, ErrUnknownStatus
	}
	ticket, err := s.find(ctx, sessionDate, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !ValidTransition(ticket.Status, newStatus) {
		return models.Ticket{}, ErrInvalidTransition
	}
	return s.apply(ctx, sessionDate, ticket, newStatus)
}

// Override applies a status change without the successor check. It exists
// for the management table, where an operator may force a ticket to any
// stage; regular operator actions go through Transition.
func (s *Service) Override(ctx context.Context, sessionDate, ticketID, newStatus string) (models.Ticket, error) {
	if !models.ValidStatus(newStatus) {
		return models.Ticket{}, ErrUnknownStatus
	}
	ticket, err := s.find(ctx, sessionDate, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	return s.apply(ctx, sessionDate, ticket, newStatus)
}

func (s *Service) Remove(ctx context.Context, sessionDate, ticketID string) error {
	return s.store.DeleteTicket(ctx, sessionDate, ticketID)
}

func (s *Service) apply(ctx context.Context, sessionDate string, ticket models.Ticket, newStatus string) (models.Ticket, error) {
	stamp := s.now()
	ticket.Status = newStatus
	switch newStatus {
	case models.StatusInSeparation:
		ticket.SeparationStartTime = &stamp
	case models.StatusReady:
		ticket.SeparationEndTime = &stamp
	case models.StatusCalled:
		// Always overwritten: a re-call advances the call time, which is
		// what drives re-announcement on the display.
		ticket.CallTime = &stamp
	case models.StatusFinished:
		ticket.FinishTime = &stamp
	}
	if err := s.store.UpdateTicket(ctx, sessionDate, ticket); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Service) find(ctx context.Context, sessionDate, ticketID string) (models.Ticket, error) {
	tickets, err := s.store.GetTickets(ctx, sessionDate)
	if err != nil {
		return models.Ticket{}, err
	}
	for _, ticket := range tickets {
		if ticket.TicketID == ticketID {
			return ticket, nil
		}
	}
	return models.Ticket{}, store.ErrTicketNotFound
}
