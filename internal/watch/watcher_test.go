package watch

import (
	"context"
	"testing"
	"time"

	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/store"
)

type scriptedStore struct {
	snapshots [][]models.Ticket
	reads     int
	changes   chan struct{}
}

func (s *scriptedStore) GetTickets(ctx context.Context, date string) ([]models.Ticket, error) {
	snapshot := s.snapshots[0]
	if len(s.snapshots) > 1 {
		s.snapshots = s.snapshots[1:]
	}
	s.reads++
	return snapshot, nil
}

func (s *scriptedStore) AddTicket(ctx context.Context, date string, ticket models.Ticket) error {
	return nil
}

func (s *scriptedStore) UpdateTicket(ctx context.Context, date string, ticket models.Ticket) error {
	return nil
}

func (s *scriptedStore) DeleteTicket(ctx context.Context, date, ticketID string) error {
	return nil
}

func (s *scriptedStore) NextSequence(ctx context.Context, date string) (int, error) {
	return 0, nil
}

func (s *scriptedStore) Changes(ctx context.Context, date string) (<-chan struct{}, error) {
	if s.changes == nil {
		return nil, store.ErrNoSubscribe
	}
	return s.changes, nil
}

func ticketWithID(id string) models.Ticket {
	return models.Ticket{TicketID: id, Status: models.StatusWaitingSeparation}
}

func TestEverySnapshotReachesNotifySinks(t *testing.T) {
	st := &scriptedStore{snapshots: [][]models.Ticket{
		{ticketWithID("t1")},
	}}
	w := New(st, "2026-08-30", time.Second)

	var seen int
	w.Notify(func(tickets []models.Ticket) { seen++ })

	w.cycle(context.Background())
	w.cycle(context.Background())
	w.cycle(context.Background())

	if seen != 3 {
		t.Fatalf("every cycle must reach the sink, got %d of 3", seen)
	}
}

func TestChangedSinksSkipIdenticalSnapshots(t *testing.T) {
	st := &scriptedStore{snapshots: [][]models.Ticket{
		{ticketWithID("t1")},
		{ticketWithID("t1")},
		{ticketWithID("t1"), ticketWithID("t2")},
	}}
	w := New(st, "2026-08-30", time.Second)

	var deliveries [][]models.Ticket
	w.NotifyChanged(func(tickets []models.Ticket) {
		deliveries = append(deliveries, tickets)
	})

	w.cycle(context.Background())
	w.cycle(context.Background())
	w.cycle(context.Background())

	if len(deliveries) != 2 {
		t.Fatalf("identical snapshot must be absorbed, got %d deliveries", len(deliveries))
	}
	if len(deliveries[1]) != 2 {
		t.Fatalf("expected the grown snapshot last, got %+v", deliveries[1])
	}
}

func TestKickTriggersImmediateRead(t *testing.T) {
	st := &scriptedStore{snapshots: [][]models.Ticket{
		{ticketWithID("t1")},
	}}
	w := New(st, "2026-08-30", time.Hour)

	read := make(chan struct{}, 4)
	w.Notify(func([]models.Ticket) { read <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Run performs one initial read; the kick must produce a second one
	// well before the hour-long ticker fires.
	waitRead(t, read)
	w.Kick()
	waitRead(t, read)
}

func TestChangeFeedDrivesReads(t *testing.T) {
	changes := make(chan struct{}, 1)
	st := &scriptedStore{
		snapshots: [][]models.Ticket{{ticketWithID("t1")}},
		changes:   changes,
	}
	w := New(st, "2026-08-30", time.Hour)

	read := make(chan struct{}, 4)
	w.Notify(func([]models.Ticket) { read <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitRead(t, read)
	changes <- struct{}{}
	waitRead(t, read)
}

func waitRead(t *testing.T, read <-chan struct{}) {
	t.Helper()
	select {
	case <-read:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a snapshot read")
	}
}
