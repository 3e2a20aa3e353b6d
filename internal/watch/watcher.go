package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/store"
)

// Watcher keeps every consumer's view of the active session consistent
// with the shared store. Push-capable backends drive it through their
// change feed; everything else falls back to interval polling. Either way
// consumers see one uniform stream of ticket-set snapshots.
type Watcher struct {
	store       store.TicketStore
	sessionDate string
	interval    time.Duration

	mu           sync.Mutex
	sinks        []func([]models.Ticket)
	changedSinks []func([]models.Ticket)
	last         []byte

	kick    chan struct{}
	running int32
}

func New(st store.TicketStore, sessionDate string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Watcher{
		store:       st,
		sessionDate: sessionDate,
		interval:    interval,
		kick:        make(chan struct{}, 1),
	}
}

// Notify registers a sink that receives every snapshot read, including
// unchanged ones. The announcement engine subscribes here: its novelty
// detection must see every observation, skipping one could lose a call.
func (w *Watcher) Notify(sink func([]models.Ticket)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sinks = append(w.sinks, sink)
}

// NotifyChanged registers a sink that only fires when the snapshot content
// actually differs from the previous one, so display clients are not
// re-rendered for identical data.
func (w *Watcher) NotifyChanged(sink func([]models.Ticket)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.changedSinks = append(w.changedSinks, sink)
}

// Kick requests an immediate re-read, used right after a local write so
// the change is visible before the next scheduled cycle.
func (w *Watcher) Kick() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *Watcher) Run(ctx context.Context) {
	changes, err := w.store.Changes(ctx, w.sessionDate)
	if err != nil && !errors.Is(err, store.ErrNoSubscribe) {
		log.Printf("subscribe error, falling back to polling: %v", err)
	}

	w.cycle(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-w.kick:
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
		}
		w.cycle(ctx)
	}
}

func (w *Watcher) cycle(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&w.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&w.running, 0)

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	tickets, err := w.store.GetTickets(readCtx, w.sessionDate)
	cancel()
	if err != nil {
		log.Printf("sync read error: %v", err)
		return
	}

	encoded, err := json.Marshal(tickets)
	if err != nil {
		log.Printf("sync encode error: %v", err)
		return
	}

	w.mu.Lock()
	sinks := append([]func([]models.Ticket){}, w.sinks...)
	var changedSinks []func([]models.Ticket)
	if !bytes.Equal(encoded, w.last) {
		w.last = encoded
		changedSinks = append(changedSinks, w.changedSinks...)
	}
	w.mu.Unlock()

	for _, sink := range sinks {
		sink(tickets)
	}
	for _, sink := range changedSinks {
		sink(tickets)
	}
}
