package announce

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"fila/queue-manager/internal/models"
)

// Engine turns observed ticket snapshots into serialized voice
// announcements. It is constructed once per process and owns the only
// access to the audio output: announcements never overlap, duplicate
// observations of the same call are discarded, and a re-call of the same
// ticket inside the repeat window is absorbed.
type Engine struct {
	synth     Synthesizer
	cooldown  time.Duration
	minRepeat time.Duration
	now       func() time.Time

	mu            sync.Mutex
	lastAnnounced map[string]time.Time
	lastSpoken    map[string]time.Time
	queue         []models.Ticket
	current       *models.Ticket
	wake          chan struct{}
}

type Options struct {
	// Cooldown keeps the "calling now" display state up for a few seconds
	// after the utterance before the next queued announcement starts.
	Cooldown time.Duration
	// MinRepeat is the floor between two announcements of the same ticket
	// id, independent of call-time novelty.
	MinRepeat time.Duration
}

func NewEngine(synth Synthesizer, opts Options) *Engine {
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = 3 * time.Second
	}
	minRepeat := opts.MinRepeat
	if minRepeat <= 0 {
		minRepeat = 10 * time.Second
	}
	return &Engine{
		synth:         synth,
		cooldown:      cooldown,
		minRepeat:     minRepeat,
		now:           func() time.Time { return time.Now().UTC() },
		lastAnnounced: make(map[string]time.Time),
		lastSpoken:    make(map[string]time.Time),
		wake:          make(chan struct{}, 1),
	}
}

// Observe scans a ticket-set snapshot for call events that have not been
// announced yet. A call is novel when its call time is strictly newer than
// the last one recorded for that ticket id; everything else is the same
// change seen again through polling and is dropped. Novel events are
// queued in call-time order so rapid successive calls are all spoken.
func (e *Engine) Observe(tickets []models.Ticket) {
	var novel []models.Ticket
	e.mu.Lock()
	for _, t := range tickets {
		if t.Status != models.StatusCalled || t.CallTime == nil {
			continue
		}
		last, seen := e.lastAnnounced[t.TicketID]
		if seen && !t.CallTime.After(last) {
			continue
		}
		e.lastAnnounced[t.TicketID] = *t.CallTime
		novel = append(novel, t)
	}
	if len(novel) > 0 {
		sort.SliceStable(novel, func(i, j int) bool {
			if !novel[i].CallTime.Equal(*novel[j].CallTime) {
				return novel[i].CallTime.Before(*novel[j].CallTime)
			}
			return novel[i].TicketID < novel[j].TicketID
		})
		e.queue = append(e.queue, novel...)
	}
	e.mu.Unlock()

	if len(novel) > 0 {
		select {
		case e.wake <- struct{}{}:
		default:
		}
	}
}

// Run drains the announcement queue one utterance at a time until the
// context is canceled.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.wake:
		}
		for e.processNext(ctx) {
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// Current reports the ticket being announced right now, for the display's
// "calling now" highlight.
func (e *Engine) Current() (models.Ticket, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return models.Ticket{}, false
	}
	return *e.current, true
}

func (e *Engine) processNext(ctx context.Context) bool {
	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return false
	}
	next := e.queue[0]
	e.queue = e.queue[1:]

	now := e.now()
	if last, ok := e.lastSpoken[next.TicketID]; ok && now.Sub(last) < e.minRepeat {
		// Near-duplicate write racing through the sync layer. Expected
		// steady-state traffic, not a fault.
		e.mu.Unlock()
		return true
	}
	e.lastSpoken[next.TicketID] = now
	e.current = &next
	e.mu.Unlock()

	// A new announcement hard-stops whatever is still playing.
	e.synth.Stop()
	if err := e.synth.Speak(ctx, BuildUtterance(next.CustomerName, next.Password)); err != nil {
		log.Printf("announce %s error: %v", next.Password, err)
	}

	if e.cooldown > 0 {
		timer := time.NewTimer(e.cooldown)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	e.mu.Lock()
	e.current = nil
	e.mu.Unlock()
	return true
}
