// Package changefeed carries coarse "table changed" signals from the write
// paths to push consumers. Events hold no payload; consumers re-fetch.
package changefeed

import (
	"strings"
	"sync"
	"time"
)

const (
	TableTeams        = "teams"
	TableChallenges   = "challenges"
	TableJoinRequests = "join_requests"
	TableUsers        = "users"
	TableSettings     = "settings"
)

type Event struct {
	Table      string    `json:"table"`
	Version    uint64    `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Bus fans table-change events out to subscribers. Publishing never blocks:
// a slow subscriber only ever sees the latest pending event per table.
type Bus struct {
	mu       sync.Mutex
	versions map[string]uint64
	subs     map[int]*Subscription
	nextID   int
	now      func() time.Time
}

func NewBus() *Bus {
	return &Bus{
		versions: make(map[string]uint64),
		subs:     make(map[int]*Subscription),
		now:      time.Now,
	}
}

// Publish bumps the table version and signals every matching subscriber.
func (b *Bus) Publish(table string) {
	table = strings.TrimSpace(table)
	if table == "" {
		return
	}

	b.mu.Lock()
	b.versions[table]++
	event := Event{
		Table:      table,
		Version:    b.versions[table],
		OccurredAt: b.now().UTC(),
	}
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.offer(event)
	}
}

// Version reports the last published version for table (0 if never published).
func (b *Bus) Version(table string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.versions[strings.TrimSpace(table)]
}

// Subscribe registers interest in the given tables; no tables means all.
// The caller owns the returned subscription and must Close it.
func (b *Bus) Subscribe(tables ...string) *Subscription {
	var filter map[string]struct{}
	if len(tables) > 0 {
		filter = make(map[string]struct{}, len(tables))
		for _, table := range tables {
			table = strings.TrimSpace(table)
			if table != "" {
				filter[table] = struct{}{}
			}
		}
	}

	sub := &Subscription{
		bus:     b,
		tables:  filter,
		pending: make(map[string]Event),
		wake:    make(chan struct{}, 1),
		out:     make(chan Event),
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go sub.pump()

	return sub
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Subscription delivers coalesced events for one consumer. Events() yields
// at most one pending event per table; intermediate versions are dropped.
type Subscription struct {
	bus    *Bus
	id     int
	tables map[string]struct{}

	mu      sync.Mutex
	pending map[string]Event

	wake      chan struct{}
	out       chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func (s *Subscription) Events() <-chan Event {
	return s.out
}

// Close unregisters the subscription; Events() is closed afterwards.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.unsubscribe(s.id)
		close(s.done)
	})
}

func (s *Subscription) offer(event Event) {
	if s.tables != nil {
		if _, ok := s.tables[event.Table]; !ok {
			return
		}
	}

	s.mu.Lock()
	s.pending[event.Table] = event
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.out)

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			event, ok := s.takePending()
			if !ok {
				break
			}
			select {
			case s.out <- event:
			case <-s.done:
				return
			}
		}
	}
}

func (s *Subscription) takePending() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for table, event := range s.pending {
		delete(s.pending, table)
		return event, true
	}
	return Event{}, false
}
