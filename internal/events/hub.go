package events

import (
	"strings"
	"sync"

	"companyclean-engine/internal/domain"
)

// Journal keeps every event of one run in order and fans them out to live
// subscribers. Stages only ever append. A nil *Journal discards everything.
type Journal struct {
	mu      sync.Mutex
	events  []Event
	clients map[chan Event]struct{}
}

func NewJournal() *Journal {
	return &Journal{clients: make(map[chan Event]struct{})}
}

func (j *Journal) Record(e Event) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
	for ch := range j.clients {
		select {
		case ch <- e:
		default:
			// drop if slow
		}
	}
}

// Events returns a copy of everything recorded so far.
func (j *Journal) Events() []Event {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Event(nil), j.events...)
}

// Count returns how many events of typ were recorded. A type ending in "."
// counts every event with that prefix.
func (j *Journal) Count(typ string) int {
	n := 0
	for _, e := range j.Events() {
		if e.Type == typ || (strings.HasSuffix(typ, ".") && strings.HasPrefix(e.Type, typ)) {
			n++
		}
	}
	return n
}

// Repairs tallies repair events by correction kind.
func (j *Journal) Repairs() map[string]int {
	out := map[string]int{}
	for _, e := range j.Events() {
		if kind, ok := strings.CutPrefix(e.Type, RepairPrefix); ok {
			out[kind]++
		}
	}
	return out
}

// Issues returns the Info issues carried by reportable events, in order.
func (j *Journal) Issues() []domain.QualityIssue {
	var out []domain.QualityIssue
	for _, e := range j.Events() {
		if is, ok := e.Issue(); ok {
			out = append(out, is)
		}
	}
	return out
}

// Subscribe returns a channel of events recorded from now on. On a nil
// journal the channel is already closed.
func (j *Journal) Subscribe() chan Event {
	ch := make(chan Event, 64)
	if j == nil {
		close(ch)
		return ch
	}
	j.mu.Lock()
	j.clients[ch] = struct{}{}
	j.mu.Unlock()
	return ch
}

func (j *Journal) Unsubscribe(ch chan Event) {
	if j == nil {
		return
	}
	j.mu.Lock()
	_, ok := j.clients[ch]
	delete(j.clients, ch)
	j.mu.Unlock()
	if ok {
		close(ch)
	}
}
