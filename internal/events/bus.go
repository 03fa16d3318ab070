package events

import "sync"

// Family identifies the table family a commit touched.
type Family string

const (
	FamilyCards     Family = "cards"
	FamilyTags      Family = "tags"
	FamilyTemplates Family = "templates"
	FamilyUsers     Family = "users"
)

// Event is published by store adapters after a successful commit. Only the
// family is carried; subscribers re-query the store for current rows.
type Event struct {
	Family Family
}

// Bus is a lightweight in-process broadcast bus. Publish never blocks: each
// subscriber holds at most one pending notification, which is sufficient
// because consumers re-read full snapshots rather than deltas.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus { return &Bus{subs: make(map[int]chan Event)} }

// Publish fans the event out to every subscriber without blocking.
// A nil bus is a valid no-op publisher so stores can run unwired.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its channel together with a
// cancel function releasing it. The channel is closed on cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 1)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}
