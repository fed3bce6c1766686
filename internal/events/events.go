// Package events is the page-wide listener registry: pointer-down, key-down and
// route-change-start notifications delivered to whoever subscribed on the same bus.
package events

import "sync"

// Kind identifies the class of an event.
type Kind int

const (
	PointerDown Kind = iota + 1
	KeyDown
	RouteChangeStart
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case KeyDown:
		return "keydown"
	case RouteChangeStart:
		return "routechangestart"
	default:
		return "unknown"
	}
}

// Event is a single notification.
type Event struct {
	Kind Kind
	// Path lists the element ids from the event target up to the document, innermost first.
	Path []string
	// Key is set for KeyDown, e.g. "Escape".
	Key string
	// URL is the destination of a RouteChangeStart.
	URL string
}

// Within reports whether the event target sits inside the element with the given id.
func (e Event) Within(id string) bool {
	for _, p := range e.Path {
		if p == id {
			return true
		}
	}
	return false
}

// Handler receives events.
type Handler func(Event)

// Bus fans events out to subscribed handlers. It is safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[Kind]map[uint64]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[Kind]map[uint64]Handler{}}
}

// Subscribe registers h for kind and returns the subscription that removes it.
func (b *Bus) Subscribe(kind Kind, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	if b.handlers[kind] == nil {
		b.handlers[kind] = map[uint64]Handler{}
	}
	b.handlers[kind][id] = h
	return &Subscription{release: []func(){func() { b.remove(kind, id) }}}
}

func (b *Bus) remove(kind Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers[kind], id)
	if len(b.handlers[kind]) == 0 {
		delete(b.handlers, kind)
	}
}

// Publish delivers e to every handler subscribed for its kind. Handlers run on the caller's
// goroutine, outside the bus lock, so they may subscribe or unsubscribe.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[e.Kind]))
	for _, h := range b.handlers[e.Kind] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()
	for _, h := range hs {
		h(e)
	}
}

// Len returns the number of live subscriptions across all kinds.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, hs := range b.handlers {
		n += len(hs)
	}
	return n
}

// Subscription is the paired release for one or more registrations.
type Subscription struct {
	once    sync.Once
	release []func()
}

// Combine merges subscriptions into one that releases them all.
func Combine(subs ...*Subscription) *Subscription {
	out := &Subscription{}
	for _, s := range subs {
		if s == nil {
			continue
		}
		out.release = append(out.release, s.Unsubscribe)
	}
	return out
}

// OnRelease returns a subscription that runs f once when released.
func OnRelease(f func()) *Subscription {
	return &Subscription{release: []func(){f}}
}

// Unsubscribe removes the registrations. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		for _, r := range s.release {
			r()
		}
	})
}
