package steam

import (
	"context"
	"sync"
)

const queueSize = 64

// Subscription is a registered handler. Each subscription owns a queue and
// a goroutine, so a handler sees its events in emission order while
// handlers of different events run independently of each other.
type Subscription struct {
	bus   *Bus
	kind  eventKind
	queue chan Event
	done  chan struct{}
	once  sync.Once
}

// Cancel stops delivery to the handler. Safe for repeated calls.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		if s.bus != nil {
			s.bus.remove(s)
		}
	})
}

func (s *Subscription) run(deliver func(Event)) {
	for {
		select {
		case <-s.done:
			return
		case e := <-s.queue:
			deliver(e)
		}
	}
}

// Bus fans session events out to typed handlers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[eventKind]map[*Subscription]struct{}
	closed bool
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[eventKind]map[*Subscription]struct{}),
	}
}

func (b *Bus) OnLoggedOn(h func(LoggedOn)) *Subscription { return subscribe(b, h) }

func (b *Bus) OnWebSession(h func(WebSession)) *Subscription { return subscribe(b, h) }

func (b *Bus) OnAccountLimitations(h func(AccountLimitations)) *Subscription {
	return subscribe(b, h)
}

func (b *Bus) OnFriendMessage(h func(FriendMessage)) *Subscription { return subscribe(b, h) }

func (b *Bus) OnFriendRelationship(h func(FriendRelationship)) *Subscription {
	return subscribe(b, h)
}

func (b *Bus) OnGroupRelationship(h func(GroupRelationship)) *Subscription {
	return subscribe(b, h)
}

func (b *Bus) OnSteamGuard(h func(SteamGuard)) *Subscription { return subscribe(b, h) }

func (b *Bus) OnLoginKey(h func(LoginKey)) *Subscription { return subscribe(b, h) }

func (b *Bus) OnError(h func(ErrorEvent)) *Subscription { return subscribe(b, h) }

func subscribe[E Event](b *Bus, handler func(E)) *Subscription {
	var zero E
	s := &Subscription{
		bus:   b,
		kind:  zero.eventKind(),
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.bus = nil
		s.Cancel()
		return s
	}
	if b.subs[s.kind] == nil {
		b.subs[s.kind] = make(map[*Subscription]struct{})
	}
	b.subs[s.kind][s] = struct{}{}
	b.mu.Unlock()

	go s.run(func(e Event) { handler(e.(E)) })
	return s
}

// Emit queues e for every handler registered for its type. It blocks only
// while a handler's queue is full, and gives up when ctx is done.
func (b *Bus) Emit(ctx context.Context, e Event) error {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs[e.eventKind()]))
	for s := range b.subs[e.eventKind()] {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.queue <- e:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Handlers returns the number of handlers registered for events like e.
func (b *Bus) Handlers(e Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[e.eventKind()])
}

// Close cancels every subscription. Later registrations are inert and
// later emits deliver nothing.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	var all []*Subscription
	for _, subs := range b.subs {
		for s := range subs {
			all = append(all, s)
		}
	}
	b.mu.Unlock()

	for _, s := range all {
		s.Cancel()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[s.kind], s)
}
