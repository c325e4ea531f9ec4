package bus

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNilHandler = errors.New("nil event handler")

type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a simple Event stamped with the current time.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data}
}

type subscription struct {
	id        string
	seq       uint64
	eventType string
	handler   EventHandler
	mu        sync.Mutex
	active    bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.mu.Unlock()
	s.cancel()
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: eventType -> subID -> subscription
	handlers  map[string]map[string]*subscription
	seq       uint64
	metrics   EventBusMetrics
	observers map[EventBusObserver]struct{}
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers:  make(map[string]map[string]*subscription),
		observers: make(map[EventBusObserver]struct{}),
	}
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]*subscription)
	}
	b.seq++
	id := uuid.NewString()
	s := &subscription{id: id, seq: b.seq, eventType: eventType, handler: handler, active: true}
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if mm, ok := b.handlers[eventType]; ok {
			delete(mm, id)
			if len(mm) == 0 {
				delete(b.handlers, eventType)
			}
		}
	}
	b.handlers[eventType][id] = s
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.subscribersLocked()
}

func (b *inMemoryBus) subscribersLocked() int {
	n := 0
	for _, m := range b.handlers {
		n += len(m)
	}
	return n
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) Publish(event Event) error {
	if event == nil {
		return nil
	}
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.handlers[etype])+len(b.handlers[Wildcard]))
	for _, s := range b.handlers[etype] {
		subs = append(subs, s)
	}
	if etype != Wildcard {
		for _, s := range b.handlers[Wildcard] {
			subs = append(subs, s)
		}
	}
	observers := make([]EventBusObserver, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })

	for _, obs := range observers {
		obs.OnPublish(etype, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, fmt.Errorf("%s handler %s: %w", etype, s.id, err))
		}
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(delivered)
	if all != nil {
		b.metrics.Errors++
	}
	b.metrics.SubscribersActive = uint64(b.subscribersLocked())
	b.mu.Unlock()

	if len(observers) > 0 {
		dur := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(etype, delivered, all, dur)
		}
	}
	return all
}
