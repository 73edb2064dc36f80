package realtime

import (
	"expvar"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ringBufferSize bounds how many unread payloads a lagging subscriber
// holds before further publishes are dropped in its favor.
const ringBufferSize = 64

var (
	routeConnectionsGauge  = expvar.NewInt("realtime_route_connections")
	routeEventsSentTotal   = expvar.NewInt("realtime_route_events_sent_total")
	routeEventsLaggedTotal = expvar.NewInt("realtime_route_events_lagged_total")
)

// Subscriber is one websocket connection's inbound message queue for a
// single route channel.
type Subscriber struct {
	ch      chan []byte
	lag     chan int
	skipped int64 // accumulated via atomic ops; read only from signalLag
}

// Messages returns the channel of payloads queued for delivery.
func (s *Subscriber) Messages() <-chan []byte {
	return s.ch
}

// Lag fires with the cumulative number of payloads dropped for this
// subscriber so far whenever a publish found the buffer full.
func (s *Subscriber) Lag() <-chan int {
	return s.lag
}

// signalLag increments the dropped-payload counter and makes sure lag
// carries the latest cumulative count, replacing any unread prior
// signal instead of blocking the publisher or stacking duplicates.
func (s *Subscriber) signalLag() {
	n := int(atomic.AddInt64(&s.skipped, 1))
	select {
	case s.lag <- n:
		return
	default:
	}
	select {
	case <-s.lag:
	default:
	}
	select {
	case s.lag <- n:
	default:
	}
}

// routeChannel fans a route's completion events out to every locally
// connected subscriber.
type routeChannel struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

// Hub is the process-local registry of route broadcast channels. A
// channel exists only while at least one subscriber holds it; the last
// unsubscribe tears it down.
type Hub struct {
	mu       sync.RWMutex
	channels map[uuid.UUID]*routeChannel
}

// NewHub creates an empty broadcast registry.
func NewHub() *Hub {
	return &Hub{channels: make(map[uuid.UUID]*routeChannel)}
}

// Subscribe registers a new subscriber for routeID, lazily creating its
// channel if this is the first one.
func (h *Hub) Subscribe(routeID uuid.UUID) *Subscriber {
	h.mu.Lock()
	rc, ok := h.channels[routeID]
	if !ok {
		rc = &routeChannel{subscribers: make(map[*Subscriber]struct{})}
		h.channels[routeID] = rc
	}
	h.mu.Unlock()

	sub := &Subscriber{
		ch:  make(chan []byte, ringBufferSize),
		lag: make(chan int, 1),
	}

	rc.mu.Lock()
	rc.subscribers[sub] = struct{}{}
	rc.mu.Unlock()

	routeConnectionsGauge.Add(1)
	return sub
}

// Unsubscribe removes sub from routeID's channel, closing its queue.
// When it was the last subscriber, the channel itself is removed from
// the registry.
func (h *Hub) Unsubscribe(routeID uuid.UUID, sub *Subscriber) {
	h.mu.Lock()
	rc, ok := h.channels[routeID]
	if !ok {
		h.mu.Unlock()
		return
	}

	rc.mu.Lock()
	delete(rc.subscribers, sub)
	empty := len(rc.subscribers) == 0
	rc.mu.Unlock()

	if empty {
		delete(h.channels, routeID)
	}
	h.mu.Unlock()

	close(sub.ch)
	routeConnectionsGauge.Add(-1)
}

// Publish fans payload out to every subscriber currently on routeID. A
// subscriber whose buffer is full is signaled via Lag instead of
// blocking the publisher; the payload is dropped for that subscriber.
func (h *Hub) Publish(routeID uuid.UUID, payload []byte) {
	h.mu.RLock()
	rc, ok := h.channels[routeID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	for sub := range rc.subscribers {
		select {
		case sub.ch <- payload:
			routeEventsSentTotal.Add(1)
		default:
			sub.signalLag()
			routeEventsLaggedTotal.Add(1)
		}
	}
}

// SubscriberCount reports how many local subscribers a route channel
// currently has; zero also covers the no-channel case.
func (h *Hub) SubscriberCount(routeID uuid.UUID) int {
	h.mu.RLock()
	rc, ok := h.channels[routeID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.subscribers)
}
