package realtime

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

// loopbackBridge fakes the Redis bridge: a publish is delivered straight back
// to every handler subscribed to the feed, as Redis does for the publishing
// instance's own subscription.
type loopbackBridge struct {
	handlers map[uuid.UUID][]func(event string, payload []byte)
	pubErr   error
}

func newLoopbackBridge() *loopbackBridge {
	return &loopbackBridge{handlers: make(map[uuid.UUID][]func(event string, payload []byte))}
}

func (b *loopbackBridge) PublishFeedEvent(clientID uuid.UUID, event string, payload []byte) error {
	if b.pubErr != nil {
		return b.pubErr
	}
	for _, h := range b.handlers[clientID] {
		h(event, payload)
	}
	return nil
}

func (b *loopbackBridge) SubscribeFeed(clientID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	b.handlers[clientID] = append(b.handlers[clientID], handler)
	return func() { delete(b.handlers, clientID) }, nil
}

func newTestConn(feedID uuid.UUID) *Conn {
	return &Conn{
		ID:     uuid.New().String(),
		FeedID: feedID,
		Role:   "client",
		send:   make(chan WSMessage, 16),
	}
}

func TestBroadcastDeliversOncePerWatcher(t *testing.T) {
	bridge := newLoopbackBridge()
	hub := NewHub(nil, bridge, bridge)

	feedID := uuid.New()
	conn := newTestConn(feedID)
	hub.Register(conn)

	hub.BroadcastAndPublish(feedID, EventRegistrationCreated, map[string]string{"id": "r1"})

	if got := len(conn.send); got != 1 {
		t.Fatalf("one event broadcast, connection received %d messages", got)
	}
	msg := <-conn.send
	if msg.Event != EventRegistrationCreated {
		t.Fatalf("event = %q, want %q", msg.Event, EventRegistrationCreated)
	}
}

func TestBroadcastWithoutBridgeFansOutLocally(t *testing.T) {
	hub := NewHub(nil, nil, nil)

	feedID := uuid.New()
	conn := newTestConn(feedID)
	hub.Register(conn)

	hub.BroadcastAndPublish(feedID, EventScanRecorded, map[string]string{"scan_id": "s1"})

	if got := len(conn.send); got != 1 {
		t.Fatalf("one event broadcast, connection received %d messages", got)
	}
}

func TestBroadcastFallsBackLocallyOnPublishFailure(t *testing.T) {
	bridge := newLoopbackBridge()
	bridge.pubErr = errors.New("redis down")
	hub := NewHub(nil, bridge, bridge)

	feedID := uuid.New()
	conn := newTestConn(feedID)
	hub.Register(conn)

	hub.BroadcastAndPublish(feedID, EventRegistrationCreated, map[string]string{"id": "r1"})

	if got := len(conn.send); got != 1 {
		t.Fatalf("one event broadcast, connection received %d messages", got)
	}
}

func TestUnregisterCancelsFeedSubscription(t *testing.T) {
	bridge := newLoopbackBridge()
	hub := NewHub(nil, bridge, bridge)

	feedID := uuid.New()
	conn := newTestConn(feedID)
	hub.Register(conn)
	hub.Unregister(conn)

	if got := hub.WatcherCount(feedID); got != 0 {
		t.Fatalf("WatcherCount = %d after unregister, want 0", got)
	}
	if _, ok := bridge.handlers[feedID]; ok {
		t.Fatal("feed subscription still active after last watcher left")
	}
}
