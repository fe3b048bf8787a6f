// Package realtime pushes registration and scan events to connected
// dashboards over WebSocket so they refresh stats without polling. Redis
// pub/sub bridges instances.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Feed event names.
const (
	EventRegistrationCreated = "registration.created"
	EventScanRecorded        = "scan.recorded"
)

// Publisher publishes feed events to Redis for cross-instance broadcast.
type Publisher interface {
	PublishFeedEvent(clientID uuid.UUID, event string, payload []byte) error
}

// Subscriber subscribes to a client's feed channel and invokes handler for
// incoming events.
type Subscriber interface {
	SubscribeFeed(clientID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains client_id -> set of dashboard connections and delivers feed
// events to them, bridging instances through Redis pub/sub.
type Hub struct {
	feeds  map[uuid.UUID]map[string]*Conn
	subs   map[uuid.UUID]func() // cancel Redis subscription per feed
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// NewHub creates a dashboard feed hub. pub and sub may be nil for
// single-instance or demo deployments.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		feeds:  make(map[uuid.UUID]map[string]*Conn),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a connection to a client feed, starting the Redis
// subscription when it is the feed's first watcher.
func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	if h.feeds[c.FeedID] == nil {
		h.feeds[c.FeedID] = make(map[string]*Conn)
		if h.sub != nil {
			feedID := c.FeedID
			cancel, err := h.sub.SubscribeFeed(feedID, func(event string, payload []byte) {
				h.broadcastLocal(feedID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[feedID] = cancel
			} else {
				h.logger.Warn("feed subscribe failed", zap.Error(err), zap.String("feed_id", feedID.String()))
			}
		}
	}
	h.feeds[c.FeedID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("dashboard connected", zap.String("conn_id", c.ID), zap.String("feed_id", c.FeedID.String()))
}

// Unregister removes a connection, cancelling the Redis subscription when the
// last watcher leaves.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	if m, ok := h.feeds[c.FeedID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.feeds, c.FeedID)
			if cancel, ok := h.subs[c.FeedID]; ok {
				cancel()
				delete(h.subs, c.FeedID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("dashboard disconnected", zap.String("conn_id", c.ID), zap.String("feed_id", c.FeedID.String()))
}

// BroadcastAndPublish delivers an event to every watcher of the client's
// feed exactly once. With Redis it publishes only, and the subscriber
// callback performs the broadcast once per instance (this one included),
// avoiding duplicate delivery to local watchers. Without Redis it falls
// back to a direct local fan-out.
func (h *Hub) BroadcastAndPublish(clientID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		err := h.pub.PublishFeedEvent(clientID, event, data)
		if err == nil {
			return
		}
		h.logger.Warn("feed publish failed", zap.Error(err))
	}
	h.broadcastLocal(clientID, event, json.RawMessage(data))
}

// WatcherCount returns the number of connected dashboards for a feed.
func (h *Hub) WatcherCount(clientID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.feeds[clientID])
}

func (h *Hub) broadcastLocal(clientID uuid.UUID, event string, data json.RawMessage) {
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	conns := h.feeds[clientID]
	h.mu.RUnlock()

	for _, c := range conns {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}
