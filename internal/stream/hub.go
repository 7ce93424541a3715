package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans live telemetry out to websocket viewers, keyed by tracking
// session. With redis configured, records published by one instance reach
// viewers connected to another.
type Hub struct {
	redis   *redis.Client
	viewers map[string]map[*Viewer]struct{}
	mu      sync.RWMutex
}

type Viewer struct {
	SessionID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		viewers: map[string]map[*Viewer]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(sessionID string) *Viewer {
	viewer := &Viewer{
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.viewers[sessionID] == nil {
		h.viewers[sessionID] = map[*Viewer]struct{}{}
	}
	h.viewers[sessionID][viewer] = struct{}{}
	return viewer
}

func (h *Hub) Unregister(viewer *Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionViewers, ok := h.viewers[viewer.SessionID]; ok {
		delete(sessionViewers, viewer)
		if len(sessionViewers) == 0 {
			delete(h.viewers, viewer.SessionID)
		}
	}
	close(viewer.Send)
}

// Broadcast delivers a telemetry payload to viewers of the session. With
// redis configured delivery goes through pub/sub so every instance sees it;
// without redis, or when the publish fails, delivery is local only. Slow
// viewers are skipped, never blocked on.
func (h *Hub) Broadcast(sessionID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), telemetryChannel(sessionID), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(sessionID, payload)
}

// deliver holds the read lock across the sends; Unregister closes Send under
// the write lock, so a racing disconnect can never hit a closed channel here.
// The sends are non-blocking, so the lock is never held waiting on a viewer.
func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for viewer := range h.viewers[sessionID] {
		select {
		case viewer.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "telemetry:*:feed")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(sessionIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func telemetryChannel(sessionID string) string {
	return "telemetry:" + sessionID + ":feed"
}

func sessionIDFromChannel(ch string) string {
	// telemetry:{session}:feed
	const prefix = "telemetry:"
	const suffix = ":feed"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
