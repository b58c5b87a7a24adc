package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Hub fans write events out to in-process subscribers, and optionally
// across instances through Redis pub/sub when a client is configured.
// Events dropped because a subscriber is slow are dropped silently; a
// subscriber that needs a consistent view re-reads the store.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event

	redis *redis.Client
}

const redisChannelPrefix = "gateway:events:"

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		subs:  make(map[string]map[int]chan Event),
		redis: redisClient,
	}
}

// Notify delivers an event to local subscribers and publishes it to Redis
// so other instances can relay it to theirs.
func (h *Hub) Notify(ctx context.Context, ev Event) {
	h.deliver(ev)

	if h.redis == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Warn("failed to marshal gateway event")
		return
	}
	if err := h.redis.Publish(ctx, redisChannelPrefix+ev.Collection, payload).Err(); err != nil {
		logrus.WithError(err).WithField("collection", ev.Collection).Warn("failed to publish gateway event")
	}
}

func (h *Hub) deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[ev.Collection] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener on one collection. The cancel func must be
// called on teardown; after it returns the channel is closed.
func (h *Hub) Subscribe(ctx context.Context, collection string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]chan Event)
	}
	h.subs[collection][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[collection], id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// RunRedisRelay consumes events published by other instances and delivers
// them locally. It returns when the context is cancelled. No-op without a
// Redis client.
func (h *Hub) RunRedisRelay(ctx context.Context, collections ...string) {
	if h.redis == nil {
		return
	}
	channels := make([]string, len(collections))
	for i, c := range collections {
		channels[i] = redisChannelPrefix + c
	}
	sub := h.redis.Subscribe(ctx, channels...)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logrus.WithError(err).Warn("failed to decode relayed gateway event")
				continue
			}
			h.deliver(ev)
		}
	}
}
