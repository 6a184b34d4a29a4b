package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "helpdesk:escalations"

type Hub struct {
	// Registered clients: MentorID -> connections (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, nil on a single instance
	rdb *redis.Client

	// instance tags our own redis publications so they are not delivered twice
	instance string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, instance string, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instance:   instance,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.MentorID] = append(h.clients[client.MentorID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Mentor connected", map[string]interface{}{"mentor_id": client.MentorID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.MentorID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.MentorID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.MentorID]) == 0 {
		delete(h.clients, client.MentorID)
		h.logger.Info("Hub", "Mentor disconnected", map[string]interface{}{"mentor_id": client.MentorID})
	}
}

// Connected reports how many sockets are registered.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// frame is what mentors receive for each escalation.
func frame(e events.Event) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":        "escalation",
		"event":       e.EventType(),
		"data":        e.Payload(),
		"occurred_at": e.Timestamp(),
	})
}

// Notify pushes an escalation to every connected mentor here and, through redis, on the other instances.
func (h *Hub) Notify(ctx context.Context, e events.Event) error {
	data, err := frame(e)
	if err != nil {
		return err
	}
	h.deliver(data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"origin":  h.instance,
			"message": json.RawMessage(data),
		})
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to fan out escalation through redis", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (h *Hub) deliver(data []byte) {
	var slow []*Client
	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"mentor_id": client.MentorID})
		h.remove(client)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin  string          `json:"origin"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instance {
			continue
		}
		h.deliver(payload.Message)
	}
}
