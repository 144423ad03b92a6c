package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"fashion-recommender-be/internal/constant"
	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/recommend/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "recommender_replies"

// TurnFunc runs one chat turn.
type TurnFunc func(ctx context.Context, sessionID, text string) []response.OutboundMessage

type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-device)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance delivery
	rdb *redis.Client

	// instanceID marks frames this instance published to Redis
	instanceID string

	turn   TurnFunc
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, turn TurnFunc, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		turn:       turn,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("WS", "Client registered", map[string]interface{}{
				"session_id":    client.SessionID,
				"connection_id": client.ID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
	}
}

// HandleText runs a turn for the client's session and delivers the reply to
// every connection on that session. Local connections see a processing
// status while the turn runs.
func (h *Hub) HandleText(ctx context.Context, c *Client, text string) {
	if status, err := json.Marshal(map[string]interface{}{
		"type": "status",
		"text": constant.NoteProcessing,
	}); err == nil {
		h.sendLocal(c.SessionID, status)
	}

	messages := h.turn(ctx, c.SessionID, text)
	h.Deliver(ctx, c.SessionID, messages)
}

// Deliver sends messages as one JSON frame to local connections of sessionID
// and publishes it for other instances.
func (h *Hub) Deliver(ctx context.Context, sessionID string, messages []response.OutboundMessage) {
	data, err := json.Marshal(map[string]interface{}{
		"type":     "turn",
		"messages": messages,
	})
	if err != nil {
		return
	}

	h.sendLocal(sessionID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterFrame{Origin: h.instanceID, SessionID: sessionID, Message: data})
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("WS", "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) sendLocal(sessionID string, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[sessionID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("WS", "Client send buffer full, dropping connection", map[string]interface{}{
				"session_id":    sessionID,
				"connection_id": client.ID,
			})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

type clusterFrame struct {
	Origin    string          `json:"origin"`
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

// subscribeToRedis delivers frames published by other instances to the
// sessions connected here.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var frame clusterFrame
		if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
			h.logger.Warn("WS", "Redis frame parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if frame.Origin == h.instanceID {
			continue
		}
		h.sendLocal(frame.SessionID, frame.Message)
	}
}
