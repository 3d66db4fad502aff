package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/service/pubsub"
	"github.com/kingrain94/token-quota-api/internal/utils"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

const (
	websocketReadBufferSize        = 1024
	websocketWriteBufferSize       = 1024
	websocketSendChannelBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  websocketReadBufferSize,
	WriteBufferSize: websocketWriteBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	conn           *websocket.Conn
	organizationID string
	send           chan []byte
}

// WebSocketHandler streams accepted usage events to dashboards of the same
// organization. Events reach it through Redis so every replica sees every charge.
type WebSocketHandler struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *logger.Logger
	pubsub     *pubsub.RedisPubSub
	ctx        context.Context
	cancel     context.CancelFunc
	orgClients map[string]int
}

func NewWebSocketHandler(logger *logger.Logger, pubsub *pubsub.RedisPubSub) *WebSocketHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketHandler{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		pubsub:     pubsub,
		ctx:        ctx,
		cancel:     cancel,
		orgClients: make(map[string]int),
	}
}

// HandleWebSocket Stream the caller organization's usage events
// @Summary Usage event stream
// @Tags    usage
// @Success 101 {object} dto.UsageEventResponse
// @Failure 401 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /usage/stream [get]
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	orgID := c.GetString(string(utils.OrganizationIDKey))
	if orgID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Error: "No organization ID found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", err)
		return
	}

	client := &Client{
		conn:           conn,
		organizationID: orgID,
		send:           make(chan []byte, websocketSendChannelBufferSize),
	}
	h.register <- client

	go h.writePump(client)
	go h.readPump(client)
}

func (h *WebSocketHandler) Start() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.orgClients[client.organizationID]++
			first := h.orgClients[client.organizationID] == 1
			h.mutex.Unlock()

			if first {
				if err := h.pubsub.Subscribe(h.ctx, client.organizationID, h.handlePubSubMessage); err != nil {
					h.logger.Error("Failed to subscribe to organization feed", err,
						zap.String("organization_id", client.organizationID))
				}
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			h.drop(client)
			h.mutex.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *WebSocketHandler) Stop() {
	h.cancel()
	h.pubsub.Close()
}

// ClientCount reports how many sockets are open for an organization.
func (h *WebSocketHandler) ClientCount(organizationID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.orgClients[organizationID]
}

// drop removes a client. Callers hold h.mutex.
func (h *WebSocketHandler) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	h.orgClients[client.organizationID]--
	if h.orgClients[client.organizationID] == 0 {
		h.pubsub.Unsubscribe(client.organizationID)
		delete(h.orgClients, client.organizationID)
	}
}

func (h *WebSocketHandler) handlePubSubMessage(event *dto.UsageEventResponse) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error marshaling usage event", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.organizationID != event.OrganizationID {
			continue
		}
		select {
		case client.send <- message:
		default:
			// Slow consumer.
			h.drop(client)
		}
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		h.unregister <- client
		client.conn.Close()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("Unexpected websocket close", zap.String("organization_id", client.organizationID), zap.Error(err))
			}
			return
		}
	}
}

// BroadcastUsage publishes an accepted event to every replica's subscribers.
func (h *WebSocketHandler) BroadcastUsage(event *dto.UsageEventResponse) {
	if err := h.pubsub.Publish(h.ctx, event); err != nil {
		h.logger.Error("Failed to publish usage event", err, zap.String("event_id", event.ID))
	}
}
