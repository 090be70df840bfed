package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

// inboundMessage is the union of every client-to-server message shape,
// dispatched on Type.
type inboundMessage struct {
	Type         string `json:"type"`
	VenueID      uint   `json:"venueId"`
	Role         Role   `json:"role"`
	CustomerName string `json:"customerName"`
}

type Handler struct {
	registry *Registry
	hub      *Hub
}

func NewHandler(registry *Registry, hub *Hub) *Handler {
	return &Handler{
		registry: registry,
		hub:      hub,
	}
}

// HandleWebSocket godoc
// @Summary Establish the realtime connection
// @Description Upgrades to a WebSocket carrying order and presence events, scoped by the venue joined via join_bar
// @Tags realtime
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Router /ws [get]
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(conn)
	h.registry.Register(client)
	zap.L().Info("websocket client connected", zap.String("client_id", client.id))

	h.hub.SendTo(client.id, ConnectionEstablished(client.id))

	go client.writePump()
	go client.readPump(h)
}

func (h *Handler) disconnect(c *Client) {
	h.registry.Unregister(c.id)
	zap.L().Info("websocket client disconnected", zap.String("client_id", c.id))
}

func (h *Handler) handleMessage(c *Client, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.hub.SendTo(c.id, ErrorReply("invalid message format"))
		return
	}

	switch msg.Type {
	case "join_bar":
		h.handleJoin(c, msg)
	case "leave_bar":
		h.handleLeave(c)
	case "ping":
		h.registry.TouchLiveness(c.id)
		h.hub.SendTo(c.id, Pong())
	case "get_stats":
		h.handleStats(c)
	default:
		h.hub.SendTo(c.id, ErrorReply(fmt.Sprintf("unknown message type: %s", msg.Type)))
	}
}

func (h *Handler) handleJoin(c *Client, msg inboundMessage) {
	if msg.VenueID == 0 || msg.Role == "" {
		h.hub.SendTo(c.id, ErrorReply("venueId and role are required to join a bar"))
		return
	}
	if msg.Role != RoleBartender && msg.Role != RoleGuest {
		h.hub.SendTo(c.id, ErrorReply("role must be bartender or guest"))
		return
	}

	customerName := strings.TrimSpace(msg.CustomerName)
	if msg.Role == RoleGuest && customerName == "" {
		h.hub.SendTo(c.id, ErrorReply("customerName is required for guests"))
		return
	}

	if !h.registry.Join(c.id, msg.VenueID, msg.Role, customerName) {
		return
	}

	zap.L().Info("client joined venue",
		zap.String("client_id", c.id),
		zap.Uint("venue_id", msg.VenueID),
		zap.String("role", string(msg.Role)))

	if msg.Role == RoleGuest {
		h.hub.SendTo(c.id, BarJoined(msg.VenueID, msg.Role, customerName))
		h.hub.BroadcastToRole(msg.VenueID, RoleBartender,
			GuestConnected(customerName, h.registry.ConnectionCount(msg.VenueID)))
		return
	}
	h.hub.SendTo(c.id, BarJoined(msg.VenueID, msg.Role, ""))
}

func (h *Handler) handleLeave(c *Client) {
	venueID, role, customerName, ok := h.registry.Leave(c.id)
	if ok && role == RoleGuest && customerName != "" {
		h.hub.BroadcastToRole(venueID, RoleBartender, GuestDisconnected(customerName))
	}

	h.hub.SendTo(c.id, BarLeft())
}

// handleStats replies with venue connection counts; requests from anyone but
// a joined bartender are silently ignored.
func (h *Handler) handleStats(c *Client) {
	venueID, role, _, ok := h.registry.Affiliation(c.id)
	if !ok || role != RoleBartender {
		return
	}

	h.hub.SendTo(c.id, StatsReply(h.registry.Stats(venueID)))
}
