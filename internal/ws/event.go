package ws

import (
	"time"

	"homebar/internal/domain"
)

type Role string

const (
	RoleBartender Role = "bartender"
	RoleGuest     Role = "guest"
)

type EventType string

const (
	EventConnectionEstablished EventType = "connection_established"
	EventNewOrder              EventType = "new_order"
	EventOrderStatusUpdated    EventType = "order_status_updated"
	EventOrderDeleted          EventType = "order_deleted"
	EventGuestConnected        EventType = "guest_connected"
	EventGuestDisconnected     EventType = "guest_disconnected"
	EventBarJoined             EventType = "bar_joined"
	EventBarLeft               EventType = "bar_left"
	EventStats                 EventType = "stats"
	EventPong                  EventType = "pong"
	EventError                 EventType = "error"
)

// Event is the wire envelope for every message pushed to a client. The
// payload fields form a union across event types; unused ones are omitted
// from the JSON. DeliveredAt is stamped by the hub just before delivery.
type Event struct {
	Type        EventType `json:"type"`
	DeliveredAt time.Time `json:"deliveredAt"`

	ClientID        string        `json:"clientId,omitempty"`
	Order           *domain.Order `json:"order,omitempty"`
	OrderID         uint          `json:"orderId,omitempty"`
	VenueID         uint          `json:"venueId,omitempty"`
	Role            Role          `json:"role,omitempty"`
	CustomerName    string        `json:"customerName,omitempty"`
	ConnectionCount int           `json:"connectionCount,omitempty"`
	Stats           *VenueStats   `json:"stats,omitempty"`
	Message         string        `json:"message,omitempty"`
}

// VenueStats summarizes a venue's live connections for bartender dashboards.
type VenueStats struct {
	TotalConnections int      `json:"totalConnections"`
	Bartenders       int      `json:"bartenders"`
	Guests           int      `json:"guests"`
	GuestNames       []string `json:"guestNames"`
}

func ConnectionEstablished(clientID string) Event {
	return Event{Type: EventConnectionEstablished, ClientID: clientID}
}

func OrderCreated(order domain.Order) Event {
	return Event{Type: EventNewOrder, Order: &order}
}

func OrderStatusUpdated(order domain.Order) Event {
	return Event{Type: EventOrderStatusUpdated, Order: &order}
}

func OrderDeleted(orderID uint) Event {
	return Event{Type: EventOrderDeleted, OrderID: orderID}
}

func GuestConnected(customerName string, connectionCount int) Event {
	return Event{Type: EventGuestConnected, CustomerName: customerName, ConnectionCount: connectionCount}
}

func GuestDisconnected(customerName string) Event {
	return Event{Type: EventGuestDisconnected, CustomerName: customerName}
}

func BarJoined(venueID uint, role Role, customerName string) Event {
	return Event{Type: EventBarJoined, VenueID: venueID, Role: role, CustomerName: customerName}
}

func BarLeft() Event {
	return Event{Type: EventBarLeft}
}

func StatsReply(stats VenueStats) Event {
	return Event{Type: EventStats, Stats: &stats}
}

func Pong() Event {
	return Event{Type: EventPong}
}

func ErrorReply(message string) Event {
	return Event{Type: EventError, Message: message}
}
