package ws

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Hub fans venue-scoped events out to the subset of connections the Registry
// says should receive them. Delivery is fire-and-forget: a failed peer is
// unregistered and the failure never reaches the caller.
type Hub struct {
	registry *Registry
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry: registry,
	}
}

func (h *Hub) BroadcastToVenue(venueID uint, event Event) {
	h.broadcast(event, func(s *session) bool {
		return s.venueID == venueID
	})
}

func (h *Hub) BroadcastToRole(venueID uint, role Role, event Event) {
	h.broadcast(event, func(s *session) bool {
		return s.venueID == venueID && s.role == role
	})
}

func (h *Hub) BroadcastToCustomer(venueID uint, customerName string, event Event) {
	h.broadcast(event, func(s *session) bool {
		return s.venueID == venueID && s.customerName == customerName && s.role == RoleGuest
	})
}

// SendTo delivers an event to a single connection.
func (h *Hub) SendTo(clientID string, event Event) bool {
	message, err := h.marshal(event)
	if err != nil {
		return false
	}

	return h.registry.send(clientID, message)
}

func (h *Hub) broadcast(event Event, match func(*session) bool) {
	message, err := h.marshal(event)
	if err != nil {
		return
	}

	sent, dropped := h.registry.deliver(match, message)
	if dropped > 0 {
		zap.L().Warn("dropped dead connections during broadcast",
			zap.String("event_type", string(event.Type)),
			zap.Int("dropped", dropped))
	}
	zap.L().Debug("broadcast delivered",
		zap.String("event_type", string(event.Type)),
		zap.Int("sent", sent))
}

func (h *Hub) marshal(event Event) ([]byte, error) {
	event.DeliveredAt = time.Now().UTC()
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("failed to marshal event", zap.String("event_type", string(event.Type)), zap.Error(err))
		return nil, err
	}

	return message, nil
}
