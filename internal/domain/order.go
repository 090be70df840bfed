package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusAccepted  OrderStatus = "accepted"
	StatusRejected  OrderStatus = "rejected"
	StatusReady     OrderStatus = "ready"
	StatusProcessed OrderStatus = "processed"
)

// transitions is the full allow-list of legal status changes. Rejected and
// processed are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusNew:       {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusReady, StatusRejected},
	StatusReady:     {StatusProcessed},
	StatusRejected:  {},
	StatusProcessed: {},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("invalid order status %q", s)
	}

	return status, nil
}

// Active reports whether an order in this status still occupies the
// customer's single active slot.
func (s OrderStatus) Active() bool {
	switch s {
	case StatusNew, StatusAccepted, StatusReady:
		return true
	}

	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// ActiveStatuses lists every status counted as active, for store queries.
func ActiveStatuses() []OrderStatus {
	return []OrderStatus{StatusNew, StatusAccepted, StatusReady}
}

type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

type Order struct {
	ID           uint        `json:"id"`
	VenueID      uint        `json:"venue_id"`
	CustomerName string      `json:"customer_name"`
	DrinkID      uint        `json:"drink_id"`
	DrinkTitle   string      `json:"drink_title"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderFilter narrows venue-scoped order listings.
type OrderFilter struct {
	Status       OrderStatus
	CustomerName string
	Limit        int
}
