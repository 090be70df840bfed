package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homebar/internal/domain"
	"homebar/internal/repository"
	"homebar/internal/ws"
)

var (
	ErrVenueNotFound     = repository.ErrVenueNotFound
	ErrDrinkNotFound     = repository.ErrDrinkNotFound
	ErrOrderNotFound     = repository.ErrOrderNotFound
	ErrActiveOrderExists = repository.ErrActiveOrderExists
	ErrStaleOrderStatus  = repository.ErrStaleOrderStatus

	ErrDrinkOutOfStock      = errors.New("drink is currently out of stock")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrCancelNotOwner       = errors.New("orders can only be cancelled by their owner")
	ErrCancelTooLate        = errors.New("orders can no longer be cancelled once accepted")
)

type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, orderID, venueID uint) (domain.Order, error)
	FindActive(ctx context.Context, venueID uint, customerName string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, venueID uint, expected, next domain.OrderStatus, updatedAt time.Time) error
	Delete(ctx context.Context, orderID, venueID uint) error
	List(ctx context.Context, venueID uint, filter domain.OrderFilter) ([]domain.Order, error)
	ListActive(ctx context.Context, venueID uint) ([]domain.Order, error)
}

type VenueRepository interface {
	FindByID(ctx context.Context, venueID uint) (domain.Venue, error)
	FindDrink(ctx context.Context, drinkID, venueID uint) (domain.Drink, error)
}

// Broadcaster pushes an event to every live connection of a venue. Delivery
// is best-effort and asynchronous; a notification failure never fails the
// order operation that triggered it.
type Broadcaster interface {
	BroadcastToVenue(venueID uint, event ws.Event)
}

// OrderService is the order lifecycle state machine. Every mutation persists
// first and emits a venue-scoped event after the store commit.
type OrderService struct {
	orders      OrderRepository
	venues      VenueRepository
	broadcaster Broadcaster
}

func NewOrderService(orders OrderRepository, venues VenueRepository, broadcaster Broadcaster) *OrderService {
	return &OrderService{
		orders:      orders,
		venues:      venues,
		broadcaster: broadcaster,
	}
}

// CreateOrder places a new order for a guest. A customer may only hold one
// active order per venue at a time; the store check here is backstopped by a
// partial unique index, so a concurrent duplicate surfaces as the same
// conflict error.
func (s *OrderService) CreateOrder(ctx context.Context, venueID uint, customerName string, drinkID uint, drinkTitle string) (domain.Order, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return domain.Order{}, ErrCustomerNameRequired
	}

	if _, err := s.venues.FindByID(ctx, venueID); err != nil {
		return domain.Order{}, fmt.Errorf("s.venues.FindByID -> %w", err)
	}

	drink, err := s.venues.FindDrink(ctx, drinkID, venueID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.venues.FindDrink -> %w", err)
	}
	if !drink.InStock {
		return domain.Order{}, ErrDrinkOutOfStock
	}

	active, err := s.orders.FindActive(ctx, venueID, customerName)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.orders.FindActive -> %w", err)
	}
	if active != nil {
		return domain.Order{}, ErrActiveOrderExists
	}

	now := time.Now()
	created, err := s.orders.Insert(ctx, domain.Order{
		VenueID:      venueID,
		CustomerName: customerName,
		DrinkID:      drinkID,
		DrinkTitle:   strings.TrimSpace(drinkTitle),
		Status:       domain.StatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.orders.Insert -> %w", err)
	}

	s.broadcaster.BroadcastToVenue(venueID, ws.OrderCreated(created))

	return created, nil
}

// Transition moves an order to the requested status when the allow-list
// permits it. The write is conditioned on the status just read, so a
// concurrent transition loses with ErrStaleOrderStatus instead of silently
// overwriting.
func (s *OrderService) Transition(ctx context.Context, orderID, venueID uint, requested domain.OrderStatus) (domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID, venueID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.orders.FindByID -> %w", err)
	}

	if !order.Status.CanTransitionTo(requested) {
		return domain.Order{}, &domain.InvalidTransitionError{From: order.Status, To: requested}
	}

	now := time.Now()
	if err := s.orders.UpdateStatus(ctx, orderID, venueID, order.Status, requested, now); err != nil {
		return domain.Order{}, fmt.Errorf("s.orders.UpdateStatus -> %w", err)
	}

	order.Status = requested
	order.UpdatedAt = now

	s.broadcaster.BroadcastToVenue(venueID, ws.OrderStatusUpdated(order))

	return order, nil
}

// Cancel removes a guest's own order. Only the customer who placed the order
// may cancel it, and only while no bartender has acted on it.
func (s *OrderService) Cancel(ctx context.Context, orderID, venueID uint, customerName string) error {
	if strings.TrimSpace(customerName) == "" {
		return ErrCustomerNameRequired
	}

	order, err := s.orders.FindByID(ctx, orderID, venueID)
	if err != nil {
		return fmt.Errorf("s.orders.FindByID -> %w", err)
	}

	if order.CustomerName != customerName {
		return ErrCancelNotOwner
	}
	if order.Status != domain.StatusNew {
		return ErrCancelTooLate
	}

	if err := s.orders.Delete(ctx, orderID, venueID); err != nil {
		return fmt.Errorf("s.orders.Delete -> %w", err)
	}

	s.broadcaster.BroadcastToVenue(venueID, ws.OrderDeleted(orderID))

	return nil
}

func (s *OrderService) ListOrders(ctx context.Context, venueID uint, filter domain.OrderFilter) ([]domain.Order, error) {
	if _, err := s.venues.FindByID(ctx, venueID); err != nil {
		return nil, fmt.Errorf("s.venues.FindByID -> %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	orders, err := s.orders.List(ctx, venueID, filter)
	if err != nil {
		return nil, fmt.Errorf("s.orders.List -> %w", err)
	}

	return orders, nil
}

// PendingOrders lists a venue's active orders oldest first, for the
// bartender dashboard.
func (s *OrderService) PendingOrders(ctx context.Context, venueID uint) ([]domain.Order, error) {
	if _, err := s.venues.FindByID(ctx, venueID); err != nil {
		return nil, fmt.Errorf("s.venues.FindByID -> %w", err)
	}

	orders, err := s.orders.ListActive(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("s.orders.ListActive -> %w", err)
	}

	return orders, nil
}

// ActiveOrderFor returns the customer's current order, or nil when they have
// none.
func (s *OrderService) ActiveOrderFor(ctx context.Context, venueID uint, customerName string) (*domain.Order, error) {
	order, err := s.orders.FindActive(ctx, venueID, customerName)
	if err != nil {
		return nil, fmt.Errorf("s.orders.FindActive -> %w", err)
	}

	return order, nil
}
