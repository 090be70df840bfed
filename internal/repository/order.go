package repository

import (
	"context"
	"fmt"
	"time"

	"homebar/internal/domain"
	"homebar/internal/repository/dao"
)

var (
	ErrOrderNotFound     = dao.ErrOrderNotFound
	ErrActiveOrderExists = dao.ErrActiveOrderExists
	ErrStaleOrderStatus  = dao.ErrStaleOrderStatus
)

type OrderDAO interface {
	Insert(ctx context.Context, order dao.Order) (dao.Order, error)
	FindByID(ctx context.Context, orderID, venueID uint) (dao.Order, error)
	FindActive(ctx context.Context, venueID uint, customerName string) (*dao.Order, error)
	UpdateStatusFrom(ctx context.Context, orderID, venueID uint, expected, next string, updatedAt time.Time) error
	Delete(ctx context.Context, orderID, venueID uint) error
	List(ctx context.Context, venueID uint, status, customerName string, limit int) ([]dao.Order, error)
	ListActive(ctx context.Context, venueID uint) ([]dao.Order, error)
}

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

func (r *OrderRepository) domainToDao(o domain.Order) dao.Order {
	return dao.Order{
		ID:           o.ID,
		VenueID:      o.VenueID,
		CustomerName: o.CustomerName,
		DrinkID:      o.DrinkID,
		DrinkTitle:   o.DrinkTitle,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (r *OrderRepository) daoToDomain(o dao.Order) domain.Order {
	return domain.Order{
		ID:           o.ID,
		VenueID:      o.VenueID,
		CustomerName: o.CustomerName,
		DrinkID:      o.DrinkID,
		DrinkTitle:   o.DrinkTitle,
		Status:       domain.OrderStatus(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (r *OrderRepository) daosToDomain(orders []dao.Order) []domain.Order {
	result := make([]domain.Order, len(orders))
	for i, o := range orders {
		result[i] = r.daoToDomain(o)
	}

	return result
}

func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(order))
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID, venueID uint) (domain.Order, error) {
	order, err := r.dao.FindByID(ctx, orderID, venueID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(order), nil
}

func (r *OrderRepository) FindActive(ctx context.Context, venueID uint, customerName string) (*domain.Order, error) {
	order, err := r.dao.FindActive(ctx, venueID, customerName)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActive -> %w", err)
	}
	if order == nil {
		return nil, nil
	}

	found := r.daoToDomain(*order)

	return &found, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, venueID uint, expected, next domain.OrderStatus, updatedAt time.Time) error {
	err := r.dao.UpdateStatusFrom(ctx, orderID, venueID, string(expected), string(next), updatedAt)
	if err != nil {
		return fmt.Errorf("r.dao.UpdateStatusFrom -> %w", err)
	}

	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, orderID, venueID uint) error {
	err := r.dao.Delete(ctx, orderID, venueID)
	if err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *OrderRepository) List(ctx context.Context, venueID uint, filter domain.OrderFilter) ([]domain.Order, error) {
	orders, err := r.dao.List(ctx, venueID, string(filter.Status), filter.CustomerName, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(orders), nil
}

func (r *OrderRepository) ListActive(ctx context.Context, venueID uint) ([]domain.Order, error) {
	orders, err := r.dao.ListActive(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListActive -> %w", err)
	}

	return r.daosToDomain(orders), nil
}
