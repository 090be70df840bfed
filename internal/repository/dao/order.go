package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"homebar/internal/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrActiveOrderExists = errors.New("customer already has an active order")
	ErrStaleOrderStatus  = errors.New("order status changed concurrently")
)

type Order struct {
	ID           uint   `gorm:"primaryKey"`
	VenueID      uint   `gorm:"not null;index"`
	CustomerName string `gorm:"not null"`
	DrinkID      uint   `gorm:"not null"`
	DrinkTitle   string `gorm:"not null"`
	Status       string `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

func activeStatuses() []string {
	return lo.Map(domain.ActiveStatuses(), func(s domain.OrderStatus, _ int) string {
		return string(s)
	})
}

func (d *OrderDAO) Insert(ctx context.Context, order Order) (Order, error) {
	result := d.db.WithContext(ctx).Create(&order)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, "uix_orders_one_active") {
			return Order{}, ErrActiveOrderExists
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByID(ctx context.Context, orderID, venueID uint) (Order, error) {
	var order Order
	result := d.db.WithContext(ctx).
		Where("id = ? AND venue_id = ?", orderID, venueID).
		First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

// FindActive returns the customer's current non-terminal order, or nil.
func (d *OrderDAO) FindActive(ctx context.Context, venueID uint, customerName string) (*Order, error) {
	var order Order
	result := d.db.WithContext(ctx).
		Where("venue_id = ? AND customer_name = ? AND status IN ?", venueID, customerName, activeStatuses()).
		Order("created_at DESC").
		First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	return &order, nil
}

// UpdateStatusFrom applies the status change only when the stored status still
// equals the expected one, so two concurrent transitions cannot both succeed
// off a stale read.
func (d *OrderDAO) UpdateStatusFrom(ctx context.Context, orderID, venueID uint, expected, next string, updatedAt time.Time) error {
	result := d.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND venue_id = ? AND status = ?", orderID, venueID, expected).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleOrderStatus
	}

	return nil
}

func (d *OrderDAO) Delete(ctx context.Context, orderID, venueID uint) error {
	result := d.db.WithContext(ctx).
		Where("id = ? AND venue_id = ?", orderID, venueID).
		Delete(&Order{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (d *OrderDAO) List(ctx context.Context, venueID uint, status, customerName string, limit int) ([]Order, error) {
	query := d.db.WithContext(ctx).Where("venue_id = ?", venueID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if customerName != "" {
		query = query.Where("customer_name = ?", customerName)
	}

	var orders []Order
	result := query.Order("created_at DESC").Limit(limit).Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) ListActive(ctx context.Context, venueID uint) ([]Order, error) {
	var orders []Order
	result := d.db.WithContext(ctx).
		Where("venue_id = ? AND status IN ?", venueID, activeStatuses()).
		Order("created_at ASC").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}
