package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrVenueNotFound = errors.New("venue not found")
	ErrDrinkNotFound = errors.New("drink not found")
)

type Venue struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Drink struct {
	ID          uint   `gorm:"primaryKey"`
	VenueID     uint   `gorm:"not null;index"`
	Venue       Venue  `gorm:"foreignKey:VenueID"`
	Title       string `gorm:"not null"`
	Description string
	InStock     bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type VenueDAO struct {
	db *gorm.DB
}

func NewVenueDAO(db *gorm.DB) *VenueDAO {
	return &VenueDAO{
		db: db,
	}
}

func (d *VenueDAO) FindByID(ctx context.Context, venueID uint) (Venue, error) {
	var venue Venue
	result := d.db.WithContext(ctx).First(&venue, venueID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Venue{}, ErrVenueNotFound
		}

		return Venue{}, result.Error
	}

	return venue, nil
}

// FindDrink is venue-scoped so one venue's menu can never leak into another's.
func (d *VenueDAO) FindDrink(ctx context.Context, drinkID, venueID uint) (Drink, error) {
	var drink Drink
	result := d.db.WithContext(ctx).
		Where("id = ? AND venue_id = ?", drinkID, venueID).
		First(&drink)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Drink{}, ErrDrinkNotFound
		}

		return Drink{}, result.Error
	}

	return drink, nil
}
