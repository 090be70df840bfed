package repository

import (
	"context"
	"fmt"

	"homebar/internal/domain"
	"homebar/internal/repository/dao"
)

var (
	ErrVenueNotFound = dao.ErrVenueNotFound
	ErrDrinkNotFound = dao.ErrDrinkNotFound
)

type VenueDAO interface {
	FindByID(ctx context.Context, venueID uint) (dao.Venue, error)
	FindDrink(ctx context.Context, drinkID, venueID uint) (dao.Drink, error)
}

type VenueRepository struct {
	dao VenueDAO
}

func NewVenueRepository(dao VenueDAO) *VenueRepository {
	return &VenueRepository{
		dao: dao,
	}
}

func (r *VenueRepository) FindByID(ctx context.Context, venueID uint) (domain.Venue, error) {
	venue, err := r.dao.FindByID(ctx, venueID)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return domain.Venue{
		ID:        venue.ID,
		Name:      venue.Name,
		CreatedAt: venue.CreatedAt,
		UpdatedAt: venue.UpdatedAt,
	}, nil
}

func (r *VenueRepository) FindDrink(ctx context.Context, drinkID, venueID uint) (domain.Drink, error) {
	drink, err := r.dao.FindDrink(ctx, drinkID, venueID)
	if err != nil {
		return domain.Drink{}, fmt.Errorf("r.dao.FindDrink -> %w", err)
	}

	return domain.Drink{
		ID:          drink.ID,
		VenueID:     drink.VenueID,
		Title:       drink.Title,
		Description: drink.Description,
		InStock:     drink.InStock,
		CreatedAt:   drink.CreatedAt,
		UpdatedAt:   drink.UpdatedAt,
	}, nil
}
