package domain

import "time"

type Venue struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Drink struct {
	ID          uint      `json:"id"`
	VenueID     uint      `json:"venue_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
