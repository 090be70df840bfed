package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateOrderRequest struct {
	VenueID      uint   `json:"venueId"`
	CustomerName string `json:"customerName"`
	DrinkID      uint   `json:"drinkId"`
	DrinkTitle   string `json:"drinkTitle"`
}

func (req *CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.VenueID, validation.Required),
		validation.Field(&req.CustomerName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.DrinkID, validation.Required),
		validation.Field(&req.DrinkTitle, validation.Required, validation.Length(1, 200)),
	)
}

type UpdateOrderStatusRequest struct {
	VenueID uint   `json:"venueId"`
	Status  string `json:"status"`
}

func (req *UpdateOrderStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.VenueID, validation.Required),
		validation.Field(&req.Status, validation.Required,
			validation.In("new", "accepted", "rejected", "ready", "processed")),
	)
}

type CancelOrderRequest struct {
	VenueID      uint   `json:"venueId"`
	CustomerName string `json:"customerName"`
}

func (req *CancelOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.VenueID, validation.Required),
		validation.Field(&req.CustomerName, validation.Required, validation.Length(1, 100)),
	)
}
