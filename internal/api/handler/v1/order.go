package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homebar/internal/api/handler/v1/request"
	"homebar/internal/api/handler/v1/response"
	"homebar/internal/domain"
	"homebar/internal/service"
)

type OrderService interface {
	CreateOrder(ctx context.Context, venueID uint, customerName string, drinkID uint, drinkTitle string) (domain.Order, error)
	Transition(ctx context.Context, orderID, venueID uint, requested domain.OrderStatus) (domain.Order, error)
	Cancel(ctx context.Context, orderID, venueID uint, customerName string) error
	ListOrders(ctx context.Context, venueID uint, filter domain.OrderFilter) ([]domain.Order, error)
	PendingOrders(ctx context.Context, venueID uint) ([]domain.Order, error)
	ActiveOrderFor(ctx context.Context, venueID uint, customerName string) (*domain.Order, error)
}

type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{
		svc: svc,
	}
}

// renderOrderErr maps the service error kinds onto HTTP statuses. Anything
// unrecognized is a store or programming failure and surfaces as an opaque
// 500 with the cause logged.
func renderOrderErr(ctx *gin.Context, err error) {
	var invalidTransition *domain.InvalidTransitionError

	switch {
	case errors.Is(err, service.ErrCustomerNameRequired),
		errors.Is(err, service.ErrDrinkOutOfStock):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrVenueNotFound),
		errors.Is(err, service.ErrDrinkNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		response.RenderErr(ctx, response.ErrNotFound(err))
	case errors.Is(err, service.ErrActiveOrderExists),
		errors.Is(err, service.ErrCancelTooLate),
		errors.Is(err, service.ErrStaleOrderStatus):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrCancelNotOwner):
		response.RenderErr(ctx, response.ErrForbidden(err))
	case errors.As(err, &invalidTransition):
		response.RenderErr(ctx, response.ErrConflict(invalidTransition))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %v", name)))
		return 0, false
	}

	return uint(id), true
}

// HandleCreateOrder godoc
// @Summary      Place a new order
// @Description  Creates an order for a guest; a guest may only hold one active order per venue
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request   body      request.CreateOrderRequest true "request body"
// @Success      201      {object}   domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders [post]
func (h *OrderHandler) HandleCreateOrder(ctx *gin.Context) {
	var req request.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.CreateOrder(ctx.Request.Context(), req.VenueID, req.CustomerName, req.DrinkID, req.DrinkTitle)
	if err != nil {
		renderOrderErr(ctx, fmt.Errorf("v1.HandleCreateOrder -> h.svc.CreateOrder -> %w", err))
		return
	}

	ctx.JSON(http.StatusCreated, order)
}

// HandleUpdateOrderStatus godoc
// @Summary      Change an order's status
// @Description  Applies a status transition; illegal transitions are rejected with both statuses in the message
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderID   path      int true "Order ID"
// @Param        request   body      request.UpdateOrderStatusRequest true "request body"
// @Success      200      {object}   domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders/{orderID}/status [patch]
func (h *OrderHandler) HandleUpdateOrderStatus(ctx *gin.Context) {
	orderID, ok := parseIDParam(ctx, "orderID")
	if !ok {
		return
	}

	var req request.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	requested, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.Transition(ctx.Request.Context(), orderID, req.VenueID, requested)
	if err != nil {
		renderOrderErr(ctx, fmt.Errorf("v1.HandleUpdateOrderStatus -> h.svc.Transition -> %w", err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleCancelOrder godoc
// @Summary      Cancel an order
// @Description  Deletes a guest's own order while it is still new
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderID   path      int true "Order ID"
// @Param        request   body      request.CancelOrderRequest true "request body"
// @Success      200      {object}   response.CancelOrderResponse
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders/{orderID} [delete]
func (h *OrderHandler) HandleCancelOrder(ctx *gin.Context) {
	orderID, ok := parseIDParam(ctx, "orderID")
	if !ok {
		return
	}

	var req request.CancelOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.Cancel(ctx.Request.Context(), orderID, req.VenueID, req.CustomerName); err != nil {
		renderOrderErr(ctx, fmt.Errorf("v1.HandleCancelOrder -> h.svc.Cancel -> %w", err))
		return
	}

	ctx.JSON(http.StatusOK, response.OrderCancelled())
}

// HandleGetOrders godoc
// @Summary      List a venue's orders
// @Tags         orders
// @Produce      json
// @Param        venueID       path   int    true  "Venue ID"
// @Param        status        query  string false "Status filter"
// @Param        customerName  query  string false "Customer filter"
// @Param        limit         query  int    false "Max results (default 100)"
// @Success      200      {array}    domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /venues/{venueID}/orders [get]
func (h *OrderHandler) HandleGetOrders(ctx *gin.Context) {
	venueID, ok := parseIDParam(ctx, "venueID")
	if !ok {
		return
	}

	filter := domain.OrderFilter{
		CustomerName: ctx.Query("customerName"),
	}

	if status := ctx.Query("status"); status != "" {
		parsed, err := domain.ParseOrderStatus(status)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		filter.Status = parsed
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	filter.Limit = limit

	orders, err := h.svc.ListOrders(ctx.Request.Context(), venueID, filter)
	if err != nil {
		renderOrderErr(ctx, fmt.Errorf("v1.HandleGetOrders -> h.svc.ListOrders -> %w", err))
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleGetPendingOrders godoc
// @Summary      List a venue's pending orders
// @Description  Active orders oldest first, for the bartender dashboard
// @Tags         orders
// @Produce      json
// @Param        venueID   path      int true "Venue ID"
// @Success      200      {array}    domain.Order
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /venues/{venueID}/orders/pending [get]
func (h *OrderHandler) HandleGetPendingOrders(ctx *gin.Context) {
	venueID, ok := parseIDParam(ctx, "venueID")
	if !ok {
		return
	}

	orders, err := h.svc.PendingOrders(ctx.Request.Context(), venueID)
	if err != nil {
		renderOrderErr(ctx, fmt.Errorf("v1.HandleGetPendingOrders -> h.svc.PendingOrders -> %w", err))
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleGetCustomerOrder godoc
// @Summary      Get a customer's current order
// @Description  Returns the guest's active order, or null when they have none
// @Tags         orders
// @Produce      json
// @Param        venueID        path  int    true "Venue ID"
// @Param        customerName   path  string true "Customer name"
// @Success      200      {object}   domain.Order
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /venues/{venueID}/orders/customer/{customerName} [get]
func (h *OrderHandler) HandleGetCustomerOrder(ctx *gin.Context) {
	venueID, ok := parseIDParam(ctx, "venueID")
	if !ok {
		return
	}

	customerName := ctx.Param("customerName")
	if customerName == "" {
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrCustomerNameRequired))
		return
	}

	order, err := h.svc.ActiveOrderFor(ctx.Request.Context(), venueID, customerName)
	if err != nil {
		renderOrderErr(ctx, fmt.Errorf("v1.HandleGetCustomerOrder -> h.svc.ActiveOrderFor -> %w", err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}
