package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebar/internal/domain"
	"homebar/internal/service"
)

type mockOrderService struct {
	createOrderFn    func(ctx context.Context, venueID uint, customerName string, drinkID uint, drinkTitle string) (domain.Order, error)
	transitionFn     func(ctx context.Context, orderID, venueID uint, requested domain.OrderStatus) (domain.Order, error)
	cancelFn         func(ctx context.Context, orderID, venueID uint, customerName string) error
	listOrdersFn     func(ctx context.Context, venueID uint, filter domain.OrderFilter) ([]domain.Order, error)
	pendingOrdersFn  func(ctx context.Context, venueID uint) ([]domain.Order, error)
	activeOrderForFn func(ctx context.Context, venueID uint, customerName string) (*domain.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, venueID uint, customerName string, drinkID uint, drinkTitle string) (domain.Order, error) {
	return m.createOrderFn(ctx, venueID, customerName, drinkID, drinkTitle)
}
func (m *mockOrderService) Transition(ctx context.Context, orderID, venueID uint, requested domain.OrderStatus) (domain.Order, error) {
	return m.transitionFn(ctx, orderID, venueID, requested)
}
func (m *mockOrderService) Cancel(ctx context.Context, orderID, venueID uint, customerName string) error {
	return m.cancelFn(ctx, orderID, venueID, customerName)
}
func (m *mockOrderService) ListOrders(ctx context.Context, venueID uint, filter domain.OrderFilter) ([]domain.Order, error) {
	return m.listOrdersFn(ctx, venueID, filter)
}
func (m *mockOrderService) PendingOrders(ctx context.Context, venueID uint) ([]domain.Order, error) {
	return m.pendingOrdersFn(ctx, venueID)
}
func (m *mockOrderService) ActiveOrderFor(ctx context.Context, venueID uint, customerName string) (*domain.Order, error) {
	return m.activeOrderForFn(ctx, venueID, customerName)
}

func newTestRouter(svc OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewOrderHandler(svc)
	router := gin.New()
	router.POST("/api/v1/orders", handler.HandleCreateOrder)
	router.PATCH("/api/v1/orders/:orderID/status", handler.HandleUpdateOrderStatus)
	router.DELETE("/api/v1/orders/:orderID", handler.HandleCancelOrder)
	router.GET("/api/v1/venues/:venueID/orders", handler.HandleGetOrders)
	router.GET("/api/v1/venues/:venueID/orders/pending", handler.HandleGetPendingOrders)
	router.GET("/api/v1/venues/:venueID/orders/customer/:customerName", handler.HandleGetCustomerOrder)

	return router
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestHandleCreateOrder(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
	}{
		{
			name:     "created",
			body:     `{"venueId":1,"customerName":"Alice","drinkId":5,"drinkTitle":"Mojito"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "missing fields",
			body:     `{"venueId":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			body:     `{"venueId":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "venue not found",
			body:     `{"venueId":99,"customerName":"Alice","drinkId":5,"drinkTitle":"Mojito"}`,
			svcErr:   service.ErrVenueNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "drink out of stock",
			body:     `{"venueId":1,"customerName":"Alice","drinkId":5,"drinkTitle":"Mojito"}`,
			svcErr:   service.ErrDrinkOutOfStock,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "active order exists",
			body:     `{"venueId":1,"customerName":"Alice","drinkId":5,"drinkTitle":"Mojito"}`,
			svcErr:   service.ErrActiveOrderExists,
			wantCode: http.StatusConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockOrderService{
				createOrderFn: func(ctx context.Context, venueID uint, customerName string, drinkID uint, drinkTitle string) (domain.Order, error) {
					if tc.svcErr != nil {
						return domain.Order{}, tc.svcErr
					}
					return domain.Order{ID: 10, VenueID: venueID, CustomerName: customerName, DrinkID: drinkID, DrinkTitle: drinkTitle, Status: domain.StatusNew}, nil
				},
			}

			w := performRequest(newTestRouter(svc), http.MethodPost, "/api/v1/orders", tc.body)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantCode == http.StatusCreated {
				var order domain.Order
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
				assert.Equal(t, uint(10), order.ID)
				assert.Equal(t, domain.StatusNew, order.Status)
			}
		})
	}
}

func TestHandleUpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		svcErr   error
		wantCode int
	}{
		{
			name:     "accepted",
			path:     "/api/v1/orders/10/status",
			body:     `{"venueId":1,"status":"accepted"}`,
			wantCode: http.StatusOK,
		},
		{
			name:     "bad order id",
			path:     "/api/v1/orders/abc/status",
			body:     `{"venueId":1,"status":"accepted"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown status",
			path:     "/api/v1/orders/10/status",
			body:     `{"venueId":1,"status":"teleported"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "order not found",
			path:     "/api/v1/orders/10/status",
			body:     `{"venueId":1,"status":"accepted"}`,
			svcErr:   service.ErrOrderNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "illegal transition",
			path:     "/api/v1/orders/10/status",
			body:     `{"venueId":1,"status":"processed"}`,
			svcErr:   &domain.InvalidTransitionError{From: domain.StatusNew, To: domain.StatusProcessed},
			wantCode: http.StatusConflict,
		},
		{
			name:     "lost concurrent update",
			path:     "/api/v1/orders/10/status",
			body:     `{"venueId":1,"status":"accepted"}`,
			svcErr:   service.ErrStaleOrderStatus,
			wantCode: http.StatusConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockOrderService{
				transitionFn: func(ctx context.Context, orderID, venueID uint, requested domain.OrderStatus) (domain.Order, error) {
					if tc.svcErr != nil {
						return domain.Order{}, tc.svcErr
					}
					return domain.Order{ID: orderID, VenueID: venueID, Status: requested}, nil
				},
			}

			w := performRequest(newTestRouter(svc), http.MethodPatch, tc.path, tc.body)

			assert.Equal(t, tc.wantCode, w.Code)
		})
	}
}

func TestHandleCancelOrder(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
	}{
		{
			name:     "cancelled",
			body:     `{"venueId":1,"customerName":"Alice"}`,
			wantCode: http.StatusOK,
		},
		{
			name:     "missing customer name",
			body:     `{"venueId":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "not the owner",
			body:     `{"venueId":1,"customerName":"Bob"}`,
			svcErr:   service.ErrCancelNotOwner,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "bartender already acted",
			body:     `{"venueId":1,"customerName":"Alice"}`,
			svcErr:   service.ErrCancelTooLate,
			wantCode: http.StatusConflict,
		},
		{
			name:     "order not found",
			body:     `{"venueId":1,"customerName":"Alice"}`,
			svcErr:   service.ErrOrderNotFound,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockOrderService{
				cancelFn: func(ctx context.Context, orderID, venueID uint, customerName string) error {
					return tc.svcErr
				},
			}

			w := performRequest(newTestRouter(svc), http.MethodDelete, "/api/v1/orders/10", tc.body)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantCode == http.StatusOK {
				assert.JSONEq(t, `{"success":true,"message":"Order deleted successfully"}`, w.Body.String())
			}
		})
	}
}

func TestHandleGetOrders(t *testing.T) {
	svc := &mockOrderService{
		listOrdersFn: func(ctx context.Context, venueID uint, filter domain.OrderFilter) ([]domain.Order, error) {
			assert.Equal(t, uint(1), venueID)
			assert.Equal(t, domain.StatusNew, filter.Status)
			assert.Equal(t, "Alice", filter.CustomerName)
			assert.Equal(t, 10, filter.Limit)
			return []domain.Order{{ID: 10, VenueID: 1, Status: domain.StatusNew}}, nil
		},
	}

	w := performRequest(newTestRouter(svc), http.MethodGet,
		"/api/v1/venues/1/orders?status=new&customerName=Alice&limit=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	var orders []domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)
}

func TestHandleGetOrders_BadStatusFilter(t *testing.T) {
	svc := &mockOrderService{}

	w := performRequest(newTestRouter(svc), http.MethodGet, "/api/v1/venues/1/orders?status=frozen", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetOrders_BadVenueID(t *testing.T) {
	svc := &mockOrderService{}

	w := performRequest(newTestRouter(svc), http.MethodGet, "/api/v1/venues/0/orders", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetPendingOrders(t *testing.T) {
	svc := &mockOrderService{
		pendingOrdersFn: func(ctx context.Context, venueID uint) ([]domain.Order, error) {
			return []domain.Order{
				{ID: 10, VenueID: venueID, Status: domain.StatusNew},
				{ID: 11, VenueID: venueID, Status: domain.StatusReady},
			}, nil
		},
	}

	w := performRequest(newTestRouter(svc), http.MethodGet, "/api/v1/venues/1/orders/pending", "")

	require.Equal(t, http.StatusOK, w.Code)
	var orders []domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 2)
}

func TestHandleGetCustomerOrder(t *testing.T) {
	svc := &mockOrderService{
		activeOrderForFn: func(ctx context.Context, venueID uint, customerName string) (*domain.Order, error) {
			assert.Equal(t, "Alice", customerName)
			return &domain.Order{ID: 10, VenueID: venueID, CustomerName: customerName, Status: domain.StatusNew}, nil
		},
	}

	w := performRequest(newTestRouter(svc), http.MethodGet, "/api/v1/venues/1/orders/customer/Alice", "")

	require.Equal(t, http.StatusOK, w.Code)
	var order domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "Alice", order.CustomerName)
}

func TestHandleGetCustomerOrder_NoActiveOrder(t *testing.T) {
	svc := &mockOrderService{
		activeOrderForFn: func(ctx context.Context, venueID uint, customerName string) (*domain.Order, error) {
			return nil, nil
		},
	}

	w := performRequest(newTestRouter(svc), http.MethodGet, "/api/v1/venues/1/orders/customer/Alice", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
}

func TestErrInternalServerErrorIsOpaque(t *testing.T) {
	svc := &mockOrderService{
		pendingOrdersFn: func(ctx context.Context, venueID uint) ([]domain.Order, error) {
			return nil, context.DeadlineExceeded
		},
	}

	w := performRequest(newTestRouter(svc), http.MethodGet, "/api/v1/venues/1/orders/pending", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "deadline")
}
