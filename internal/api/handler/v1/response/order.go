package response

type CancelOrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OrderCancelled() CancelOrderResponse {
	return CancelOrderResponse{
		Success: true,
		Message: "Order deleted successfully",
	}
}
