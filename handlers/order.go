package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-order-go/models"
	"resto-order-go/storage"
)

// PlaceOrderRequest is the checkout body. Items is the JSON-encoded list of
// line items exactly as the client snapshotted them.
type PlaceOrderRequest struct {
	CustomerInfo  string               `json:"customerInfo" binding:"required"`
	TableNumber   *string              `json:"tableNumber"`
	Items         string               `json:"items" binding:"required"`
	TotalAmount   *int64               `json:"totalAmount" binding:"required,gte=0"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required,oneof=cash qris dana"`
	// Status is accepted for compatibility; new orders always start pending.
	Status models.OrderStatus `json:"status" binding:"omitempty,oneof=pending confirmed completed rejected"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (h *Handler) ListOrdersHandler(c *gin.Context) {
	var (
		orders []models.Order
		err    error
	)

	if status := models.OrderStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		orders, err = h.store.GetOrdersByStatus(c.Request.Context(), status)
	} else {
		orders, err = h.store.GetAllOrders(c.Request.Context())
	}
	if err != nil {
		internalError(c, "Failed to fetch orders", err)
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrderHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c, "Order not found")
		return
	}

	order, err := h.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "Order not found")
			return
		}
		internalError(c, "Failed to fetch order", err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// PlaceOrderHandler stores the order together with its completed transaction.
func (h *Handler) PlaceOrderHandler(c *gin.Context) {
	var request PlaceOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid order data", err)
		return
	}

	order, transaction, err := h.store.PlaceOrder(c.Request.Context(), models.NewOrder{
		CustomerInfo:  request.CustomerInfo,
		TableNumber:   request.TableNumber,
		Items:         request.Items,
		TotalAmount:   *request.TotalAmount,
		PaymentMethod: request.PaymentMethod,
	})
	if err != nil {
		internalError(c, "Failed to create order", err)
		return
	}

	if err := h.publisher.OrderPlaced(c.Request.Context(), *order, *transaction); err != nil {
		log.Printf("[%s] Failed to publish order %d placed event: %v", requestID(c), order.ID, err)
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) UpdateOrderStatusHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c, "Order not found")
		return
	}

	var request UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid status", err)
		return
	}

	// Validate the status from the request
	switch request.Status {
	case
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusCompleted,
		models.OrderStatusRejected:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx := c.Request.Context()

	order, previous, err := h.store.TransitionOrderStatus(ctx, id, request.Status)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			notFound(c, "Order not found")
		case errors.Is(err, storage.ErrTransition):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": "Cannot change order status from " + string(previous) + " to " + string(request.Status),
			})
		default:
			internalError(c, "Failed to update order status", err)
		}
		return
	}

	if previous != order.Status {
		if err := h.publisher.OrderStatusChanged(ctx, *order, previous); err != nil {
			log.Printf("[%s] Failed to publish order %d status event: %v", requestID(c), order.ID, err)
		}
	}

	c.JSON(http.StatusOK, order)
}
