package models

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRejected  OrderStatus = "rejected"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
// Writing the current status again is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}

	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed || next == OrderStatusRejected
	case OrderStatusConfirmed:
		return next == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusRejected:
		return false
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodQRIS PaymentMethod = "qris"
	PaymentMethodDana PaymentMethod = "dana"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodQRIS, PaymentMethodDana:
		return true
	}
	return false
}

// LineItem is a snapshot of a menu item taken when the order was placed.
type LineItem struct {
	MenuItemID uint   `json:"menuItemId"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int64  `json:"quantity"`
}

type Order struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	CustomerInfo  string        `json:"customerInfo" gorm:"not null"`
	TableNumber   *string       `json:"tableNumber"`
	Items         string        `json:"items" gorm:"type:text;not null"` // JSON-encoded []LineItem
	TotalAmount   int64         `json:"totalAmount" gorm:"not null"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"not null"`
	Status        OrderStatus   `json:"status" gorm:"not null;index"`
	CreatedAt     time.Time     `json:"createdAt"`
	ConfirmedAt   *time.Time    `json:"confirmedAt"`
}

// LineItems decodes the embedded items blob.
func (o Order) LineItems() ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal([]byte(o.Items), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// NewOrder is the payload for creating an order. Orders always start pending.
type NewOrder struct {
	CustomerInfo  string
	TableNumber   *string
	Items         string
	TotalAmount   int64
	PaymentMethod PaymentMethod
}

// EncodeLineItems is the inverse of Order.LineItems.
func EncodeLineItems(items []LineItem) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
