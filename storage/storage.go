// Package storage holds the repository contract the HTTP layer depends on and
// its implementations.
package storage

import (
	"context"
	"errors"
	"slices"
	"time"

	"resto-order-go/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	ErrInvalid  = errors.New("invalid value")

	// ErrTransition is returned when an order may not move to the requested status.
	ErrTransition = errors.New("order status transition not allowed")
)

// Storage is implemented by MemStorage and GormStorage.
//
// Lookups of ids that do not exist return ErrNotFound. Order and transaction
// listings are sorted by creation time, most recent first.
type Storage interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user models.NewUser) (*models.User, error)

	GetAllMenuItems(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItemsByCategory(ctx context.Context, category models.MenuCategory) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item models.NewMenuItem) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uint, updates models.MenuItemUpdate) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uint) (bool, error)

	GetAllOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	CreateOrder(ctx context.Context, order models.NewOrder) (*models.Order, error)
	// UpdateOrderStatus sets the status of an order. A nil confirmedAt keeps the
	// stored value, except when moving to confirmed, which stamps the current time.
	UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus, confirmedAt *time.Time) (*models.Order, error)
	// TransitionOrderStatus checks the move with OrderStatus.CanTransitionTo and
	// writes it while holding the order, so concurrent moves cannot both pass.
	// It returns the order and the status it had before; a refused move returns
	// ErrTransition together with the current status. Moving to the current
	// status changes nothing.
	TransitionOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, models.OrderStatus, error)
	// PlaceOrder creates the order and its completed transaction as one unit.
	PlaceOrder(ctx context.Context, order models.NewOrder) (*models.Order, *models.Transaction, error)

	GetAllTransactions(ctx context.Context) ([]models.Transaction, error)
	// GetTransactionsByDateRange returns transactions created within [start, end].
	GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, transaction models.NewTransaction) (*models.Transaction, error)
}

// sortOrdersNewestFirst expects orders in insertion order and keeps it for ties.
func sortOrdersNewestFirst(orders []models.Order) {
	slices.SortStableFunc(orders, func(a, b models.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func sortTransactionsNewestFirst(transactions []models.Transaction) {
	slices.SortStableFunc(transactions, func(a, b models.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
