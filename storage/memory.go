package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"resto-order-go/models"
)

type Option func(*MemStorage)

// WithClock replaces time.Now as the source of createdAt and confirmedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemStorage) {
		s.now = now
	}
}

// MemStorage keeps every entity in process memory. Ids start at 1 and are
// never reused, even after a delete.
type MemStorage struct {
	mu  sync.RWMutex
	now func() time.Time

	users        map[uint]models.User
	menuItems    map[uint]models.MenuItem
	orders       map[uint]models.Order
	transactions map[uint]models.Transaction

	nextUserID        uint
	nextMenuItemID    uint
	nextOrderID       uint
	nextTransactionID uint
}

var _ Storage = (*MemStorage)(nil)

func NewMemStorage(opts ...Option) *MemStorage {
	s := &MemStorage{
		now:               time.Now,
		users:             make(map[uint]models.User),
		menuItems:         make(map[uint]models.MenuItem),
		orders:            make(map[uint]models.Order),
		transactions:      make(map[uint]models.Transaction),
		nextUserID:        1,
		nextMenuItemID:    1,
		nextOrderID:       1,
		nextTransactionID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- Users

func (s *MemStorage) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemStorage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.users) {
		if user := s.users[id]; user.Username == username {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStorage) CreateUser(_ context.Context, newUser models.NewUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == newUser.Username {
			return nil, fmt.Errorf("username %q: %w", newUser.Username, ErrConflict)
		}
	}

	user := models.User{
		ID:       s.nextUserID,
		Username: newUser.Username,
		Password: newUser.Password,
	}
	s.nextUserID++
	s.users[user.ID] = user
	return &user, nil
}

// --- Menu items

func (s *MemStorage) GetAllMenuItems(_ context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(s.menuItems))
	for _, id := range sortedKeys(s.menuItems) {
		items = append(items, cloneMenuItem(s.menuItems[id]))
	}
	return items, nil
}

func (s *MemStorage) GetMenuItemsByCategory(_ context.Context, category models.MenuCategory) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.MenuItem{}
	for _, id := range sortedKeys(s.menuItems) {
		if item := s.menuItems[id]; item.Category == category {
			items = append(items, cloneMenuItem(item))
		}
	}
	return items, nil
}

func (s *MemStorage) GetMenuItem(_ context.Context, id uint) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.menuItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	item = cloneMenuItem(item)
	return &item, nil
}

func (s *MemStorage) CreateMenuItem(_ context.Context, newItem models.NewMenuItem) (*models.MenuItem, error) {
	if !newItem.Category.Valid() {
		return nil, fmt.Errorf("%w: menu category %q", ErrInvalid, newItem.Category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := cloneMenuItem(models.MenuItem{
		ID:          s.nextMenuItemID,
		Name:        newItem.Name,
		Description: newItem.Description,
		Price:       newItem.Price,
		Category:    newItem.Category,
		Image:       newItem.Image,
		Available:   newItem.Available,
	})
	s.nextMenuItemID++
	s.menuItems[item.ID] = item

	out := cloneMenuItem(item)
	return &out, nil
}

func (s *MemStorage) UpdateMenuItem(_ context.Context, id uint, updates models.MenuItemUpdate) (*models.MenuItem, error) {
	if updates.Category != nil && !updates.Category.Valid() {
		return nil, fmt.Errorf("%w: menu category %q", ErrInvalid, *updates.Category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menuItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	item = cloneMenuItem(item)
	updates.Apply(&item)
	s.menuItems[id] = item

	out := cloneMenuItem(item)
	return &out, nil
}

func (s *MemStorage) DeleteMenuItem(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.menuItems[id]; !ok {
		return false, nil
	}
	delete(s.menuItems, id)
	return true, nil
}

// --- Orders

func (s *MemStorage) GetAllOrders(_ context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, id := range sortedKeys(s.orders) {
		orders = append(orders, cloneOrder(s.orders[id]))
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

func (s *MemStorage) GetOrdersByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for _, id := range sortedKeys(s.orders) {
		if order := s.orders[id]; order.Status == status {
			orders = append(orders, cloneOrder(order))
		}
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

func (s *MemStorage) GetOrder(_ context.Context, id uint) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order = cloneOrder(order)
	return &order, nil
}

func (s *MemStorage) CreateOrder(_ context.Context, newOrder models.NewOrder) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.createOrderLocked(newOrder)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MemStorage) UpdateOrderStatus(_ context.Context, id uint, status models.OrderStatus, confirmedAt *time.Time) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: order status %q", ErrInvalid, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := s.setOrderStatusLocked(order, status, confirmedAt)
	return &out, nil
}

func (s *MemStorage) TransitionOrderStatus(_ context.Context, id uint, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	if !status.Valid() {
		return nil, "", fmt.Errorf("%w: order status %q", ErrInvalid, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, "", ErrNotFound
	}
	previous := order.Status
	if !previous.CanTransitionTo(status) {
		return nil, previous, fmt.Errorf("%w: %s to %s", ErrTransition, previous, status)
	}
	if previous == status {
		out := cloneOrder(order)
		return &out, previous, nil
	}
	out := s.setOrderStatusLocked(order, status, nil)
	return &out, previous, nil
}

func (s *MemStorage) setOrderStatusLocked(order models.Order, status models.OrderStatus, confirmedAt *time.Time) models.Order {
	order = cloneOrder(order)
	order.Status = status
	switch {
	case confirmedAt != nil:
		stamp := *confirmedAt
		order.ConfirmedAt = &stamp
	case status == models.OrderStatusConfirmed:
		stamp := s.now()
		order.ConfirmedAt = &stamp
	}
	s.orders[order.ID] = order
	return cloneOrder(order)
}

// PlaceOrder holds the write lock across both inserts and removes the order
// again if the transaction cannot be recorded.
func (s *MemStorage) PlaceOrder(_ context.Context, newOrder models.NewOrder) (*models.Order, *models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.createOrderLocked(newOrder)
	if err != nil {
		return nil, nil, err
	}

	transaction, err := s.createTransactionLocked(models.NewTransaction{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Status:        models.TransactionStatusCompleted,
	})
	if err != nil {
		delete(s.orders, order.ID)
		return nil, nil, fmt.Errorf("record transaction for order %d: %w", order.ID, err)
	}

	return &order, &transaction, nil
}

func (s *MemStorage) createOrderLocked(newOrder models.NewOrder) (models.Order, error) {
	if !newOrder.PaymentMethod.Valid() {
		return models.Order{}, fmt.Errorf("%w: payment method %q", ErrInvalid, newOrder.PaymentMethod)
	}

	var tableNumber *string
	if newOrder.TableNumber != nil && *newOrder.TableNumber != "" {
		table := *newOrder.TableNumber
		tableNumber = &table
	}

	order := models.Order{
		ID:            s.nextOrderID,
		CustomerInfo:  newOrder.CustomerInfo,
		TableNumber:   tableNumber,
		Items:         newOrder.Items,
		TotalAmount:   newOrder.TotalAmount,
		PaymentMethod: newOrder.PaymentMethod,
		Status:        models.OrderStatusPending,
		CreatedAt:     s.now(),
	}
	s.nextOrderID++
	s.orders[order.ID] = order
	return cloneOrder(order), nil
}

// --- Transactions

func (s *MemStorage) GetAllTransactions(_ context.Context) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]models.Transaction, 0, len(s.transactions))
	for _, id := range sortedKeys(s.transactions) {
		transactions = append(transactions, s.transactions[id])
	}
	sortTransactionsNewestFirst(transactions)
	return transactions, nil
}

func (s *MemStorage) GetTransactionsByDateRange(_ context.Context, start, end time.Time) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := []models.Transaction{}
	for _, id := range sortedKeys(s.transactions) {
		if transaction := s.transactions[id]; inRange(transaction.CreatedAt, start, end) {
			transactions = append(transactions, transaction)
		}
	}
	sortTransactionsNewestFirst(transactions)
	return transactions, nil
}

func (s *MemStorage) CreateTransaction(_ context.Context, newTransaction models.NewTransaction) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, err := s.createTransactionLocked(newTransaction)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *MemStorage) createTransactionLocked(newTransaction models.NewTransaction) (models.Transaction, error) {
	if !newTransaction.Status.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: transaction status %q", ErrInvalid, newTransaction.Status)
	}
	if !newTransaction.PaymentMethod.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: payment method %q", ErrInvalid, newTransaction.PaymentMethod)
	}

	transaction := models.Transaction{
		ID:            s.nextTransactionID,
		OrderID:       newTransaction.OrderID,
		Amount:        newTransaction.Amount,
		PaymentMethod: newTransaction.PaymentMethod,
		Status:        newTransaction.Status,
		CreatedAt:     s.now(),
	}
	s.nextTransactionID++
	s.transactions[transaction.ID] = transaction
	return transaction, nil
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Stored entities never share pointer fields with callers.

func cloneMenuItem(item models.MenuItem) models.MenuItem {
	if item.Image != nil {
		image := *item.Image
		item.Image = &image
	}
	return item
}

func cloneOrder(order models.Order) models.Order {
	if order.TableNumber != nil {
		table := *order.TableNumber
		order.TableNumber = &table
	}
	if order.ConfirmedAt != nil {
		confirmedAt := *order.ConfirmedAt
		order.ConfirmedAt = &confirmedAt
	}
	return order
}
