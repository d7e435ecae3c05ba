package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resto-order-go/models"
)

// DefaultSQLiteURI is a shared in-memory database that lives as long as the
// process holds a connection to it.
const DefaultSQLiteURI = "file::memory:?cache=shared"

// OpenSQLite opens the database at uri and migrates every entity table.
func OpenSQLite(uri string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(uri), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", uri, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// One connection keeps the in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.MenuItem{}, &models.Order{}, &models.Transaction{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// GormStorage implements Storage on top of a gorm database.
type GormStorage struct {
	db  *gorm.DB
	now func() time.Time
}

var _ Storage = (*GormStorage)(nil)

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db, now: time.Now}
}

// WithClock returns a copy of s that stamps records using now.
func (s *GormStorage) WithClock(now func() time.Time) *GormStorage {
	return &GormStorage{db: s.db, now: now}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Users

func (s *GormStorage) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormStorage) CreateUser(ctx context.Context, newUser models.NewUser) (*models.User, error) {
	var existing models.User
	queryResult := s.db.WithContext(ctx).Where("username = ?", newUser.Username).First(&existing)
	if queryResult.Error == nil {
		return nil, fmt.Errorf("username %q: %w", newUser.Username, ErrConflict)
	}
	if !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
		return nil, queryResult.Error
	}

	user := models.User{Username: newUser.Username, Password: newUser.Password}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Menu items

func (s *GormStorage) GetAllMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	menuItems := []models.MenuItem{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&menuItems).Error; err != nil {
		return nil, err
	}
	return menuItems, nil
}

func (s *GormStorage) GetMenuItemsByCategory(ctx context.Context, category models.MenuCategory) ([]models.MenuItem, error) {
	menuItems := []models.MenuItem{}
	if err := s.db.WithContext(ctx).Where("category = ?", category).Order("id ASC").Find(&menuItems).Error; err != nil {
		return nil, err
	}
	return menuItems, nil
}

func (s *GormStorage) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var menuItem models.MenuItem
	if err := s.db.WithContext(ctx).First(&menuItem, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &menuItem, nil
}

func (s *GormStorage) CreateMenuItem(ctx context.Context, newItem models.NewMenuItem) (*models.MenuItem, error) {
	if !newItem.Category.Valid() {
		return nil, fmt.Errorf("%w: menu category %q", ErrInvalid, newItem.Category)
	}

	menuItem := &models.MenuItem{
		Name:        newItem.Name,
		Description: newItem.Description,
		Price:       newItem.Price,
		Category:    newItem.Category,
		Image:       newItem.Image,
		Available:   newItem.Available,
	}
	if err := s.db.WithContext(ctx).Create(menuItem).Error; err != nil {
		return nil, err
	}
	return menuItem, nil
}

func (s *GormStorage) UpdateMenuItem(ctx context.Context, id uint, updates models.MenuItemUpdate) (*models.MenuItem, error) {
	if updates.Category != nil && !updates.Category.Valid() {
		return nil, fmt.Errorf("%w: menu category %q", ErrInvalid, *updates.Category)
	}

	db := s.db.WithContext(ctx)

	var menuItem models.MenuItem
	if err := db.First(&menuItem, id).Error; err != nil {
		return nil, notFound(err)
	}

	// A map keeps zero values such as available=false or price=0.
	columns := make(map[string]interface{})
	if updates.Name != nil {
		columns["name"] = *updates.Name
	}
	if updates.Description != nil {
		columns["description"] = *updates.Description
	}
	if updates.Price != nil {
		columns["price"] = *updates.Price
	}
	if updates.Category != nil {
		columns["category"] = *updates.Category
	}
	switch {
	case updates.ClearImage:
		columns["image"] = nil
	case updates.Image != nil:
		columns["image"] = *updates.Image
	}
	if updates.Available != nil {
		columns["available"] = *updates.Available
	}

	if len(columns) == 0 {
		return &menuItem, nil
	}

	if err := db.Model(&menuItem).Updates(columns).Error; err != nil {
		return nil, err
	}
	if err := db.First(&menuItem, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &menuItem, nil
}

func (s *GormStorage) DeleteMenuItem(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// --- Orders

func (s *GormStorage) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

func (s *GormStorage) GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	orders := []models.Order{}
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

func (s *GormStorage) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormStorage) CreateOrder(ctx context.Context, newOrder models.NewOrder) (*models.Order, error) {
	return s.createOrder(s.db.WithContext(ctx), newOrder)
}

func (s *GormStorage) createOrder(tx *gorm.DB, newOrder models.NewOrder) (*models.Order, error) {
	if !newOrder.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: payment method %q", ErrInvalid, newOrder.PaymentMethod)
	}

	var tableNumber *string
	if newOrder.TableNumber != nil && *newOrder.TableNumber != "" {
		table := *newOrder.TableNumber
		tableNumber = &table
	}

	order := &models.Order{
		CustomerInfo:  newOrder.CustomerInfo,
		TableNumber:   tableNumber,
		Items:         newOrder.Items,
		TotalAmount:   newOrder.TotalAmount,
		PaymentMethod: newOrder.PaymentMethod,
		Status:        models.OrderStatusPending,
		CreatedAt:     s.now(),
	}
	if err := tx.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (s *GormStorage) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus, confirmedAt *time.Time) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: order status %q", ErrInvalid, status)
	}

	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.setOrderStatus(db, &order, status, confirmedAt); err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionOrderStatus reads and writes inside one database transaction. The
// single sqlite connection serializes concurrent callers.
func (s *GormStorage) TransitionOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	if !status.Valid() {
		return nil, "", fmt.Errorf("%w: order status %q", ErrInvalid, status)
	}

	var (
		order    models.Order
		previous models.OrderStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return notFound(err)
		}
		previous = order.Status
		if !previous.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrTransition, previous, status)
		}
		if previous == status {
			return nil
		}
		return s.setOrderStatus(tx, &order, status, nil)
	})
	if err != nil {
		return nil, previous, err
	}
	return &order, previous, nil
}

// setOrderStatus writes the new status and reloads order.
func (s *GormStorage) setOrderStatus(tx *gorm.DB, order *models.Order, status models.OrderStatus, confirmedAt *time.Time) error {
	columns := map[string]interface{}{"status": status}
	switch {
	case confirmedAt != nil:
		columns["confirmed_at"] = *confirmedAt
	case status == models.OrderStatusConfirmed:
		columns["confirmed_at"] = s.now()
	}

	if err := tx.Model(order).Updates(columns).Error; err != nil {
		return err
	}
	if err := tx.First(order, order.ID).Error; err != nil {
		return notFound(err)
	}
	return nil
}

func (s *GormStorage) PlaceOrder(ctx context.Context, newOrder models.NewOrder) (*models.Order, *models.Transaction, error) {
	var (
		order       *models.Order
		transaction *models.Transaction
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = s.createOrder(tx, newOrder); err != nil {
			return err
		}

		transaction, err = s.createTransaction(tx, models.NewTransaction{
			OrderID:       order.ID,
			Amount:        order.TotalAmount,
			PaymentMethod: order.PaymentMethod,
			Status:        models.TransactionStatusCompleted,
		})
		if err != nil {
			return fmt.Errorf("record transaction for order %d: %w", order.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, transaction, nil
}

// --- Transactions

func (s *GormStorage) GetAllTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	sortTransactionsNewestFirst(transactions)
	return transactions, nil
}

// GetTransactionsByDateRange compares timestamps in Go; sqlite stores them as
// text whose ordering depends on the stored offset.
func (s *GormStorage) GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	all := []models.Transaction{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&all).Error; err != nil {
		return nil, err
	}

	transactions := []models.Transaction{}
	for _, transaction := range all {
		if inRange(transaction.CreatedAt, start, end) {
			transactions = append(transactions, transaction)
		}
	}
	sortTransactionsNewestFirst(transactions)
	return transactions, nil
}

func (s *GormStorage) CreateTransaction(ctx context.Context, newTransaction models.NewTransaction) (*models.Transaction, error) {
	return s.createTransaction(s.db.WithContext(ctx), newTransaction)
}

func (s *GormStorage) createTransaction(tx *gorm.DB, newTransaction models.NewTransaction) (*models.Transaction, error) {
	if !newTransaction.Status.Valid() {
		return nil, fmt.Errorf("%w: transaction status %q", ErrInvalid, newTransaction.Status)
	}
	if !newTransaction.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: payment method %q", ErrInvalid, newTransaction.PaymentMethod)
	}

	transaction := &models.Transaction{
		OrderID:       newTransaction.OrderID,
		Amount:        newTransaction.Amount,
		PaymentMethod: newTransaction.PaymentMethod,
		Status:        newTransaction.Status,
		CreatedAt:     s.now(),
	}
	if err := tx.Create(transaction).Error; err != nil {
		return nil, err
	}
	return transaction, nil
}
