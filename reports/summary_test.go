package reports_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"resto-order-go/models"
	"resto-order-go/reports"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func order(id uint, status models.OrderStatus, minutes int, items string) models.Order {
	return models.Order{
		ID:        id,
		Status:    status,
		Items:     items,
		CreatedAt: epoch.Add(time.Duration(minutes) * time.Minute),
	}
}

func transaction(id uint, amount int64, status models.TransactionStatus) models.Transaction {
	return models.Transaction{ID: id, OrderID: id, Amount: amount, Status: status}
}

func TestSummarizeWithoutCompletedOrders(t *testing.T) {
	summary := reports.Summarize(
		[]models.Order{order(1, models.OrderStatusPending, 0, `[]`)},
		[]models.Transaction{transaction(1, 50000, models.TransactionStatusCompleted)},
	)

	assert.Equal(t, 0, summary.TotalOrders)
	assert.Equal(t, int64(50000), summary.TotalRevenue)
	assert.Equal(t, int64(0), summary.AvgOrderValue)
	assert.Equal(t, reports.NoTopMenuItem, summary.TopMenuItem)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := reports.Summarize(nil, nil)

	assert.Equal(t, reports.Summary{
		TopMenuItem:        reports.NoTopMenuItem,
		RecentTransactions: []models.Transaction{},
	}, summary)
}

func TestSummarizeAverageIsRounded(t *testing.T) {
	orders := []models.Order{
		order(1, models.OrderStatusCompleted, 0, `[]`),
		order(2, models.OrderStatusCompleted, 1, `[]`),
		order(3, models.OrderStatusCompleted, 2, `[]`),
		order(4, models.OrderStatusRejected, 3, `[]`),
	}
	transactions := []models.Transaction{
		transaction(4, 1, models.TransactionStatusFailed),
		transaction(3, 10001, models.TransactionStatusCompleted),
		transaction(2, 10000, models.TransactionStatusCompleted),
		transaction(1, 10001, models.TransactionStatusCompleted),
	}

	summary := reports.Summarize(orders, transactions)

	assert.Equal(t, 3, summary.TotalOrders)
	assert.Equal(t, int64(30002), summary.TotalRevenue, "failed transactions are not revenue")
	assert.Equal(t, int64(10001), summary.AvgOrderValue)
	assert.Len(t, summary.RecentTransactions, 4)
}

func TestSummarizeKeepsTenRecentTransactions(t *testing.T) {
	var transactions []models.Transaction
	for i := 20; i > 0; i-- {
		transactions = append(transactions, transaction(uint(i), 100, models.TransactionStatusCompleted))
	}

	summary := reports.Summarize(nil, transactions)

	assert.Len(t, summary.RecentTransactions, reports.RecentTransactionLimit)
	assert.Equal(t, uint(20), summary.RecentTransactions[0].ID)
	assert.Equal(t, uint(11), summary.RecentTransactions[9].ID)
	assert.Equal(t, int64(2000), summary.TotalRevenue)
}

func TestTopMenuItemSkipsMalformedItems(t *testing.T) {
	orders := []models.Order{
		order(1, models.OrderStatusCompleted, 0, `[{"menuItemId":1,"name":"Nasi Gudeg Special","price":25000,"quantity":2}]`),
		order(2, models.OrderStatusCompleted, 1, `{not json`),
		order(3, models.OrderStatusPending, 2, `[{"menuItemId":4,"name":"Es Jeruk Peras","price":8000,"quantity":1}]`),
	}

	assert.Equal(t, "Nasi Gudeg Special", reports.TopMenuItem(orders))

	summary := reports.Summarize(orders, nil)
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, "Nasi Gudeg Special", summary.TopMenuItem)
}

func TestTopMenuItemSumsAcrossOrders(t *testing.T) {
	orders := []models.Order{
		order(1, models.OrderStatusPending, 0, `[{"name":"Es Teh Manis","quantity":1},{"name":"Keripik Singkong","quantity":2}]`),
		order(2, models.OrderStatusPending, 1, `[{"name":"Es Teh Manis","quantity":2}]`),
	}

	assert.Equal(t, "Es Teh Manis", reports.TopMenuItem(orders))
}

func TestTopMenuItemTieGoesToFirstSeen(t *testing.T) {
	// Listed newest first, the way the store returns them.
	orders := []models.Order{
		order(2, models.OrderStatusPending, 5, `[{"name":"Es Teh Manis","quantity":3}]`),
		order(1, models.OrderStatusPending, 0, `[{"name":"Nasi Goreng Kampung","quantity":3}]`),
	}

	assert.Equal(t, "Nasi Goreng Kampung", reports.TopMenuItem(orders))
}

func TestTopMenuItemNoData(t *testing.T) {
	orders := []models.Order{order(1, models.OrderStatusPending, 0, `garbage`)}

	assert.Equal(t, reports.NoTopMenuItem, reports.TopMenuItem(orders))
}
