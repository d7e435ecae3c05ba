// Package reports derives sales figures from stored orders and transactions.
// Nothing is cached; every summary is recomputed from the slices it is given.
package reports

import (
	"cmp"
	"math"
	"slices"

	"resto-order-go/models"
)

const (
	NoTopMenuItem          = "No data"
	RecentTransactionLimit = 10
)

type Summary struct {
	TotalOrders        int                  `json:"totalOrders"`
	TotalRevenue       int64                `json:"totalRevenue"`
	AvgOrderValue      int64                `json:"avgOrderValue"`
	TopMenuItem        string               `json:"topMenuItem"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
}

// Summarize expects transactions most recent first, as the store returns them.
// A date range narrows transactions only; order counts and the top item always
// cover every order.
func Summarize(orders []models.Order, transactions []models.Transaction) Summary {
	completed := 0
	for _, order := range orders {
		if order.Status == models.OrderStatusCompleted {
			completed++
		}
	}

	var revenue int64
	for _, transaction := range transactions {
		if transaction.Status == models.TransactionStatusCompleted {
			revenue += transaction.Amount
		}
	}

	recent := transactions[:min(len(transactions), RecentTransactionLimit)]

	return Summary{
		TotalOrders:        completed,
		TotalRevenue:       revenue,
		AvgOrderValue:      average(revenue, completed),
		TopMenuItem:        TopMenuItem(orders),
		RecentTransactions: append([]models.Transaction{}, recent...),
	}
}

func average(total int64, count int) int64 {
	if count == 0 {
		return 0
	}
	return int64(math.Round(float64(total) / float64(count)))
}

// TopMenuItem returns the item name with the largest total quantity over all
// orders. Orders are scanned oldest first and a tie goes to the name seen
// first. Orders whose items do not decode are skipped.
func TopMenuItem(orders []models.Order) string {
	chronological := slices.Clone(orders)
	slices.SortStableFunc(chronological, func(a, b models.Order) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	counts := make(map[string]int64)
	var seen []string
	for _, order := range chronological {
		items, err := order.LineItems()
		if err != nil {
			continue
		}
		for _, item := range items {
			if _, ok := counts[item.Name]; !ok {
				seen = append(seen, item.Name)
			}
			counts[item.Name] += item.Quantity
		}
	}

	if len(seen) == 0 {
		return NoTopMenuItem
	}

	top := seen[0]
	for _, name := range seen[1:] {
		if counts[name] > counts[top] {
			top = name
		}
	}
	return top
}
