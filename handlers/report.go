package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-order-go/models"
	"resto-order-go/reports"
	"resto-order-go/utils"
)

// dateRange reads ?startDate=&endDate=. The second result is false when no
// range applies; the third is true when a 400 has already been written.
func (h *Handler) dateRange(c *gin.Context) (utils.DateRange, bool, bool) {
	dateRange, ok, err := utils.ParseDateRange(c.Query("startDate"), c.Query("endDate"), h.location)
	if err != nil {
		badRequest(c, "Invalid date range", err)
		return utils.DateRange{}, false, true
	}
	return dateRange, ok, false
}

func (h *Handler) ListTransactionsHandler(c *gin.Context) {
	dateRange, filtered, aborted := h.dateRange(c)
	if aborted {
		return
	}

	var (
		transactions []models.Transaction
		err          error
	)
	if filtered {
		transactions, err = h.store.GetTransactionsByDateRange(c.Request.Context(), dateRange.Start, dateRange.End)
	} else {
		transactions, err = h.store.GetAllTransactions(c.Request.Context())
	}
	if err != nil {
		internalError(c, "Failed to fetch transactions", err)
		return
	}

	if transactions == nil {
		transactions = []models.Transaction{}
	}

	c.JSON(http.StatusOK, transactions)
}

// ReportSummaryHandler recomputes the summary on every call. The date range
// applies to transactions only.
func (h *Handler) ReportSummaryHandler(c *gin.Context) {
	dateRange, filtered, aborted := h.dateRange(c)
	if aborted {
		return
	}

	ctx := c.Request.Context()

	var (
		transactions []models.Transaction
		err          error
	)
	if filtered {
		transactions, err = h.store.GetTransactionsByDateRange(ctx, dateRange.Start, dateRange.End)
	} else {
		transactions, err = h.store.GetAllTransactions(ctx)
	}
	if err != nil {
		internalError(c, "Failed to generate report summary", err)
		return
	}

	orders, err := h.store.GetAllOrders(ctx)
	if err != nil {
		internalError(c, "Failed to generate report summary", err)
		return
	}

	c.JSON(http.StatusOK, reports.Summarize(orders, transactions))
}
