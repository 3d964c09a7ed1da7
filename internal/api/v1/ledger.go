package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymledger/gymledger/internal/api/dto"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/service"
)

type LedgerHandler struct {
	service service.LedgerService
	log     *logger.Logger
}

func NewLedgerHandler(service service.LedgerService, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{service: service, log: log}
}

// @Summary Record a manual ledger entry
// @Description Append an operator-entered income or expense to the ledger
// @Tags Ledger
// @Accept json
// @Produce json
// @Param transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /ledger/transactions [post]
func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordTransaction(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to record transaction", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a ledger entry by ID
// @Tags Ledger
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /ledger/transactions/{id} [get]
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Transaction ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetTransaction(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List ledger entries
// @Tags Ledger
// @Produce json
// @Param from_date query string false "Inclusive lower bound, YYYY-MM-DD"
// @Param to_date query string false "Inclusive upper bound, YYYY-MM-DD"
// @Param type query string false "Entry type"
// @Param member_id query string false "Filter by member"
// @Param membership_id query string false "Filter by membership"
// @Success 200 {object} dto.ListTransactionsResponse
// @Router /ledger/transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	var req dto.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListTransactions(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a day's cash summary
// @Tags Ledger
// @Produce json
// @Param date path string true "Civil date, YYYY-MM-DD"
// @Success 200 {object} dto.DailyCashResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /ledger/daily/{date} [get]
func (h *LedgerHandler) GetDailyCash(c *gin.Context) {
	date := c.Param("date")
	if date == "" {
		c.Error(ierr.NewError("date is required").
			WithHint("Date is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetDailyCash(c.Request.Context(), date)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Mark a ledger entry refunded
// @Tags Ledger
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /ledger/transactions/{id}/refund [post]
func (h *LedgerHandler) MarkRefunded(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Transaction ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.MarkRefunded(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to mark transaction refunded", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
