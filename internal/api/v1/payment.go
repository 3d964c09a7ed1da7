package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymledger/gymledger/internal/api/dto"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/service"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

// @Summary Register a membership payment
// @Description Settle one or more of a member's memberships, append the income entry and update the day's aggregate atomically
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment body dto.RegisterPaymentRequest true "Payment details"
// @Success 201 {object} dto.RegisterPaymentResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /payments [post]
func (h *PaymentHandler) RegisterPayment(c *gin.Context) {
	var req dto.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RegisterPayment(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to register payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
