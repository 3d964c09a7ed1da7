package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/service"
)

type RenewalHandler struct {
	service service.RenewalService
	log     *logger.Logger
}

func NewRenewalHandler(service service.RenewalService, log *logger.Logger) *RenewalHandler {
	return &RenewalHandler{service: service, log: log}
}

// @Summary Renew a membership on demand
// @Description Expire the membership and create its linked successor, adding the new period's cost to the member's debt
// @Tags Renewals
// @Produce json
// @Param id path string true "Membership ID"
// @Success 200 {object} dto.RenewMembershipResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /memberships/{id}/renew [post]
func (h *RenewalHandler) RenewMembership(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Membership ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RenewMembership(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to renew membership", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List upcoming auto-renewals
// @Tags Renewals
// @Produce json
// @Param days query int false "Days ahead to look, defaults to 30"
// @Success 200 {object} dto.UpcomingRenewalsResponse
// @Router /memberships/renewals/upcoming [get]
func (h *RenewalHandler) ListUpcomingRenewals(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("days must be an integer").
				Mark(ierr.ErrValidation))
			return
		}
		days = parsed
	}

	resp, err := h.service.ListUpcomingRenewals(c.Request.Context(), days)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
