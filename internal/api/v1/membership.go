package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymledger/gymledger/internal/api/dto"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/service"
)

type MembershipHandler struct {
	service service.MembershipService
	log     *logger.Logger
}

func NewMembershipHandler(service service.MembershipService, log *logger.Logger) *MembershipHandler {
	return &MembershipHandler{service: service, log: log}
}

// @Summary Assign a membership to a member
// @Description Create a time-bounded membership for an activity, adding its cost to the member's debt
// @Tags Memberships
// @Accept json
// @Produce json
// @Param membership body dto.AssignMembershipRequest true "Membership details"
// @Success 201 {object} dto.MembershipResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /memberships [post]
func (h *MembershipHandler) AssignMembership(c *gin.Context) {
	var req dto.AssignMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.AssignMembership(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to assign membership", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a membership by ID
// @Tags Memberships
// @Produce json
// @Param id path string true "Membership ID"
// @Success 200 {object} dto.MembershipResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /memberships/{id} [get]
func (h *MembershipHandler) GetMembership(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Membership ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetMembership(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List a member's unpaid memberships
// @Tags Memberships
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} dto.ListMembershipsResponse
// @Router /members/{id}/memberships/pending [get]
func (h *MembershipHandler) ListPendingMemberships(c *gin.Context) {
	resp, err := h.service.ListPendingMemberships(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel a membership
// @Description Cancel a membership, refunding it when paid or settling its debt per the requested action
// @Tags Memberships
// @Accept json
// @Produce json
// @Param id path string true "Membership ID"
// @Param cancellation body dto.CancelMembershipRequest true "Cancellation details"
// @Success 200 {object} dto.MembershipResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /memberships/{id}/cancel [post]
func (h *MembershipHandler) CancelMembership(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Membership ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.CancelMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CancelMembership(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Error("Failed to cancel membership", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
