package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymledger/gymledger/internal/api/dto"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/service"
	"github.com/gymledger/gymledger/internal/types"
)

type MemberHandler struct {
	service service.MemberService
	log     *logger.Logger
}

func NewMemberHandler(service service.MemberService, log *logger.Logger) *MemberHandler {
	return &MemberHandler{service: service, log: log}
}

// @Summary Create a new member
// @Description Register a new gym member
// @Tags Members
// @Accept json
// @Produce json
// @Param member body dto.CreateMemberRequest true "Member details"
// @Success 201 {object} dto.MemberResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /members [post]
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateMember(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create member", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a member by ID
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} dto.MemberResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /members/{id} [get]
func (h *MemberHandler) GetMember(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Member ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetMember(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List members
// @Tags Members
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} dto.ListMembersResponse
// @Router /members [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	var filter types.MemberFilter
	if status := c.Query("status"); status != "" {
		st := types.Status(status)
		filter.Status = &st
	}

	resp, err := h.service.ListMembers(c.Request.Context(), &filter)
	if err != nil {
		h.log.Error("Failed to list members", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Reconcile a member's debt counter
// @Description Recompute the member's debt from pending memberships and report drift
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} dto.DebtReconciliationResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /members/{id}/debt [get]
func (h *MemberHandler) ReconcileDebt(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Member ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ReconcileDebt(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
