package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/service"
)

// MembershipHandler handles the membership lifecycle cron jobs.
type MembershipHandler struct {
	expirationService service.ExpirationService
	renewalService    service.RenewalService
	logger            *logger.Logger
}

func NewMembershipHandler(
	expirationService service.ExpirationService,
	renewalService service.RenewalService,
	logger *logger.Logger,
) *MembershipHandler {
	return &MembershipHandler{
		expirationService: expirationService,
		renewalService:    renewalService,
		logger:            logger,
	}
}

// ExpireMemberships flips memberships whose period has run out to expired.
// Pass force=true to bypass the once-per-day scan lock.
func (h *MembershipHandler) ExpireMemberships(c *gin.Context) {
	h.logger.Infow("starting membership expiration cron job")

	force := c.Query("force") == "true"
	response, err := h.expirationService.RunExpirationScan(c.Request.Context(), force)
	if err != nil {
		h.logger.Errorw("failed to run expiration scan",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed membership expiration cron job",
		"processed", response.Processed,
		"failed", response.Failed)
	c.JSON(http.StatusOK, response)
}

// RenewMemberships renews lapsed auto-renewal memberships. Pass force=true
// to bypass the once-per-day scan lock; renewal keys keep a forced re-run
// from doubling anything.
func (h *MembershipHandler) RenewMemberships(c *gin.Context) {
	h.logger.Infow("starting membership auto-renewal cron job")

	force := c.Query("force") == "true"
	response, err := h.renewalService.RunAutoRenewal(c.Request.Context(), force)
	if err != nil {
		h.logger.Errorw("failed to run auto-renewal",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed membership auto-renewal cron job",
		"processed", response.Processed,
		"failed", response.Failed)
	c.JSON(http.StatusOK, response)
}
