package dto

import (
	"github.com/gymledger/gymledger/internal/domain/membership"
)

// ScanItemError is one failed item of a batch run. Batch runs never abort on
// a single failure; they collect and keep going.
type ScanItemError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ScanRunResponse summarizes a scheduler-triggered batch run.
type ScanRunResponse struct {
	Date      string          `json:"date"`
	Processed int             `json:"processed"`
	Failed    int             `json:"failed"`
	Errors    []ScanItemError `json:"errors,omitempty"`
}

// RenewMembershipResponse reports a completed single renewal: the expired
// predecessor and its linked successor.
type RenewMembershipResponse struct {
	Previous *MembershipResponse `json:"previous"`
	Renewed  *MembershipResponse `json:"renewed"`
}

// UpcomingRenewal is one row of the upcoming auto-renewals report.
type UpcomingRenewal struct {
	Membership *MembershipResponse `json:"membership"`
	DaysLeft   int                 `json:"days_left"`
}

type UpcomingRenewalsResponse struct {
	Items []*UpcomingRenewal `json:"items"`
	Total int                `json:"total"`
}

func NewUpcomingRenewalsResponse(items []*UpcomingRenewal) *UpcomingRenewalsResponse {
	return &UpcomingRenewalsResponse{Items: items, Total: len(items)}
}

// NewScanItemError shortens error collection in the batch processors.
func NewScanItemError(m *membership.MembershipAssignment, err error) ScanItemError {
	return ScanItemError{ID: m.ID, Message: err.Error()}
}
