package dynamo

import (
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ierr "github.com/gymledger/gymledger/internal/errors"
)

// Collection names resolved through the client's table prefix.
const (
	tableMembers          = "members"
	tableMemberships      = "memberships"
	tableRecurringCharges = "recurring_charges"
	tableTransactions     = "ledger_transactions"
	tableDailyCash        = "daily_cash"
	tableScanLocks        = "scan_locks"
)

// Secondary indexes.
const (
	indexMemberID   = "member_id-index"
	indexRenewalKey = "renewal_key-index"
)

func isConditionalCheckFailed(err error) bool {
	var ccf *ddbtypes.ConditionalCheckFailedException
	return ierr.As(err, &ccf)
}

func storeErr(err error, hint string) error {
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrDatabase)
}
