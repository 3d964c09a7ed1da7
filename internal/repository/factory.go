package repository

import (
	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/domain/ledger"
	"github.com/gymledger/gymledger/internal/domain/member"
	"github.com/gymledger/gymledger/internal/domain/membership"
	"github.com/gymledger/gymledger/internal/domain/scanlock"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/repository/dynamo"
)

func NewMemberRepository(client docstore.IClient, log *logger.Logger) member.Repository {
	return dynamo.NewMemberRepository(client, log)
}

func NewMembershipRepository(client docstore.IClient, log *logger.Logger) membership.Repository {
	return dynamo.NewMembershipRepository(client, log)
}

func NewRecurringChargeRepository(client docstore.IClient, log *logger.Logger) membership.RecurringChargeRepository {
	return dynamo.NewRecurringChargeRepository(client, log)
}

func NewLedgerRepository(client docstore.IClient, log *logger.Logger) ledger.Repository {
	return dynamo.NewLedgerRepository(client, log)
}

func NewScanLockRepository(client docstore.IClient, log *logger.Logger) scanlock.Repository {
	return dynamo.NewScanLockRepository(client, log)
}
