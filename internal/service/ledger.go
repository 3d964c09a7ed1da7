package service

import (
	"context"

	"github.com/gymledger/gymledger/internal/api/dto"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
)

type LedgerService interface {
	// RecordTransaction appends an operator-entered ledger entry and rolls
	// it into the day's aggregate under one transaction.
	RecordTransaction(ctx context.Context, req *dto.RecordTransactionRequest) (*dto.TransactionResponse, error)

	GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error)
	ListTransactions(ctx context.Context, req *dto.ListTransactionsRequest) (*dto.ListTransactionsResponse, error)
	GetDailyCash(ctx context.Context, date string) (*dto.DailyCashResponse, error)

	// MarkRefunded flips a completed entry to refunded, the only permitted
	// ledger mutation.
	MarkRefunded(ctx context.Context, txID string) (*dto.TransactionResponse, error)
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{ServiceParams: params}
}

func (s *ledgerService) RecordTransaction(ctx context.Context, req *dto.RecordTransactionRequest) (*dto.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := req.ToTransaction(ctx, s.Config.Ledger.Currency, s.location())
	if err != nil {
		return nil, err
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.LedgerRepo.CreateTransaction(ctx, entry); err != nil {
			return err
		}
		return s.rollIntoDailyCash(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded ledger entry",
		"transaction_id", entry.ID,
		"type", entry.Type,
		"amount", entry.Amount)
	return dto.NewTransactionResponse(entry), nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	t, err := s.LedgerRepo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewTransactionResponse(t), nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, req *dto.ListTransactionsRequest) (*dto.ListTransactionsResponse, error) {
	filter, err := req.ToFilter(s.location())
	if err != nil {
		return nil, err
	}

	transactions, err := s.LedgerRepo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListTransactionsResponse(transactions), nil
}

func (s *ledgerService) GetDailyCash(ctx context.Context, date string) (*dto.DailyCashResponse, error) {
	parsed, err := types.ParseCivilDate(date, s.location())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Date must be a valid calendar date").
			Mark(ierr.ErrValidation)
	}

	day, err := s.LedgerRepo.GetDailyCash(ctx, parsed.Format(types.CivilDateLayout))
	if err != nil {
		return nil, err
	}
	return dto.NewDailyCashResponse(day), nil
}

func (s *ledgerService) MarkRefunded(ctx context.Context, txID string) (*dto.TransactionResponse, error) {
	t, err := s.LedgerRepo.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if t.TxStatus == types.TransactionStatusRefunded {
		return nil, ierr.NewError("transaction is already refunded").
			WithHint("The transaction has already been refunded").
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.LedgerRepo.UpdateTransactionStatus(ctx, txID, types.TransactionStatusRefunded); err != nil {
		return nil, err
	}

	t.TxStatus = types.TransactionStatusRefunded
	return dto.NewTransactionResponse(t), nil
}
