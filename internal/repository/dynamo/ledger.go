package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/domain/ledger"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/types"
)

type ledgerRepository struct {
	client docstore.IClient
	logger *logger.Logger
}

func NewLedgerRepository(client docstore.IClient, logger *logger.Logger) ledger.Repository {
	return &ledgerRepository{
		client: client,
		logger: logger,
	}
}

type transactionItem struct {
	GymID         string    `dynamodbav:"gym_id"`
	ID            string    `dynamodbav:"id"`
	Type          string    `dynamodbav:"type"`
	Category      string    `dynamodbav:"category"`
	Amount        string    `dynamodbav:"amount"`
	Currency      string    `dynamodbav:"currency"`
	Description   string    `dynamodbav:"description,omitempty"`
	PaymentMethod string    `dynamodbav:"payment_method,omitempty"`
	ReceiptNumber string    `dynamodbav:"receipt_number,omitempty"`
	TxStatus      string    `dynamodbav:"tx_status"`
	MemberID      string    `dynamodbav:"member_id,omitempty"`
	MembershipID  string    `dynamodbav:"membership_id,omitempty"`
	Date          string    `dynamodbav:"date"`
	Status        string    `dynamodbav:"status"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
	UpdatedAt     time.Time `dynamodbav:"updated_at"`
	CreatedBy     string    `dynamodbav:"created_by,omitempty"`
	UpdatedBy     string    `dynamodbav:"updated_by,omitempty"`
}

func toTransactionItem(t *ledger.Transaction) *transactionItem {
	return &transactionItem{
		GymID:         t.GymID,
		ID:            t.ID,
		Type:          string(t.Type),
		Category:      string(t.Category),
		Amount:        t.Amount.String(),
		Currency:      t.Currency,
		Description:   t.Description,
		PaymentMethod: string(t.PaymentMethod),
		ReceiptNumber: t.ReceiptNumber,
		TxStatus:      string(t.TxStatus),
		MemberID:      t.MemberID,
		MembershipID:  t.MembershipID,
		Date:          t.Date.Format(types.CivilDateLayout),
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		CreatedBy:     t.CreatedBy,
		UpdatedBy:     t.UpdatedBy,
	}
}

func fromTransactionItem(it *transactionItem) (*ledger.Transaction, error) {
	amount, err := decimal.NewFromString(it.Amount)
	if err != nil {
		return nil, storeErr(err, "Stored transaction amount is not a valid amount")
	}
	date, err := types.ParseCivilDate(it.Date, time.UTC)
	if err != nil {
		return nil, storeErr(err, "Stored transaction date is not a valid date")
	}

	return &ledger.Transaction{
		ID:            it.ID,
		Type:          types.TransactionType(it.Type),
		Category:      types.TransactionCategory(it.Category),
		Amount:        amount,
		Currency:      it.Currency,
		Description:   it.Description,
		PaymentMethod: types.PaymentMethod(it.PaymentMethod),
		ReceiptNumber: it.ReceiptNumber,
		TxStatus:      types.TransactionStatus(it.TxStatus),
		MemberID:      it.MemberID,
		MembershipID:  it.MembershipID,
		Date:          date,
		BaseModel: types.BaseModel{
			GymID:     it.GymID,
			Status:    types.Status(it.Status),
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
			CreatedBy: it.CreatedBy,
			UpdatedBy: it.UpdatedBy,
		},
	}, nil
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, t *ledger.Transaction) error {
	av, err := attributevalue.MarshalMap(toTransactionItem(t))
	if err != nil {
		return storeErr(err, "Failed to encode transaction")
	}

	table := r.client.TableName(tableTransactions)
	condition := "attribute_not_exists(id)"

	if tx := r.client.TxFromContext(ctx); tx != nil {
		tx.Append(ddbtypes.TransactWriteItem{
			Put: &ddbtypes.Put{
				TableName:           aws.String(table),
				Item:                av,
				ConditionExpression: aws.String(condition),
			},
		})
		return nil
	}

	_, err = r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                av,
		ConditionExpression: aws.String(condition),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ierr.NewError("transaction already exists").
				WithHintf("A transaction with ID %s already exists", t.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return storeErr(err, "Failed to record transaction")
	}
	return nil
}

func (r *ledgerRepository) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	out, err := r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.client.TableName(tableTransactions)),
		Key: map[string]ddbtypes.AttributeValue{
			"gym_id": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
			"id":     &ddbtypes.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storeErr(err, "Failed to load transaction")
	}
	if out.Item == nil {
		return nil, ierr.NewError("transaction not found").
			WithHintf("Transaction %s does not exist", id).
			WithReportableDetails(map[string]any{"transaction_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var it transactionItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, storeErr(err, "Failed to decode transaction")
	}
	return fromTransactionItem(&it)
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, filter *types.LedgerTransactionFilter) ([]*ledger.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.client.TableName(tableTransactions)),
		KeyConditionExpression: aws.String("gym_id = :gym"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":gym": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
		},
	}

	if filter != nil {
		var clauses []string
		if filter.FromDate != nil {
			clauses = append(clauses, "#dt >= :from")
			input.ExpressionAttributeValues[":from"] = &ddbtypes.AttributeValueMemberS{Value: filter.FromDate.Format(types.CivilDateLayout)}
		}
		if filter.ToDate != nil {
			clauses = append(clauses, "#dt <= :to")
			input.ExpressionAttributeValues[":to"] = &ddbtypes.AttributeValueMemberS{Value: filter.ToDate.Format(types.CivilDateLayout)}
		}
		if filter.Type != nil {
			clauses = append(clauses, "#ty = :type")
			input.ExpressionAttributeValues[":type"] = &ddbtypes.AttributeValueMemberS{Value: string(*filter.Type)}
		}
		if filter.MemberID != "" {
			clauses = append(clauses, "member_id = :member")
			input.ExpressionAttributeValues[":member"] = &ddbtypes.AttributeValueMemberS{Value: filter.MemberID}
		}
		if filter.MembershipID != "" {
			clauses = append(clauses, "membership_id = :membership")
			input.ExpressionAttributeValues[":membership"] = &ddbtypes.AttributeValueMemberS{Value: filter.MembershipID}
		}
		if len(clauses) > 0 {
			expr := clauses[0]
			for _, c := range clauses[1:] {
				expr += " AND " + c
			}
			input.FilterExpression = aws.String(expr)
			input.ExpressionAttributeNames = map[string]string{
				"#dt": "date",
				"#ty": "type",
			}
		}
	}

	var out []*ledger.Transaction
	paginator := dynamodb.NewQueryPaginator(r.client.DB(), input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storeErr(err, "Failed to list transactions")
		}
		for _, raw := range page.Items {
			var it transactionItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, storeErr(err, "Failed to decode transaction")
			}
			t, err := fromTransactionItem(&it)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *ledgerRepository) UpdateTransactionStatus(ctx context.Context, id string, status types.TransactionStatus) error {
	table := r.client.TableName(tableTransactions)
	key := map[string]ddbtypes.AttributeValue{
		"gym_id": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
		"id":     &ddbtypes.AttributeValueMemberS{Value: id},
	}
	update := "SET tx_status = :status, updated_at = :now, updated_by = :actor"
	condition := "attribute_exists(id)"
	values := map[string]ddbtypes.AttributeValue{
		":status": &ddbtypes.AttributeValueMemberS{Value: string(status)},
		":now":    &ddbtypes.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		":actor":  &ddbtypes.AttributeValueMemberS{Value: types.GetActorID(ctx)},
	}

	if tx := r.client.TxFromContext(ctx); tx != nil {
		tx.Append(ddbtypes.TransactWriteItem{
			Update: &ddbtypes.Update{
				TableName:                 aws.String(table),
				Key:                       key,
				UpdateExpression:          aws.String(update),
				ConditionExpression:       aws.String(condition),
				ExpressionAttributeValues: values,
			},
		})
		return nil
	}

	_, err := r.client.DB().UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ierr.NewError("transaction not found").
				WithHintf("Transaction %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return storeErr(err, "Failed to update transaction status")
	}
	return nil
}

type dailyCashItem struct {
	GymID            string    `dynamodbav:"gym_id"`
	Date             string    `dynamodbav:"date"`
	TotalIncome      string    `dynamodbav:"total_income"`
	TotalExpense     string    `dynamodbav:"total_expense"`
	MembershipIncome string    `dynamodbav:"membership_income"`
	TxCount          int64     `dynamodbav:"tx_count"`
	Version          int64     `dynamodbav:"version"`
	Status           string    `dynamodbav:"status"`
	CreatedAt        time.Time `dynamodbav:"created_at"`
	UpdatedAt        time.Time `dynamodbav:"updated_at"`
	CreatedBy        string    `dynamodbav:"created_by,omitempty"`
	UpdatedBy        string    `dynamodbav:"updated_by,omitempty"`
}

func toDailyCashItem(d *ledger.DailyCash) *dailyCashItem {
	return &dailyCashItem{
		GymID:            d.GymID,
		Date:             d.Date,
		TotalIncome:      d.TotalIncome.String(),
		TotalExpense:     d.TotalExpense.String(),
		MembershipIncome: d.MembershipIncome.String(),
		TxCount:          d.TxCount,
		Version:          d.Version,
		Status:           string(d.Status),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		CreatedBy:        d.CreatedBy,
		UpdatedBy:        d.UpdatedBy,
	}
}

func fromDailyCashItem(it *dailyCashItem) (*ledger.DailyCash, error) {
	income, err := decimal.NewFromString(it.TotalIncome)
	if err != nil {
		return nil, storeErr(err, "Stored daily total is not a valid amount")
	}
	expense, err := decimal.NewFromString(it.TotalExpense)
	if err != nil {
		return nil, storeErr(err, "Stored daily total is not a valid amount")
	}
	membershipIncome, err := decimal.NewFromString(it.MembershipIncome)
	if err != nil {
		return nil, storeErr(err, "Stored daily total is not a valid amount")
	}

	return &ledger.DailyCash{
		Date:             it.Date,
		TotalIncome:      income,
		TotalExpense:     expense,
		MembershipIncome: membershipIncome,
		TxCount:          it.TxCount,
		Version:          it.Version,
		BaseModel: types.BaseModel{
			GymID:     it.GymID,
			Status:    types.Status(it.Status),
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
			CreatedBy: it.CreatedBy,
			UpdatedBy: it.UpdatedBy,
		},
	}, nil
}

func (r *ledgerRepository) GetDailyCash(ctx context.Context, date string) (*ledger.DailyCash, error) {
	out, err := r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.client.TableName(tableDailyCash)),
		Key: map[string]ddbtypes.AttributeValue{
			"gym_id": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
			"date":   &ddbtypes.AttributeValueMemberS{Value: date},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storeErr(err, "Failed to load daily cash")
	}
	if out.Item == nil {
		return nil, ierr.NewError("no movements recorded for date").
			WithHintf("No cash movements recorded for %s", date).
			WithReportableDetails(map[string]any{"date": date}).
			Mark(ierr.ErrNotFound)
	}

	var it dailyCashItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, storeErr(err, "Failed to decode daily cash")
	}
	return fromDailyCashItem(&it)
}

// SaveDailyCash writes the aggregate guarded by its version: creation demands
// the day's record is absent, an update demands the version read is the
// version still stored.
func (r *ledgerRepository) SaveDailyCash(ctx context.Context, d *ledger.DailyCash) error {
	prev := d.Version
	creating := prev == 0
	d.Version = prev + 1

	av, err := attributevalue.MarshalMap(toDailyCashItem(d))
	if err != nil {
		d.Version = prev
		return storeErr(err, "Failed to encode daily cash")
	}

	table := r.client.TableName(tableDailyCash)
	condition := "version = :prev"
	values := map[string]ddbtypes.AttributeValue{
		":prev": &ddbtypes.AttributeValueMemberN{Value: decimal.NewFromInt(prev).String()},
	}
	if creating {
		condition = "attribute_not_exists(#dt)"
		values = nil
	}

	put := &ddbtypes.Put{
		TableName:                 aws.String(table),
		Item:                      av,
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	}
	if creating {
		put.ExpressionAttributeNames = map[string]string{"#dt": "date"}
	}

	if tx := r.client.TxFromContext(ctx); tx != nil {
		tx.Append(ddbtypes.TransactWriteItem{Put: put})
		return nil
	}

	_, err = r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 put.TableName,
		Item:                      put.Item,
		ConditionExpression:       put.ConditionExpression,
		ExpressionAttributeNames:  put.ExpressionAttributeNames,
		ExpressionAttributeValues: put.ExpressionAttributeValues,
	})
	if err != nil {
		d.Version = prev
		if isConditionalCheckFailed(err) {
			return ierr.NewError("daily cash was modified concurrently").
				WithHint("The daily aggregate was modified concurrently, please retry").
				Mark(ierr.ErrVersionConflict)
		}
		return storeErr(err, "Failed to save daily cash")
	}
	return nil
}
