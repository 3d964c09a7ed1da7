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
	"github.com/gymledger/gymledger/internal/domain/membership"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/types"
)

type recurringChargeRepository struct {
	client docstore.IClient
	logger *logger.Logger
}

func NewRecurringChargeRepository(client docstore.IClient, logger *logger.Logger) membership.RecurringChargeRepository {
	return &recurringChargeRepository{
		client: client,
		logger: logger,
	}
}

type recurringChargeItem struct {
	GymID        string     `dynamodbav:"gym_id"`
	ID           string     `dynamodbav:"id"`
	MembershipID string     `dynamodbav:"membership_id"`
	MemberID     string     `dynamodbav:"member_id"`
	Amount       string     `dynamodbav:"amount"`
	ChargeStatus string     `dynamodbav:"charge_status"`
	SettledTxID  string     `dynamodbav:"settled_tx_id,omitempty"`
	SettledAt    *time.Time `dynamodbav:"settled_at,omitempty"`
	Status       string     `dynamodbav:"status"`
	CreatedAt    time.Time  `dynamodbav:"created_at"`
	UpdatedAt    time.Time  `dynamodbav:"updated_at"`
	CreatedBy    string     `dynamodbav:"created_by,omitempty"`
	UpdatedBy    string     `dynamodbav:"updated_by,omitempty"`
}

func toRecurringChargeItem(c *membership.RecurringCharge) *recurringChargeItem {
	return &recurringChargeItem{
		GymID:        c.GymID,
		ID:           c.ID,
		MembershipID: c.MembershipID,
		MemberID:     c.MemberID,
		Amount:       c.Amount.String(),
		ChargeStatus: string(c.ChargeStatus),
		SettledTxID:  c.SettledTxID,
		SettledAt:    c.SettledAt,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		CreatedBy:    c.CreatedBy,
		UpdatedBy:    c.UpdatedBy,
	}
}

func fromRecurringChargeItem(it *recurringChargeItem) (*membership.RecurringCharge, error) {
	amount, err := decimal.NewFromString(it.Amount)
	if err != nil {
		return nil, storeErr(err, "Stored charge amount is not a valid amount")
	}

	return &membership.RecurringCharge{
		ID:           it.ID,
		MembershipID: it.MembershipID,
		MemberID:     it.MemberID,
		Amount:       amount,
		ChargeStatus: types.RecurringChargeStatus(it.ChargeStatus),
		SettledTxID:  it.SettledTxID,
		SettledAt:    it.SettledAt,
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

func (r *recurringChargeRepository) Create(ctx context.Context, c *membership.RecurringCharge) error {
	av, err := attributevalue.MarshalMap(toRecurringChargeItem(c))
	if err != nil {
		return storeErr(err, "Failed to encode recurring charge")
	}

	table := r.client.TableName(tableRecurringCharges)
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
			return ierr.NewError("recurring charge already exists").
				WithHintf("A recurring charge with ID %s already exists", c.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return storeErr(err, "Failed to create recurring charge")
	}
	return nil
}

func (r *recurringChargeRepository) ListPendingByMembership(ctx context.Context, membershipID string) ([]*membership.RecurringCharge, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.client.TableName(tableRecurringCharges)),
		KeyConditionExpression: aws.String("gym_id = :gym"),
		FilterExpression:       aws.String("membership_id = :membership AND charge_status = :pending"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":gym":        &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
			":membership": &ddbtypes.AttributeValueMemberS{Value: membershipID},
			":pending":    &ddbtypes.AttributeValueMemberS{Value: string(types.RecurringChargeStatusPending)},
		},
	}

	var out []*membership.RecurringCharge
	paginator := dynamodb.NewQueryPaginator(r.client.DB(), input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storeErr(err, "Failed to list recurring charges")
		}
		for _, raw := range page.Items {
			var it recurringChargeItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, storeErr(err, "Failed to decode recurring charge")
			}
			c, err := fromRecurringChargeItem(&it)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *recurringChargeRepository) Update(ctx context.Context, c *membership.RecurringCharge) error {
	av, err := attributevalue.MarshalMap(toRecurringChargeItem(c))
	if err != nil {
		return storeErr(err, "Failed to encode recurring charge")
	}

	_, err = r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.client.TableName(tableRecurringCharges)),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ierr.NewError("recurring charge not found").
				WithHintf("Recurring charge %s does not exist", c.ID).
				Mark(ierr.ErrNotFound)
		}
		return storeErr(err, "Failed to update recurring charge")
	}
	return nil
}
