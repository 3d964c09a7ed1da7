package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	memberdomain "github.com/gymledger/gymledger/internal/domain/member"
	"github.com/gymledger/gymledger/internal/docstore"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/types"
)

type memberRepository struct {
	client docstore.IClient
	logger *logger.Logger
}

func NewMemberRepository(client docstore.IClient, logger *logger.Logger) memberdomain.Repository {
	return &memberRepository{
		client: client,
		logger: logger,
	}
}

// memberItem is the stored shape of a member; money travels as strings.
type memberItem struct {
	GymID     string            `dynamodbav:"gym_id"`
	ID        string            `dynamodbav:"id"`
	Name      string            `dynamodbav:"name"`
	Email     string            `dynamodbav:"email,omitempty"`
	Phone     string            `dynamodbav:"phone,omitempty"`
	TotalDebt string            `dynamodbav:"total_debt"`
	Metadata  map[string]string `dynamodbav:"metadata,omitempty"`
	Version   int64             `dynamodbav:"version"`
	Status    string            `dynamodbav:"status"`
	CreatedAt time.Time         `dynamodbav:"created_at"`
	UpdatedAt time.Time         `dynamodbav:"updated_at"`
	CreatedBy string            `dynamodbav:"created_by,omitempty"`
	UpdatedBy string            `dynamodbav:"updated_by,omitempty"`
}

func toMemberItem(m *memberdomain.Member) *memberItem {
	return &memberItem{
		GymID:     m.GymID,
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		TotalDebt: m.TotalDebt.String(),
		Metadata:  m.Metadata,
		Version:   m.Version,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		CreatedBy: m.CreatedBy,
		UpdatedBy: m.UpdatedBy,
	}
}

func fromMemberItem(it *memberItem) (*memberdomain.Member, error) {
	debt, err := decimal.NewFromString(it.TotalDebt)
	if err != nil {
		return nil, storeErr(err, "Stored member debt is not a valid amount")
	}

	return &memberdomain.Member{
		ID:        it.ID,
		Name:      it.Name,
		Email:     it.Email,
		Phone:     it.Phone,
		TotalDebt: debt,
		Metadata:  it.Metadata,
		Version:   it.Version,
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

func (r *memberRepository) Create(ctx context.Context, m *memberdomain.Member) error {
	av, err := attributevalue.MarshalMap(toMemberItem(m))
	if err != nil {
		return storeErr(err, "Failed to encode member")
	}

	table := r.client.TableName(tableMembers)
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
			return ierr.NewError("member already exists").
				WithHintf("A member with ID %s already exists", m.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return storeErr(err, "Failed to create member")
	}
	return nil
}

func (r *memberRepository) Get(ctx context.Context, id string) (*memberdomain.Member, error) {
	out, err := r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.client.TableName(tableMembers)),
		Key: map[string]ddbtypes.AttributeValue{
			"gym_id": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
			"id":     &ddbtypes.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storeErr(err, "Failed to load member")
	}
	if out.Item == nil {
		return nil, ierr.NewError("member not found").
			WithHintf("Member %s does not exist", id).
			WithReportableDetails(map[string]any{"member_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var it memberItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, storeErr(err, "Failed to decode member")
	}
	return fromMemberItem(&it)
}

func (r *memberRepository) List(ctx context.Context, filter *types.MemberFilter) ([]*memberdomain.Member, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.client.TableName(tableMembers)),
		KeyConditionExpression: aws.String("gym_id = :gym"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":gym": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
		},
	}
	if filter != nil && filter.Status != nil {
		input.FilterExpression = aws.String("#st = :status")
		input.ExpressionAttributeNames = map[string]string{"#st": "status"}
		input.ExpressionAttributeValues[":status"] = &ddbtypes.AttributeValueMemberS{Value: string(*filter.Status)}
	}

	var members []*memberdomain.Member
	paginator := dynamodb.NewQueryPaginator(r.client.DB(), input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storeErr(err, "Failed to list members")
		}
		for _, raw := range page.Items {
			var it memberItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, storeErr(err, "Failed to decode member")
			}
			m, err := fromMemberItem(&it)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
	}
	return members, nil
}

func (r *memberRepository) Update(ctx context.Context, m *memberdomain.Member) error {
	prev := m.Version
	m.Version = prev + 1

	av, err := attributevalue.MarshalMap(toMemberItem(m))
	if err != nil {
		m.Version = prev
		return storeErr(err, "Failed to encode member")
	}

	table := r.client.TableName(tableMembers)
	condition := "version = :prev"
	values := map[string]ddbtypes.AttributeValue{
		":prev": &ddbtypes.AttributeValueMemberN{Value: decimal.NewFromInt(prev).String()},
	}

	if tx := r.client.TxFromContext(ctx); tx != nil {
		tx.Append(ddbtypes.TransactWriteItem{
			Put: &ddbtypes.Put{
				TableName:                 aws.String(table),
				Item:                      av,
				ConditionExpression:       aws.String(condition),
				ExpressionAttributeValues: values,
			},
		})
		return nil
	}

	_, err = r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(table),
		Item:                      av,
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		m.Version = prev
		if isConditionalCheckFailed(err) {
			return ierr.NewError("member was modified concurrently").
				WithHint("The member was modified concurrently, please retry").
				Mark(ierr.ErrVersionConflict)
		}
		return storeErr(err, "Failed to update member")
	}
	return nil
}
