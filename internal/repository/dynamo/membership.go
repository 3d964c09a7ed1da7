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

type membershipRepository struct {
	client docstore.IClient
	logger *logger.Logger
}

func NewMembershipRepository(client docstore.IClient, logger *logger.Logger) membership.Repository {
	return &membershipRepository{
		client: client,
		logger: logger,
	}
}

// membershipItem stores civil dates as YYYY-MM-DD strings so range filters
// can compare them lexicographically.
type membershipItem struct {
	GymID        string `dynamodbav:"gym_id"`
	ID           string `dynamodbav:"id"`
	MemberID     string `dynamodbav:"member_id"`
	ActivityID   string `dynamodbav:"activity_id,omitempty"`
	ActivityName string `dynamodbav:"activity_name,omitempty"`

	StartDate string `dynamodbav:"start_date"`
	EndDate   string `dynamodbav:"end_date,omitempty"`
	Cost      string `dynamodbav:"cost"`

	MembershipStatus string `dynamodbav:"membership_status"`
	PaymentStatus    string `dynamodbav:"payment_status"`
	PaymentFrequency string `dynamodbav:"payment_frequency,omitempty"`
	CustomPeriodDays int    `dynamodbav:"custom_period_days,omitempty"`

	PaidAmount    string     `dynamodbav:"paid_amount"`
	PaidAt        *time.Time `dynamodbav:"paid_at,omitempty"`
	PaymentMethod string     `dynamodbav:"payment_method,omitempty"`

	SessionsAttended int `dynamodbav:"sessions_attended,omitempty"`
	SessionsTotal    int `dynamodbav:"sessions_total,omitempty"`

	AutoRenewal          bool   `dynamodbav:"auto_renewal"`
	RenewedAutomatically bool   `dynamodbav:"renewed_automatically"`
	PreviousMembershipID string `dynamodbav:"previous_membership_id,omitempty"`
	RenewalKey           string `dynamodbav:"renewal_key,omitempty"`

	ExpiredAt *time.Time `dynamodbav:"expired_at,omitempty"`

	CancelledAt  *time.Time `dynamodbav:"cancelled_at,omitempty"`
	CancelledBy  string     `dynamodbav:"cancelled_by,omitempty"`
	CancelReason string     `dynamodbav:"cancel_reason,omitempty"`
	DebtAction   string     `dynamodbav:"debt_action,omitempty"`

	Version   int64     `dynamodbav:"version"`
	Status    string    `dynamodbav:"status"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
	CreatedBy string    `dynamodbav:"created_by,omitempty"`
	UpdatedBy string    `dynamodbav:"updated_by,omitempty"`
}

func toMembershipItem(m *membership.MembershipAssignment) *membershipItem {
	it := &membershipItem{
		GymID:                m.GymID,
		ID:                   m.ID,
		MemberID:             m.MemberID,
		ActivityID:           m.ActivityID,
		ActivityName:         m.ActivityName,
		StartDate:            m.StartDate.Format(types.CivilDateLayout),
		Cost:                 m.Cost.String(),
		MembershipStatus:     string(m.MembershipStatus),
		PaymentStatus:        string(m.PaymentStatus),
		PaymentFrequency:     string(m.PaymentFrequency),
		CustomPeriodDays:     m.CustomPeriodDays,
		PaidAmount:           m.PaidAmount.String(),
		PaidAt:               m.PaidAt,
		PaymentMethod:        string(m.PaymentMethod),
		SessionsAttended:     m.SessionsAttended,
		SessionsTotal:        m.SessionsTotal,
		AutoRenewal:          m.AutoRenewal,
		RenewedAutomatically: m.RenewedAutomatically,
		PreviousMembershipID: m.PreviousMembershipID,
		RenewalKey:           m.RenewalKey,
		ExpiredAt:            m.ExpiredAt,
		CancelledAt:          m.CancelledAt,
		CancelledBy:          m.CancelledBy,
		CancelReason:         m.CancelReason,
		DebtAction:           string(m.DebtAction),
		Version:              m.Version,
		Status:               string(m.Status),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		CreatedBy:            m.CreatedBy,
		UpdatedBy:            m.UpdatedBy,
	}
	if !m.EndDate.IsZero() {
		it.EndDate = m.EndDate.Format(types.CivilDateLayout)
	}
	return it
}

func fromMembershipItem(it *membershipItem) (*membership.MembershipAssignment, error) {
	cost, err := decimal.NewFromString(it.Cost)
	if err != nil {
		return nil, storeErr(err, "Stored membership cost is not a valid amount")
	}
	paid := decimal.Zero
	if it.PaidAmount != "" {
		paid, err = decimal.NewFromString(it.PaidAmount)
		if err != nil {
			return nil, storeErr(err, "Stored paid amount is not a valid amount")
		}
	}
	start, err := types.ParseCivilDate(it.StartDate, time.UTC)
	if err != nil {
		return nil, storeErr(err, "Stored start date is not a valid date")
	}
	var end time.Time
	if it.EndDate != "" {
		end, err = types.ParseCivilDate(it.EndDate, time.UTC)
		if err != nil {
			return nil, storeErr(err, "Stored end date is not a valid date")
		}
	}

	return &membership.MembershipAssignment{
		ID:                   it.ID,
		MemberID:             it.MemberID,
		ActivityID:           it.ActivityID,
		ActivityName:         it.ActivityName,
		StartDate:            start,
		EndDate:              end,
		Cost:                 cost,
		MembershipStatus:     types.MembershipStatus(it.MembershipStatus),
		PaymentStatus:        types.MembershipPaymentStatus(it.PaymentStatus),
		PaymentFrequency:     types.PaymentFrequency(it.PaymentFrequency),
		CustomPeriodDays:     it.CustomPeriodDays,
		PaidAmount:           paid,
		PaidAt:               it.PaidAt,
		PaymentMethod:        types.PaymentMethod(it.PaymentMethod),
		SessionsAttended:     it.SessionsAttended,
		SessionsTotal:        it.SessionsTotal,
		AutoRenewal:          it.AutoRenewal,
		RenewedAutomatically: it.RenewedAutomatically,
		PreviousMembershipID: it.PreviousMembershipID,
		RenewalKey:           it.RenewalKey,
		ExpiredAt:            it.ExpiredAt,
		CancelledAt:          it.CancelledAt,
		CancelledBy:          it.CancelledBy,
		CancelReason:         it.CancelReason,
		DebtAction:           types.DebtAction(it.DebtAction),
		Version:              it.Version,
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

func (r *membershipRepository) Create(ctx context.Context, m *membership.MembershipAssignment) error {
	av, err := attributevalue.MarshalMap(toMembershipItem(m))
	if err != nil {
		return storeErr(err, "Failed to encode membership")
	}

	table := r.client.TableName(tableMemberships)
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
			return ierr.NewError("membership already exists").
				WithHintf("A membership with ID %s already exists", m.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return storeErr(err, "Failed to create membership")
	}
	return nil
}

func (r *membershipRepository) Get(ctx context.Context, id string) (*membership.MembershipAssignment, error) {
	out, err := r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.client.TableName(tableMemberships)),
		Key: map[string]ddbtypes.AttributeValue{
			"gym_id": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
			"id":     &ddbtypes.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storeErr(err, "Failed to load membership")
	}
	if out.Item == nil {
		return nil, ierr.NewError("membership not found").
			WithHintf("Membership %s does not exist", id).
			WithReportableDetails(map[string]any{"membership_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var it membershipItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, storeErr(err, "Failed to decode membership")
	}
	return fromMembershipItem(&it)
}

func (r *membershipRepository) List(ctx context.Context, filter *types.MembershipFilter) ([]*membership.MembershipAssignment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.client.TableName(tableMemberships)),
		KeyConditionExpression: aws.String("gym_id = :gym"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":gym": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
		},
	}

	if filter != nil {
		expr, names, values := membershipFilterExpr(filter)
		if expr != "" {
			input.FilterExpression = aws.String(expr)
			if len(names) > 0 {
				input.ExpressionAttributeNames = names
			}
			for k, v := range values {
				input.ExpressionAttributeValues[k] = v
			}
		}
	}

	var out []*membership.MembershipAssignment
	paginator := dynamodb.NewQueryPaginator(r.client.DB(), input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storeErr(err, "Failed to list memberships")
		}
		for _, raw := range page.Items {
			var it membershipItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, storeErr(err, "Failed to decode membership")
			}
			m, err := fromMembershipItem(&it)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// membershipFilterExpr builds the filter expression for List. Civil dates are
// compared as their stored YYYY-MM-DD strings.
func membershipFilterExpr(filter *types.MembershipFilter) (string, map[string]string, map[string]ddbtypes.AttributeValue) {
	var clauses []string
	names := map[string]string{}
	values := map[string]ddbtypes.AttributeValue{}

	if filter.MemberID != "" {
		clauses = append(clauses, "member_id = :member")
		values[":member"] = &ddbtypes.AttributeValueMemberS{Value: filter.MemberID}
	}
	if filter.Status != nil {
		clauses = append(clauses, "membership_status = :ms")
		values[":ms"] = &ddbtypes.AttributeValueMemberS{Value: string(*filter.Status)}
	}
	if filter.PaymentStatus != nil {
		clauses = append(clauses, "payment_status = :ps")
		values[":ps"] = &ddbtypes.AttributeValueMemberS{Value: string(*filter.PaymentStatus)}
	}
	if filter.AutoRenewal != nil {
		clauses = append(clauses, "auto_renewal = :ar")
		values[":ar"] = &ddbtypes.AttributeValueMemberBOOL{Value: *filter.AutoRenewal}
	}
	if filter.EndBefore != nil {
		clauses = append(clauses, "end_date < :endBefore")
		values[":endBefore"] = &ddbtypes.AttributeValueMemberS{Value: filter.EndBefore.Format(types.CivilDateLayout)}
	}
	if filter.EndOnOrBefore != nil {
		clauses = append(clauses, "end_date <= :endOnOrBefore")
		values[":endOnOrBefore"] = &ddbtypes.AttributeValueMemberS{Value: filter.EndOnOrBefore.Format(types.CivilDateLayout)}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	expr := clauses[0]
	for _, c := range clauses[1:] {
		expr += " AND " + c
	}
	return expr, names, values
}

func (r *membershipRepository) Update(ctx context.Context, m *membership.MembershipAssignment) error {
	prev := m.Version
	m.Version = prev + 1

	av, err := attributevalue.MarshalMap(toMembershipItem(m))
	if err != nil {
		m.Version = prev
		return storeErr(err, "Failed to encode membership")
	}

	table := r.client.TableName(tableMemberships)
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
			return ierr.NewError("membership was modified concurrently").
				WithHint("The membership was modified concurrently, please retry").
				Mark(ierr.ErrVersionConflict)
		}
		return storeErr(err, "Failed to update membership")
	}
	return nil
}

func (r *membershipRepository) GetByRenewalKey(ctx context.Context, key string) (*membership.MembershipAssignment, error) {
	out, err := r.client.DB().Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.client.TableName(tableMemberships)),
		IndexName:              aws.String(indexRenewalKey),
		KeyConditionExpression: aws.String("renewal_key = :key"),
		FilterExpression:       aws.String("gym_id = :gym"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":key": &ddbtypes.AttributeValueMemberS{Value: key},
			":gym": &ddbtypes.AttributeValueMemberS{Value: types.GetGymID(ctx)},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, storeErr(err, "Failed to look up renewal key")
	}
	if len(out.Items) == 0 {
		return nil, ierr.NewError("renewal not found").
			WithHint("No membership carries this renewal key").
			Mark(ierr.ErrNotFound)
	}

	var it membershipItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return nil, storeErr(err, "Failed to decode membership")
	}
	return fromMembershipItem(&it)
}

func (r *membershipRepository) BatchExpire(ctx context.Context, ms []*membership.MembershipAssignment) error {
	if len(ms) == 0 {
		return nil
	}

	table := r.client.TableName(tableMemberships)
	writer := docstore.NewBatchWriter(r.client.DB(), r.logger)

	// Version guards keep the scan from clobbering a record a concurrent
	// writer (say a cancellation) committed after the scan read it.
	for _, m := range ms {
		prev := m.Version
		m.Version = prev + 1
		av, err := attributevalue.MarshalMap(toMembershipItem(m))
		if err != nil {
			m.Version = prev
			return storeErr(err, "Failed to encode membership")
		}
		values := map[string]ddbtypes.AttributeValue{
			":prev": &ddbtypes.AttributeValueMemberN{Value: decimal.NewFromInt(prev).String()},
		}
		if err := writer.PutGuarded(ctx, table, av, "version = :prev", values); err != nil {
			return err
		}
	}
	if err := writer.Flush(ctx); err != nil {
		return err
	}

	r.logger.Debugw("batch expired memberships", "count", writer.Flushed())
	return nil
}
