package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/domain/scanlock"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
)

type scanLockRepository struct {
	client docstore.IClient
	logger *logger.Logger
}

// scanLockItem is the stored shape of a run marker; gym_id and key are the
// table's primary key.
type scanLockItem struct {
	GymID      string    `dynamodbav:"gym_id"`
	Key        string    `dynamodbav:"key"`
	Scope      string    `dynamodbav:"scope"`
	Date       string    `dynamodbav:"date"`
	AcquiredAt time.Time `dynamodbav:"acquired_at"`
	AcquiredBy string    `dynamodbav:"acquired_by,omitempty"`
	Status     string    `dynamodbav:"status"`
	CreatedAt  time.Time `dynamodbav:"created_at"`
	UpdatedAt  time.Time `dynamodbav:"updated_at"`
	CreatedBy  string    `dynamodbav:"created_by,omitempty"`
	UpdatedBy  string    `dynamodbav:"updated_by,omitempty"`
}

func toScanLockItem(l *scanlock.ScanLock) *scanLockItem {
	return &scanLockItem{
		GymID:      l.GymID,
		Key:        l.Key,
		Scope:      l.Scope,
		Date:       l.Date,
		AcquiredAt: l.AcquiredAt,
		AcquiredBy: l.AcquiredBy,
		Status:     string(l.Status),
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
		CreatedBy:  l.CreatedBy,
		UpdatedBy:  l.UpdatedBy,
	}
}

func NewScanLockRepository(client docstore.IClient, logger *logger.Logger) scanlock.Repository {
	return &scanLockRepository{
		client: client,
		logger: logger,
	}
}

// Acquire is a plain conditional create, never enqueued on a transaction:
// the marker must hold even when the run it guards later fails.
func (r *scanLockRepository) Acquire(ctx context.Context, lock *scanlock.ScanLock) error {
	av, err := attributevalue.MarshalMap(toScanLockItem(lock))
	if err != nil {
		return storeErr(err, "Failed to encode scan lock")
	}

	_, err = r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.client.TableName(tableScanLocks)),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{
			"#k": "key",
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ierr.NewError("scan already ran for this date").
				WithHintf("A %s run was already recorded for %s", lock.Scope, lock.Date).
				WithReportableDetails(map[string]any{
					"scope": lock.Scope,
					"date":  lock.Date,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return storeErr(err, "Failed to acquire scan lock")
	}

	r.logger.Debugw("acquired scan lock", "scope", lock.Scope, "date", lock.Date)
	return nil
}
