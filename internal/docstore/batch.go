package docstore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
)

// MaxBatchWriteOps is the store's ceiling on operations per flushed batch.
const MaxBatchWriteOps = 25

// batchAPI is the subset of the DynamoDB client the writer needs.
type batchAPI interface {
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// BatchWriter accumulates puts and commits each bounded batch as one
// transaction. Batches are not transactional with each other: a crash
// mid-scan leaves earlier flushes committed, so callers must only enqueue
// idempotent writes. A failed guard cancels the whole batch it rode in.
type BatchWriter struct {
	db      batchAPI
	logger  *logger.Logger
	pending []ddbtypes.TransactWriteItem
	flushed int
}

// NewBatchWriter creates a writer flushing at the store's batch ceiling.
func NewBatchWriter(db batchAPI, log *logger.Logger) *BatchWriter {
	return &BatchWriter{
		db:     db,
		logger: log,
	}
}

// Put enqueues an unconditioned put of item into table, flushing first when
// the batch is full.
func (w *BatchWriter) Put(ctx context.Context, table string, item map[string]ddbtypes.AttributeValue) error {
	return w.PutGuarded(ctx, table, item, "", nil)
}

// PutGuarded enqueues a put guarded by a condition expression, flushing
// first when the batch is full.
func (w *BatchWriter) PutGuarded(ctx context.Context, table string, item map[string]ddbtypes.AttributeValue, condition string, values map[string]ddbtypes.AttributeValue) error {
	if len(w.pending) >= MaxBatchWriteOps {
		if err := w.Flush(ctx); err != nil {
			return err
		}
	}

	put := &ddbtypes.Put{
		TableName: aws.String(table),
		Item:      item,
	}
	if condition != "" {
		put.ConditionExpression = aws.String(condition)
		put.ExpressionAttributeValues = values
	}
	w.pending = append(w.pending, ddbtypes.TransactWriteItem{Put: put})
	return nil
}

// Flush commits all pending puts as a single transaction. The pending set
// is rebuilt from scratch afterwards; a new batch never inherits the
// previous batch's requests or its operation count.
func (w *BatchWriter) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}

	items := w.pending
	w.pending = nil

	_, err := w.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var canceled *ddbtypes.TransactionCanceledException
		if ierr.As(err, &canceled) && isConditionalCheckFailure(canceled) {
			return ierr.WithError(err).
				WithHint("A record in the batch was modified concurrently, please retry").
				Mark(ierr.ErrVersionConflict)
		}
		return ierr.WithError(err).
			WithHint("Failed to write batch").
			Mark(ierr.ErrDatabase)
	}

	w.flushed += len(items)
	w.logger.Debugw("flushed batch", "ops", len(items))
	return nil
}

// Flushed returns the number of operations committed so far.
func (w *BatchWriter) Flushed() int {
	return w.flushed
}
