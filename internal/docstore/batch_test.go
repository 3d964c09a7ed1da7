package docstore

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"

	"github.com/gymledger/gymledger/internal/config"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
)

type fakeTransactAPI struct {
	calls []int // ops per TransactWriteItems call
	err   error
}

func (f *fakeTransactAPI) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.calls = append(f.calls, len(params.TransactItems))
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(config.GetDefaultConfig())
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func item(id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"id": &ddbtypes.AttributeValueMemberS{Value: id},
	}
}

func TestBatchWriterFlushBoundaries(t *testing.T) {
	api := &fakeTransactAPI{}
	w := NewBatchWriter(api, testLogger(t))
	ctx := context.Background()

	// One more put than fits in a single batch
	for i := 0; i < MaxBatchWriteOps+1; i++ {
		assert.NoError(t, w.Put(ctx, "memberships", item(string(rune('a'+i)))))
	}
	assert.NoError(t, w.Flush(ctx))

	assert.Equal(t, []int{MaxBatchWriteOps, 1}, api.calls)
	assert.Equal(t, MaxBatchWriteOps+1, w.Flushed())
}

func TestBatchWriterFlushEmptyIsNoop(t *testing.T) {
	api := &fakeTransactAPI{}
	w := NewBatchWriter(api, testLogger(t))

	assert.NoError(t, w.Flush(context.Background()))
	assert.Empty(t, api.calls)
}

func TestBatchWriterStartsFreshAfterFlush(t *testing.T) {
	api := &fakeTransactAPI{}
	w := NewBatchWriter(api, testLogger(t))
	ctx := context.Background()

	assert.NoError(t, w.Put(ctx, "memberships", item("a")))
	assert.NoError(t, w.Flush(ctx))
	assert.NoError(t, w.Put(ctx, "members", item("b")))
	assert.NoError(t, w.Flush(ctx))

	// the second flush must not resend the first batch's request
	assert.Equal(t, []int{1, 1}, api.calls)
}

func TestBatchWriterGuardFailureIsVersionConflict(t *testing.T) {
	api := &fakeTransactAPI{err: &ddbtypes.TransactionCanceledException{
		CancellationReasons: []ddbtypes.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}}
	w := NewBatchWriter(api, testLogger(t))
	ctx := context.Background()

	values := map[string]ddbtypes.AttributeValue{
		":prev": &ddbtypes.AttributeValueMemberN{Value: "1"},
	}
	assert.NoError(t, w.PutGuarded(ctx, "memberships", item("a"), "version = :prev", values))

	err := w.Flush(ctx)
	assert.Error(t, err)
	assert.True(t, ierr.IsVersionConflict(err))
	assert.Equal(t, 0, w.Flushed())
}
