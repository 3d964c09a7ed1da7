package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/types"
)

var _ docstore.IClient = (*MockDocStoreClient)(nil) // Ensure MockDocStoreClient implements IClient

// MockDocStoreClient is a mock document store client for testing. The
// in-memory repositories apply writes immediately, so WithTx simply runs the
// function; transactional atomicity itself is not simulated.
type MockDocStoreClient struct {
	logger *logger.Logger
}

// NewMockDocStoreClient creates a new mock document store client
func NewMockDocStoreClient(logger *logger.Logger) docstore.IClient {
	return &MockDocStoreClient{
		logger: logger,
	}
}

// WithTx executes the given function within a transaction
func (c *MockDocStoreClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// TxFromContext returns the transaction from context if it exists
func (c *MockDocStoreClient) TxFromContext(ctx context.Context) *docstore.Tx {
	if tx, ok := ctx.Value(types.CtxDocTx).(*docstore.Tx); ok {
		return tx
	}
	return nil
}

// DB returns no client; the in-memory repositories never touch the store.
func (c *MockDocStoreClient) DB() *dynamodb.Client {
	return nil
}

// TableName resolves an entity to its test table name
func (c *MockDocStoreClient) TableName(entity string) string {
	return "test_" + entity
}
