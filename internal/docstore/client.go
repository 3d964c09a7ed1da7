package docstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cenkalti/backoff/v4"

	"github.com/gymledger/gymledger/internal/config"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/types"
)

// maxTransactItems is the store's ceiling on operations in one transaction.
const maxTransactItems = 100

// IClient defines the interface for document store operations
type IClient interface {
	// WithTx wraps the given function in a transaction: writes registered by
	// repositories through the transaction in context are committed together
	// with one TransactWriteItems call, or not at all
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// TxFromContext returns the transaction from context if it exists
	TxFromContext(ctx context.Context) *Tx

	// DB returns the underlying DynamoDB client, nil outside of real
	// deployments
	DB() *dynamodb.Client

	// TableName resolves an entity collection to its table name
	TableName(entity string) string
}

// Tx accumulates the writes of one request-scoped transaction.
type Tx struct {
	mu    sync.Mutex
	items []ddbtypes.TransactWriteItem
}

// Append registers writes to be committed with the transaction.
func (t *Tx) Append(items ...ddbtypes.TransactWriteItem) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, items...)
}

// Len returns the number of registered writes.
func (t *Tx) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

func (t *Tx) take() []ddbtypes.TransactWriteItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	items := t.items
	t.items = nil
	return items
}

// Client wraps the DynamoDB client to provide transaction management
type Client struct {
	db          *dynamodb.Client
	tablePrefix string
	maxRetries  int
	logger      *logger.Logger
}

// NewClient creates a new document store client
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	loadOpts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.DynamoDB.Region),
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	var ddbOpts []func(*dynamodb.Options)
	if cfg.DynamoDB.Endpoint != "" {
		// local development endpoint
		ddbOpts = append(ddbOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		})
	}

	maxRetries := cfg.Scheduler.MaxTxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		db:          dynamodb.NewFromConfig(awsCfg, ddbOpts...),
		tablePrefix: cfg.DynamoDB.TablePrefix,
		maxRetries:  maxRetries,
		logger:      log,
	}, nil
}

func (c *Client) DB() *dynamodb.Client {
	return c.db
}

// TableName resolves an entity collection to its table name
func (c *Client) TableName(entity string) string {
	if c.tablePrefix == "" {
		return entity
	}
	return fmt.Sprintf("%s_%s", c.tablePrefix, entity)
}

// TxFromContext returns the transaction from context if it exists
func (c *Client) TxFromContext(ctx context.Context) *Tx {
	if tx, ok := ctx.Value(types.CtxDocTx).(*Tx); ok {
		return tx
	}
	return nil
}

// WithTx wraps the given function in a transaction
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// If we're already in a transaction, reuse it and let the outermost
	// caller commit
	if tx := c.TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	tx := &Tx{}
	txCtx := context.WithValue(ctx, types.CtxDocTx, tx)

	if err := fn(txCtx); err != nil {
		return err
	}

	items := tx.take()
	if len(items) == 0 {
		return nil
	}
	if len(items) > maxTransactItems {
		return ierr.NewError("transaction exceeds store limit").
			WithHintf("A single operation may write at most %d records", maxTransactItems).
			WithReportableDetails(map[string]any{
				"items": len(items),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return c.commit(ctx, items)
}

// commit writes all transaction items, retrying transient transaction
// conflicts with exponential backoff
func (c *Client) commit(ctx context.Context, items []ddbtypes.TransactWriteItem) error {
	operation := func() error {
		_, err := c.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items,
		})
		if err == nil {
			return nil
		}

		var canceled *ddbtypes.TransactionCanceledException
		if ierr.As(err, &canceled) {
			if isConditionalCheckFailure(canceled) {
				// another writer won; retry re-reads are the caller's job
				return backoff.Permanent(ierr.WithError(err).
					WithHint("The record was modified concurrently, please retry").
					Mark(ierr.ErrVersionConflict))
			}
			// transaction conflict, worth retrying
			return err
		}

		return backoff.Permanent(ierr.WithError(err).
			WithHint("Failed to commit changes").
			Mark(ierr.ErrDatabase))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(), uint64(c.maxRetries)),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		if ierr.IsVersionConflict(err) || ierr.IsDatabase(err) {
			return err
		}
		c.logger.Errorw("transaction retries exhausted", "error", err)
		return ierr.WithError(err).
			WithHint("The operation conflicted with concurrent changes, please retry").
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}

func isConditionalCheckFailure(canceled *ddbtypes.TransactionCanceledException) bool {
	for _, reason := range canceled.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

func newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = 1 * time.Second
	return bo
}
