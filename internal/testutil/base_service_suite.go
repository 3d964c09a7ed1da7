package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gymledger/gymledger/internal/cache"
	"github.com/gymledger/gymledger/internal/config"
	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/domain/ledger"
	"github.com/gymledger/gymledger/internal/domain/member"
	"github.com/gymledger/gymledger/internal/domain/membership"
	"github.com/gymledger/gymledger/internal/domain/scanlock"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/gymledger/gymledger/internal/validator"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	MemberRepo          member.Repository
	MembershipRepo      membership.Repository
	RecurringChargeRepo membership.RecurringChargeRepository
	LedgerRepo          ledger.Repository
	ScanLockRepo        scanlock.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     docstore.IClient
	cache  cache.Cache
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()

	var err error
	s.logger, err = logger.NewLogger(s.config)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	cache.Initialize(s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		MemberRepo:          NewInMemoryMemberStore(),
		MembershipRepo:      NewInMemoryMembershipStore(),
		RecurringChargeRepo: NewInMemoryRecurringChargeStore(),
		LedgerRepo:          NewInMemoryLedgerStore(),
		ScanLockRepo:        NewInMemoryScanLockStore(),
	}
	s.db = NewMockDocStoreClient(s.logger)
	s.cache = cache.NewInMemoryCache()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.MemberRepo.(*InMemoryMemberStore).Clear()
	s.stores.MembershipRepo.(*InMemoryMembershipStore).Clear()
	s.stores.RecurringChargeRepo.(*InMemoryRecurringChargeStore).Clear()
	s.stores.LedgerRepo.(*InMemoryLedgerStore).Clear()
	s.stores.ScanLockRepo.(*InMemoryScanLockStore).Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test document store client
func (s *BaseServiceTestSuite) GetDB() docstore.IClient {
	return s.db
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// Today returns the current civil date in the configured timezone
func (s *BaseServiceTestSuite) Today() time.Time {
	return types.DateOnly(s.now, time.UTC)
}
