package testutil

import (
	"context"
	"time"

	"github.com/membermatters/memberportal/internal/config"
	"github.com/membermatters/memberportal/internal/domain/addon"
	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	"github.com/membermatters/memberportal/internal/domain/plan"
	"github.com/membermatters/memberportal/internal/domain/settings"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	MemberRepo       member.Repository
	BillingGroupRepo billinggroup.Repository
	AddonRepo        addon.Repository
	PricingLockRepo  pricinglock.Repository
	PlanRepo         plan.Repository
	SettingsRepo     settings.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	stores   Stores
	db       postgres.IClient
	gateway  *FakeGateway
	notifier *RecordingNotifier
	logger   *logger.Logger
	config   *config.Configuration
	now      time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Stripe.Enabled = true

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		MemberRepo:       NewInMemoryMemberStore(),
		BillingGroupRepo: NewInMemoryBillingGroupStore(),
		AddonRepo:        NewInMemoryAddonStore(),
		PricingLockRepo:  NewInMemoryPricingLockStore(),
		PlanRepo:         NewInMemoryPlanStore(),
		SettingsRepo:     NewInMemorySettingsStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.gateway = NewFakeGateway()
	s.notifier = NewRecordingNotifier()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.MemberRepo.(*InMemoryMemberStore).Clear()
	s.stores.BillingGroupRepo.(*InMemoryBillingGroupStore).Clear()
	s.stores.AddonRepo.(*InMemoryAddonStore).Clear()
	s.stores.PricingLockRepo.(*InMemoryPricingLockStore).Clear()
	s.stores.PlanRepo.(*InMemoryPlanStore).Clear()
	s.stores.SettingsRepo.(*InMemorySettingsStore).Clear()
	s.notifier.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the mock postgres client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetGateway returns the fake payment provider
func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

// GetNotifier returns the recording notifier
func (s *BaseServiceTestSuite) GetNotifier() *RecordingNotifier {
	return s.notifier
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// GetUUID returns a new unique identifier
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
