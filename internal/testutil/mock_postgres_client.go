package testutil

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	"github.com/membermatters/memberportal/internal/types"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient runs transactional closures without a real database.
// Advisory locks are no-ops, tests exercise the transition logic itself.
type MockPostgresClient struct {
	logger *logger.Logger
}

func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (c *MockPostgresClient) TxFromContext(ctx context.Context) *sqlx.Tx {
	return nil
}

func (c *MockPostgresClient) Querier(ctx context.Context) postgres.Querier {
	return nil
}

func (c *MockPostgresClient) LockKey(ctx context.Context, req types.LockRequest) error {
	return nil
}
