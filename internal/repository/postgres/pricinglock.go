package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	"github.com/membermatters/memberportal/internal/types"
)

type pricingLockRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewPricingLockRepository(db postgres.IClient, logger *logger.Logger) pricinglock.Repository {
	return &pricingLockRepository{db: db, logger: logger}
}

const pricingLockColumns = `
	id, billing_group_id, member_id, addon_id,
	locked_cost, locked_currency, locked_interval, locked_interval_count,
	stripe_price_id, stripe_subscription_item_id,
	status, created_at, updated_at, created_by, updated_by
`

func (r *pricingLockRepository) Create(ctx context.Context, l *pricinglock.PricingLock) error {
	query := `
	INSERT INTO addon_pricing_locks (` + pricingLockColumns + `) VALUES (
		:id, :billing_group_id, :member_id, :addon_id,
		:locked_cost, :locked_currency, :locked_interval, :locked_interval_count,
		:stripe_price_id, :stripe_subscription_item_id,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, l)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A pricing lock already exists for this group, member and addon").
				WithReportableDetails(map[string]any{
					"billing_group_id": l.BillingGroupID,
					"member_id":        l.MemberID,
					"addon_id":         l.AddonID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create pricing lock").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *pricingLockRepository) Get(ctx context.Context, id string) (*pricinglock.PricingLock, error) {
	query := `SELECT ` + pricingLockColumns + ` FROM addon_pricing_locks WHERE id = $1 AND status != $2`

	var l pricinglock.PricingLock
	err := r.db.Querier(ctx).GetContext(ctx, &l, query, id, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("pricing lock not found").
				WithHintf("Pricing lock with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get pricing lock").
			Mark(ierr.ErrDatabase)
	}
	return &l, nil
}

func (r *pricingLockRepository) GetByGroupAndMember(ctx context.Context, groupID, memberID string) (*pricinglock.PricingLock, error) {
	query := `SELECT ` + pricingLockColumns + ` FROM addon_pricing_locks WHERE billing_group_id = $1 AND member_id = $2 AND status != $3`

	var l pricinglock.PricingLock
	err := r.db.Querier(ctx).GetContext(ctx, &l, query, groupID, memberID, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("pricing lock not found").
				WithHint("No pricing lock exists for this group and member").
				WithReportableDetails(map[string]any{
					"billing_group_id": groupID,
					"member_id":        memberID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get pricing lock").
			Mark(ierr.ErrDatabase)
	}
	return &l, nil
}

func (r *pricingLockRepository) ListByGroupAndMember(ctx context.Context, groupID, memberID string) ([]*pricinglock.PricingLock, error) {
	query := `SELECT ` + pricingLockColumns + ` FROM addon_pricing_locks WHERE billing_group_id = $1 AND member_id = $2 AND status != $3 ORDER BY created_at`

	var locks []*pricinglock.PricingLock
	if err := r.db.Querier(ctx).SelectContext(ctx, &locks, query, groupID, memberID, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pricing locks for group and member").
			Mark(ierr.ErrDatabase)
	}
	return locks, nil
}

func (r *pricingLockRepository) ListByGroup(ctx context.Context, groupID string) ([]*pricinglock.PricingLock, error) {
	query := `SELECT ` + pricingLockColumns + ` FROM addon_pricing_locks WHERE billing_group_id = $1 AND status != $2 ORDER BY created_at`

	var locks []*pricinglock.PricingLock
	if err := r.db.Querier(ctx).SelectContext(ctx, &locks, query, groupID, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pricing locks for group").
			Mark(ierr.ErrDatabase)
	}
	return locks, nil
}

func (r *pricingLockRepository) ListByMember(ctx context.Context, memberID string) ([]*pricinglock.PricingLock, error) {
	query := `SELECT ` + pricingLockColumns + ` FROM addon_pricing_locks WHERE member_id = $1 AND status != $2 ORDER BY created_at`

	var locks []*pricinglock.PricingLock
	if err := r.db.Querier(ctx).SelectContext(ctx, &locks, query, memberID, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pricing locks for member").
			Mark(ierr.ErrDatabase)
	}
	return locks, nil
}

func (r *pricingLockRepository) List(ctx context.Context) ([]*pricinglock.PricingLock, error) {
	query := `SELECT ` + pricingLockColumns + ` FROM addon_pricing_locks WHERE status != $1 ORDER BY created_at`

	var locks []*pricinglock.PricingLock
	if err := r.db.Querier(ctx).SelectContext(ctx, &locks, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pricing locks").
			Mark(ierr.ErrDatabase)
	}
	return locks, nil
}

func (r *pricingLockRepository) Update(ctx context.Context, l *pricinglock.PricingLock) error {
	// Locked pricing fields are immutable after creation, only the
	// provider references may change.
	query := `
	UPDATE addon_pricing_locks SET
		stripe_price_id = :stripe_price_id,
		stripe_subscription_item_id = :stripe_subscription_item_id,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id
	`
	res, err := r.db.Querier(ctx).NamedExecContext(ctx, query, l)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update pricing lock").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("pricing lock not found").
			WithHintf("Pricing lock with ID %s was not found", l.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *pricingLockRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM addon_pricing_locks WHERE id = $1`
	res, err := r.db.Querier(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete pricing lock").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("pricing lock not found").
			WithHintf("Pricing lock with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
