package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/membermatters/memberportal/internal/domain/plan"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	"github.com/membermatters/memberportal/internal/types"
)

type planRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewPlanRepository(db postgres.IClient, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

const planColumns = `
	id, name, currency, cost, interval, interval_count, visible,
	stripe_product_id, stripe_price_id,
	status, created_at, updated_at, created_by, updated_by
`

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
	INSERT INTO payment_plans (` + planColumns + `) VALUES (
		:id, :name, :currency, :cost, :interval, :interval_count, :visible,
		:stripe_product_id, :stripe_price_id,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, p)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A plan with this name already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM payment_plans WHERE id = $1 AND status != $2`

	var p plan.Plan
	err := r.db.Querier(ctx).GetContext(ctx, &p, query, id, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("plan not found").
				WithHintf("Plan with ID %s was not found", id).
				WithReportableDetails(map[string]any{"plan_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM payment_plans WHERE status != $1 ORDER BY name`

	var plans []*plan.Plan
	if err := r.db.Querier(ctx).SelectContext(ctx, &plans, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

func (r *planRepository) ListVisible(ctx context.Context) ([]*plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM payment_plans WHERE visible AND status != $1 ORDER BY name`

	var plans []*plan.Plan
	if err := r.db.Querier(ctx).SelectContext(ctx, &plans, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list visible plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	query := `
	UPDATE payment_plans SET
		name = :name,
		currency = :currency,
		cost = :cost,
		interval = :interval,
		interval_count = :interval_count,
		visible = :visible,
		stripe_product_id = :stripe_product_id,
		stripe_price_id = :stripe_price_id,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id
	`
	res, err := r.db.Querier(ctx).NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update plan").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("plan not found").
			WithHintf("Plan with ID %s was not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *planRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE payment_plans SET status = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.Querier(ctx).ExecContext(ctx, query, types.StatusDeleted, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete plan").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("plan not found").
			WithHintf("Plan with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
