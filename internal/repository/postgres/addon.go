package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/membermatters/memberportal/internal/domain/addon"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	"github.com/membermatters/memberportal/internal/types"
)

type addonRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewAddonRepository(db postgres.IClient, logger *logger.Logger) addon.Repository {
	return &addonRepository{db: db, logger: logger}
}

const addonColumns = `
	id, name, description, addon_type, currency, cost, interval, interval_count,
	min_quantity, max_quantity, visible, stripe_product_id, stripe_price_id,
	stripe_synced, last_synced_at,
	status, created_at, updated_at, created_by, updated_by
`

func (r *addonRepository) Create(ctx context.Context, a *addon.Addon) error {
	query := `
	INSERT INTO subscription_addons (` + addonColumns + `) VALUES (
		:id, :name, :description, :addon_type, :currency, :cost, :interval, :interval_count,
		:min_quantity, :max_quantity, :visible, :stripe_product_id, :stripe_price_id,
		:stripe_synced, :last_synced_at,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, a)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("An addon with this name and type already exists").
				WithReportableDetails(map[string]any{
					"name":       a.Name,
					"addon_type": a.AddonType,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create addon").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *addonRepository) Get(ctx context.Context, id string) (*addon.Addon, error) {
	query := `SELECT ` + addonColumns + ` FROM subscription_addons WHERE id = $1 AND status != $2`

	var a addon.Addon
	err := r.db.Querier(ctx).GetContext(ctx, &a, query, id, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("addon not found").
				WithHintf("Addon with ID %s was not found", id).
				WithReportableDetails(map[string]any{"addon_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get addon").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *addonRepository) GetByNameAndType(ctx context.Context, name string, addonType types.AddonType) (*addon.Addon, error) {
	query := `SELECT ` + addonColumns + ` FROM subscription_addons WHERE lower(name) = lower($1) AND addon_type = $2 AND status != $3`

	var a addon.Addon
	err := r.db.Querier(ctx).GetContext(ctx, &a, query, name, addonType, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("addon not found").
				WithHintf("Addon named %s was not found", name).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get addon by name").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *addonRepository) List(ctx context.Context) ([]*addon.Addon, error) {
	query := `SELECT ` + addonColumns + ` FROM subscription_addons WHERE status != $1 ORDER BY name`

	var addons []*addon.Addon
	if err := r.db.Querier(ctx).SelectContext(ctx, &addons, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list addons").
			Mark(ierr.ErrDatabase)
	}
	return addons, nil
}

func (r *addonRepository) ListVisible(ctx context.Context) ([]*addon.Addon, error) {
	query := `SELECT ` + addonColumns + ` FROM subscription_addons WHERE visible AND status != $1 ORDER BY name`

	var addons []*addon.Addon
	if err := r.db.Querier(ctx).SelectContext(ctx, &addons, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list visible addons").
			Mark(ierr.ErrDatabase)
	}
	return addons, nil
}

func (r *addonRepository) Update(ctx context.Context, a *addon.Addon) error {
	query := `
	UPDATE subscription_addons SET
		name = :name,
		description = :description,
		addon_type = :addon_type,
		currency = :currency,
		cost = :cost,
		interval = :interval,
		interval_count = :interval_count,
		min_quantity = :min_quantity,
		max_quantity = :max_quantity,
		visible = :visible,
		stripe_product_id = :stripe_product_id,
		stripe_price_id = :stripe_price_id,
		stripe_synced = :stripe_synced,
		last_synced_at = :last_synced_at,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id
	`
	res, err := r.db.Querier(ctx).NamedExecContext(ctx, query, a)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("An addon with this name and type already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to update addon").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("addon not found").
			WithHintf("Addon with ID %s was not found", a.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *addonRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE subscription_addons SET status = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.Querier(ctx).ExecContext(ctx, query, types.StatusDeleted, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete addon").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("addon not found").
			WithHintf("Addon with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
