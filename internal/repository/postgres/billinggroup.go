package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	"github.com/membermatters/memberportal/internal/types"
)

type billingGroupRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewBillingGroupRepository(db postgres.IClient, logger *logger.Logger) billinggroup.Repository {
	return &billingGroupRepository{db: db, logger: logger}
}

const billingGroupColumns = `
	id, lookup_key, name, primary_member_id,
	status, created_at, updated_at, created_by, updated_by
`

func (r *billingGroupRepository) Create(ctx context.Context, g *billinggroup.BillingGroup) error {
	query := `
	INSERT INTO billing_groups (` + billingGroupColumns + `) VALUES (
		:id, :lookup_key, :name, :primary_member_id,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, g)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A billing group with this name already exists").
				WithReportableDetails(map[string]any{"name": g.Name}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create billing group").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *billingGroupRepository) Get(ctx context.Context, id string) (*billinggroup.BillingGroup, error) {
	query := `SELECT ` + billingGroupColumns + ` FROM billing_groups WHERE id = $1 AND status != $2`

	var g billinggroup.BillingGroup
	err := r.db.Querier(ctx).GetContext(ctx, &g, query, id, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("billing group not found").
				WithHintf("Billing group with ID %s was not found", id).
				WithReportableDetails(map[string]any{"billing_group_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing group").
			Mark(ierr.ErrDatabase)
	}
	return &g, nil
}

func (r *billingGroupRepository) GetByName(ctx context.Context, name string) (*billinggroup.BillingGroup, error) {
	query := `SELECT ` + billingGroupColumns + ` FROM billing_groups WHERE lower(name) = lower($1) AND status != $2`

	var g billinggroup.BillingGroup
	err := r.db.Querier(ctx).GetContext(ctx, &g, query, name, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("billing group not found").
				WithHintf("Billing group named %s was not found", name).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing group by name").
			Mark(ierr.ErrDatabase)
	}
	return &g, nil
}

func (r *billingGroupRepository) GetByPrimaryMember(ctx context.Context, memberID string) (*billinggroup.BillingGroup, error) {
	query := `SELECT ` + billingGroupColumns + ` FROM billing_groups WHERE primary_member_id = $1 AND status != $2`

	var g billinggroup.BillingGroup
	err := r.db.Querier(ctx).GetContext(ctx, &g, query, memberID, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("billing group not found").
				WithHint("Member is not the primary member of any billing group").
				WithReportableDetails(map[string]any{"member_id": memberID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing group by primary member").
			Mark(ierr.ErrDatabase)
	}
	return &g, nil
}

func (r *billingGroupRepository) List(ctx context.Context) ([]*billinggroup.BillingGroup, error) {
	query := `SELECT ` + billingGroupColumns + ` FROM billing_groups WHERE status != $1 ORDER BY created_at`

	var groups []*billinggroup.BillingGroup
	if err := r.db.Querier(ctx).SelectContext(ctx, &groups, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list billing groups").
			Mark(ierr.ErrDatabase)
	}
	return groups, nil
}

func (r *billingGroupRepository) Update(ctx context.Context, g *billinggroup.BillingGroup) error {
	query := `
	UPDATE billing_groups SET
		name = :name,
		primary_member_id = :primary_member_id,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id
	`
	res, err := r.db.Querier(ctx).NamedExecContext(ctx, query, g)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A billing group with this name already exists").
				WithReportableDetails(map[string]any{"name": g.Name}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to update billing group").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("billing group not found").
			WithHintf("Billing group with ID %s was not found", g.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *billingGroupRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE billing_groups SET status = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.Querier(ctx).ExecContext(ctx, query, types.StatusDeleted, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete billing group").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("billing group not found").
			WithHintf("Billing group with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
