package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/membermatters/memberportal/internal/domain/settings"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
)

type settingsRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewSettingsRepository(db postgres.IClient, logger *logger.Logger) settings.Repository {
	return &settingsRepository{db: db, logger: logger}
}

const settingsColumns = `
	id, additional_member_addon_id, default_payment_plan_id, stripe_enabled,
	status, created_at, updated_at, created_by, updated_by
`

// Get returns the singleton billing settings row.
func (r *settingsRepository) Get(ctx context.Context) (*settings.BillingSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM billing_settings ORDER BY created_at LIMIT 1`

	var s settings.BillingSettings
	err := r.db.Querier(ctx).GetContext(ctx, &s, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("billing settings not configured").
				WithHint("Billing settings have not been configured").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing settings").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *settingsRepository) Update(ctx context.Context, s *settings.BillingSettings) error {
	query := `
	INSERT INTO billing_settings (` + settingsColumns + `) VALUES (
		:id, :additional_member_addon_id, :default_payment_plan_id, :stripe_enabled,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	ON CONFLICT (id) DO UPDATE SET
		additional_member_addon_id = EXCLUDED.additional_member_addon_id,
		default_payment_plan_id = EXCLUDED.default_payment_plan_id,
		stripe_enabled = EXCLUDED.stripe_enabled,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	`
	if _, err := r.db.Querier(ctx).NamedExecContext(ctx, query, s); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update billing settings").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
