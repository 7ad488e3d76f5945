package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/membermatters/memberportal/internal/domain/member"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	"github.com/membermatters/memberportal/internal/types"
)

type memberRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewMemberRepository(db postgres.IClient, logger *logger.Logger) member.Repository {
	return &memberRepository{db: db, logger: logger}
}

const memberColumns = `
	id, email, first_name, last_name, screen_name, phone, state,
	subscription_status, stripe_customer_id, stripe_subscription_id,
	stripe_payment_method_id, stripe_card_last_digits, stripe_card_expiry,
	membership_plan_id, subscription_first_created, billing_group_id,
	billing_group_invite_id, status, created_at, updated_at, created_by, updated_by
`

func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
	INSERT INTO members (` + memberColumns + `) VALUES (
		:id, :email, :first_name, :last_name, :screen_name, :phone, :state,
		:subscription_status, :stripe_customer_id, :stripe_subscription_id,
		:stripe_payment_method_id, :stripe_card_last_digits, :stripe_card_expiry,
		:membership_plan_id, :subscription_first_created, :billing_group_id,
		:billing_group_invite_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, m)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A member with this email already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create member").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *memberRepository) Get(ctx context.Context, id string) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 AND status != $2`

	var m member.Member
	err := r.db.Querier(ctx).GetContext(ctx, &m, query, id, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("member not found").
				WithHintf("Member with ID %s was not found", id).
				WithReportableDetails(map[string]any{"member_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get member").
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE lower(email) = lower($1) AND status != $2`

	var m member.Member
	err := r.db.Querier(ctx).GetContext(ctx, &m, query, email, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("member not found").
				WithHintf("Member with email %s was not found", email).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get member by email").
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}

func (r *memberRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE stripe_customer_id = $1 AND status != $2`

	var m member.Member
	err := r.db.Querier(ctx).GetContext(ctx, &m, query, customerID, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("member not found").
				WithHint("No member matches this provider customer").
				WithReportableDetails(map[string]any{"stripe_customer_id": customerID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get member by customer id").
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}

func (r *memberRepository) List(ctx context.Context) ([]*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE status != $1 ORDER BY created_at`

	var members []*member.Member
	if err := r.db.Querier(ctx).SelectContext(ctx, &members, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list members").
			Mark(ierr.ErrDatabase)
	}
	return members, nil
}

func (r *memberRepository) ListByGroup(ctx context.Context, groupID string) ([]*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE billing_group_id = $1 AND status != $2 ORDER BY created_at`

	var members []*member.Member
	if err := r.db.Querier(ctx).SelectContext(ctx, &members, query, groupID, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list group members").
			Mark(ierr.ErrDatabase)
	}
	return members, nil
}

func (r *memberRepository) ListInvitedToGroup(ctx context.Context, groupID string) ([]*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE billing_group_invite_id = $1 AND status != $2 ORDER BY created_at`

	var members []*member.Member
	if err := r.db.Querier(ctx).SelectContext(ctx, &members, query, groupID, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invited members").
			Mark(ierr.ErrDatabase)
	}
	return members, nil
}

func (r *memberRepository) Update(ctx context.Context, m *member.Member) error {
	query := `
	UPDATE members SET
		email = :email,
		first_name = :first_name,
		last_name = :last_name,
		screen_name = :screen_name,
		phone = :phone,
		state = :state,
		subscription_status = :subscription_status,
		stripe_customer_id = :stripe_customer_id,
		stripe_subscription_id = :stripe_subscription_id,
		stripe_payment_method_id = :stripe_payment_method_id,
		stripe_card_last_digits = :stripe_card_last_digits,
		stripe_card_expiry = :stripe_card_expiry,
		membership_plan_id = :membership_plan_id,
		subscription_first_created = :subscription_first_created,
		billing_group_id = :billing_group_id,
		billing_group_invite_id = :billing_group_invite_id,
		status = :status,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id
	`
	res, err := r.db.Querier(ctx).NamedExecContext(ctx, query, m)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A member with this email already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to update member").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("member not found").
			WithHintf("Member with ID %s was not found", m.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE members SET status = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.Querier(ctx).ExecContext(ctx, query, types.StatusDeleted, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete member").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("member not found").
			WithHintf("Member with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports a postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
