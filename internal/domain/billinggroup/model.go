package billinggroup

import (
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
)

// BillingGroup is a set of members billed through its primary member's
// subscription.
type BillingGroup struct {
	ID              string `db:"id" json:"id"`
	LookupKey       string `db:"lookup_key" json:"lookup_key"`
	Name            string `db:"name" json:"name"`
	PrimaryMemberID string `db:"primary_member_id" json:"primary_member_id"`

	types.BaseModel
}

func (g *BillingGroup) TableName() string {
	return "billing_groups"
}

func (g *BillingGroup) Validate() error {
	if g.Name == "" {
		return ierr.NewError("billing group name is required").
			WithHint("Name is required").
			Mark(ierr.ErrValidation)
	}
	if g.PrimaryMemberID == "" {
		return ierr.NewError("billing group primary member is required").
			WithHint("A billing group must have a primary member").
			Mark(ierr.ErrValidation)
	}
	return nil
}
