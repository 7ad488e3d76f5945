package types

import (
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus tracks a member's billing lifecycle against the
// payment provider. It is distinct from the member's access state.
type SubscriptionStatus string

const (
	SubscriptionStatusNone       SubscriptionStatus = "none"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusCancelling SubscriptionStatus = "cancelling"
	SubscriptionStatusInactive   SubscriptionStatus = "inactive"
)

var SubscriptionStatusValues = []SubscriptionStatus{
	SubscriptionStatusNone,
	SubscriptionStatusActive,
	SubscriptionStatusCancelling,
	SubscriptionStatusInactive,
}

func (s SubscriptionStatus) Validate() error {
	if !lo.Contains(SubscriptionStatusValues, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"allowed_values": SubscriptionStatusValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// MemberState is the member's access state in the portal.
type MemberState string

const (
	MemberStateNoob        MemberState = "noob"
	MemberStateAccountOnly MemberState = "accountonly"
	MemberStateActive      MemberState = "active"
	MemberStateInactive    MemberState = "inactive"
)

var MemberStateValues = []MemberState{
	MemberStateNoob,
	MemberStateAccountOnly,
	MemberStateActive,
	MemberStateInactive,
}

func (s MemberState) Validate() error {
	if !lo.Contains(MemberStateValues, s) {
		return ierr.NewError("invalid member state").
			WithHint("Invalid member state").
			WithReportableDetails(map[string]any{
				"allowed_values": MemberStateValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingPeriod is the recurrence interval for a price.
type BillingPeriod string

const (
	BillingPeriodDay   BillingPeriod = "day"
	BillingPeriodWeek  BillingPeriod = "week"
	BillingPeriodMonth BillingPeriod = "month"
	BillingPeriodYear  BillingPeriod = "year"
)

var BillingPeriodValues = []BillingPeriod{
	BillingPeriodDay,
	BillingPeriodWeek,
	BillingPeriodMonth,
	BillingPeriodYear,
}

func (p BillingPeriod) Validate() error {
	if !lo.Contains(BillingPeriodValues, p) {
		return ierr.NewError("invalid billing period").
			WithHint("Invalid billing period").
			WithReportableDetails(map[string]any{
				"allowed_values": BillingPeriodValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ProrationBehavior defines how proration is applied on subscription changes.
type ProrationBehavior string

const (
	ProrationBehaviorCreateProrations ProrationBehavior = "create_prorations"
	ProrationBehaviorNone             ProrationBehavior = "none"
)
