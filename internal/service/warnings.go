package service

import "fmt"

// WarningCode enumerates the partial failure states a membership
// transition can end in. A warning means local state was mutated
// successfully but a paired provider step did not complete, it always
// carries a remediation note and is never silently discarded.
type WarningCode string

const (
	// Pricing was not locked because no additional-member addon is configured.
	WarnPricingNotLocked WarningCode = "pricing_not_locked"
	// The configured addon reference no longer resolves to a usable catalog row.
	WarnAddonUnresolvable WarningCode = "addon_unresolvable"
	// Provider price or line item creation failed, the lock row exists unsynchronized.
	WarnItemSyncFailed WarningCode = "item_sync_failed"
	// Provider line item removal failed, the local lock row was removed anyway.
	WarnItemRemoveFailed WarningCode = "item_remove_failed"
	// The member left a group without a replacement individual subscription.
	WarnSubscriptionNotCreated WarningCode = "subscription_not_created"
)

// Warning is a structured partial failure attached to an otherwise
// successful operation result.
type Warning struct {
	Code        WarningCode `json:"code"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation"`
}

func newWarning(code WarningCode, format string, args ...interface{}) Warning {
	w := Warning{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	switch code {
	case WarnPricingNotLocked:
		w.Remediation = "Configure an additional member addon to charge for group members"
	case WarnAddonUnresolvable:
		w.Remediation = "Fix the configured additional member addon reference in billing settings"
	case WarnItemSyncFailed:
		w.Remediation = "Re-run item synchronization for this pricing lock once the provider recovers"
	case WarnItemRemoveFailed:
		w.Remediation = "Verify the provider subscription item was removed and has stopped billing"
	case WarnSubscriptionNotCreated:
		w.Remediation = "Create an individual subscription for this member manually"
	}
	return w
}
