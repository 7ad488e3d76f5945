package types

import (
	"fmt"
	"time"
)

// DefaultLockTimeout bounds how long a transaction waits on an advisory
// lock before giving up.
const DefaultLockTimeout = 30 * time.Second

// LockRequest describes an advisory lock to take for the duration of the
// current database transaction.
type LockRequest struct {
	Key string

	// Timeout of nil means DefaultLockTimeout. Zero or negative means
	// fail fast if the lock is held.
	Timeout *time.Duration
}

func (r LockRequest) GetTimeout() time.Duration {
	if r.Timeout == nil {
		return DefaultLockTimeout
	}
	return *r.Timeout
}

// MemberLockKey serializes billing transitions for a single member.
func MemberLockKey(memberID string) string {
	return fmt.Sprintf("member:%s", memberID)
}

// BillingGroupLockKey serializes membership changes for a single group.
func BillingGroupLockKey(groupID string) string {
	return fmt.Sprintf("billing_group:%s", groupID)
}
