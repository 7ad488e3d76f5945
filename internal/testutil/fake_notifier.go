package testutil

import (
	"context"
	"sync"

	"github.com/membermatters/memberportal/internal/email"
)

var _ email.Notifier = (*RecordingNotifier)(nil)

// Notification is a recorded outbound email.
type Notification struct {
	Kind string
	To   string
}

// RecordingNotifier captures notifications instead of sending them.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []Notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) record(kind, to string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, Notification{Kind: kind, To: to})
}

// CountByKind returns how many notifications of the given kind were sent.
func (n *RecordingNotifier) CountByKind(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, sent := range n.Sent {
		if sent.Kind == kind {
			count++
		}
	}
	return count
}

func (n *RecordingNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = nil
}

func (n *RecordingNotifier) GroupInvite(ctx context.Context, toEmail, memberName, groupName string) {
	n.record("group_invite", toEmail)
}

func (n *RecordingNotifier) GroupInviteCancelled(ctx context.Context, toEmail, groupName string) {
	n.record("group_invite_cancelled", toEmail)
}

func (n *RecordingNotifier) AddedToGroup(ctx context.Context, toEmail, memberName, groupName string) {
	n.record("added_to_group", toEmail)
}

func (n *RecordingNotifier) RemovedFromGroup(ctx context.Context, toEmail, memberName, groupName string) {
	n.record("removed_from_group", toEmail)
}

func (n *RecordingNotifier) PaymentFailed(ctx context.Context, toEmail, memberName string) {
	n.record("payment_failed", toEmail)
}

func (n *RecordingNotifier) SubscriptionCancelled(ctx context.Context, toEmail, memberName string) {
	n.record("subscription_cancelled", toEmail)
}

func (n *RecordingNotifier) MemberActivated(ctx context.Context, toEmail, memberName string) {
	n.record("member_activated", toEmail)
}

func (n *RecordingNotifier) ManualReviewNeeded(ctx context.Context, toEmail, memberName, reason string) {
	n.record("manual_review_needed", toEmail)
}
