package email

import (
	"context"
	"fmt"

	"github.com/membermatters/memberportal/internal/logger"
)

// Notifier sends the member facing billing notifications. Failures are
// logged, never propagated, a missed email must not fail a billing
// transition.
type Notifier interface {
	GroupInvite(ctx context.Context, toEmail, memberName, groupName string)
	GroupInviteCancelled(ctx context.Context, toEmail, groupName string)
	AddedToGroup(ctx context.Context, toEmail, memberName, groupName string)
	RemovedFromGroup(ctx context.Context, toEmail, memberName, groupName string)
	PaymentFailed(ctx context.Context, toEmail, memberName string)
	SubscriptionCancelled(ctx context.Context, toEmail, memberName string)
	MemberActivated(ctx context.Context, toEmail, memberName string)
	ManualReviewNeeded(ctx context.Context, toEmail, memberName, reason string)
}

// Service implements Notifier on top of the resend client.
type Service struct {
	client *Client
	logger *logger.Logger
}

func NewService(client *Client, logger *logger.Logger) Notifier {
	return &Service{
		client: client,
		logger: logger,
	}
}

func (s *Service) send(ctx context.Context, to, subject, text string) {
	if !s.client.IsEnabled() {
		s.logger.Debugw("email client is disabled, skipping email send",
			"to", to,
			"subject", subject,
		)
		return
	}

	messageID, err := s.client.Send(ctx, to, subject, text)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", to,
			"subject", subject,
		)
		return
	}

	s.logger.Infow("email sent",
		"message_id", messageID,
		"to", to,
		"subject", subject,
	)
}

func (s *Service) GroupInvite(ctx context.Context, toEmail, memberName, groupName string) {
	s.send(ctx, toEmail,
		fmt.Sprintf("You've been invited to join %s", groupName),
		fmt.Sprintf("Hi %s,\n\nYou've been invited to join the billing group %s. "+
			"Log in to the member portal to accept or decline the invite.\n", memberName, groupName))
}

func (s *Service) GroupInviteCancelled(ctx context.Context, toEmail, groupName string) {
	s.send(ctx, toEmail,
		fmt.Sprintf("Your invite to %s was cancelled", groupName),
		fmt.Sprintf("Your invite to the billing group %s has been cancelled.\n", groupName))
}

func (s *Service) AddedToGroup(ctx context.Context, toEmail, memberName, groupName string) {
	s.send(ctx, toEmail,
		fmt.Sprintf("You've been added to %s", groupName),
		fmt.Sprintf("Hi %s,\n\nYou've been added to the billing group %s. "+
			"Your membership is now billed through the group.\n", memberName, groupName))
}

func (s *Service) RemovedFromGroup(ctx context.Context, toEmail, memberName, groupName string) {
	s.send(ctx, toEmail,
		fmt.Sprintf("You've been removed from %s", groupName),
		fmt.Sprintf("Hi %s,\n\nYou've been removed from the billing group %s. "+
			"Check the member portal for your current billing arrangement.\n", memberName, groupName))
}

func (s *Service) PaymentFailed(ctx context.Context, toEmail, memberName string) {
	s.send(ctx, toEmail,
		"Your membership payment failed",
		fmt.Sprintf("Hi %s,\n\nYour latest membership payment failed. "+
			"Please update your card details in the member portal to avoid losing access.\n", memberName))
}

func (s *Service) SubscriptionCancelled(ctx context.Context, toEmail, memberName string) {
	s.send(ctx, toEmail,
		"Your membership subscription was cancelled",
		fmt.Sprintf("Hi %s,\n\nYour membership subscription has been cancelled. "+
			"You can sign up again at any time from the member portal.\n", memberName))
}

func (s *Service) MemberActivated(ctx context.Context, toEmail, memberName string) {
	s.send(ctx, toEmail,
		"Your membership is active",
		fmt.Sprintf("Hi %s,\n\nYour membership payment was received and your membership is now active. Welcome!\n", memberName))
}

func (s *Service) ManualReviewNeeded(ctx context.Context, toEmail, memberName, reason string) {
	s.send(ctx, toEmail,
		"Membership needs manual review",
		fmt.Sprintf("Member %s needs manual review: %s\n", memberName, reason))
}
