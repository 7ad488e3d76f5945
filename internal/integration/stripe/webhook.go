package stripe

import (
	"encoding/json"

	"github.com/membermatters/memberportal/internal/domain/provider"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ParseWebhookEvent verifies the event signature and extracts the fields
// the reconciliation service branches on.
func (g *Gateway) ParseWebhookEvent(payload []byte, signature string) (*provider.WebhookEvent, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, options)
	if err != nil {
		g.logger.Errorw("stripe webhook verification failed", "error", err)
		return nil, ierr.NewError("failed to verify webhook signature").
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}

	out := &provider.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch string(event.Type) {
	case types.WebhookEventInvoicePaid, types.WebhookEventInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Malformed invoice payload").
				Mark(ierr.ErrValidation)
		}
		if invoice.Customer != nil {
			out.CustomerID = invoice.Customer.ID
		}
	case types.WebhookEventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Malformed subscription payload").
				Mark(ierr.ErrValidation)
		}
		out.SubscriptionID = sub.ID
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	}

	return out, nil
}
