package types

// Provider webhook event types handled by the reconciliation service.
const (
	WebhookEventInvoicePaid          = "invoice.paid"
	WebhookEventInvoicePaymentFailed = "invoice.payment_failed"
	WebhookEventSubscriptionDeleted  = "customer.subscription.deleted"
)
