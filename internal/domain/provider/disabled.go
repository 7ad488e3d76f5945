package provider

import (
	"context"

	ierr "github.com/membermatters/memberportal/internal/errors"
)

// disabledGateway is wired when the payment provider is not configured.
// Every call fails the same way so callers surface a consistent hint.
type disabledGateway struct{}

func NewDisabledGateway() Gateway {
	return disabledGateway{}
}

func errDisabled() error {
	return ierr.NewError("payment provider is not enabled").
		WithHint("Stripe integration is not configured").
		Mark(ierr.ErrInvalidOperation)
}

func (disabledGateway) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	return "", errDisabled()
}

func (disabledGateway) CreateProduct(ctx context.Context, params ProductParams) (string, error) {
	return "", errDisabled()
}

func (disabledGateway) UpdateProduct(ctx context.Context, productID string, params ProductParams) error {
	return errDisabled()
}

func (disabledGateway) ArchiveProduct(ctx context.Context, productID string) error {
	return errDisabled()
}

func (disabledGateway) CreatePrice(ctx context.Context, params PriceParams) (string, error) {
	return "", errDisabled()
}

func (disabledGateway) ArchivePrice(ctx context.Context, priceID string) error {
	return errDisabled()
}

func (disabledGateway) CreateSubscription(ctx context.Context, params SubscriptionCreateParams) (*Subscription, error) {
	return nil, errDisabled()
}

func (disabledGateway) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	return nil, errDisabled()
}

func (disabledGateway) CancelSubscription(ctx context.Context, subscriptionID string, prorate bool) (ItemRemoval, error) {
	return "", errDisabled()
}

func (disabledGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*Subscription, error) {
	return nil, errDisabled()
}

func (disabledGateway) AddSubscriptionItem(ctx context.Context, subscriptionID, priceID string, quantity int64) (string, error) {
	return "", errDisabled()
}

func (disabledGateway) RemoveSubscriptionItem(ctx context.Context, itemID string, prorate bool) (ItemRemoval, error) {
	return "", errDisabled()
}

func (disabledGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*PaymentMethod, error) {
	return nil, errDisabled()
}

func (disabledGateway) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	return errDisabled()
}

func (disabledGateway) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	return nil, errDisabled()
}
