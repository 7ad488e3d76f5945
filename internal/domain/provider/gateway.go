package provider

import (
	"context"
	"time"

	"github.com/membermatters/memberportal/internal/types"
	"github.com/shopspring/decimal"
)

// ItemRemoval is the outcome of a delete-style provider call.
type ItemRemoval string

const (
	ItemRemoved       ItemRemoval = "removed"
	ItemAlreadyAbsent ItemRemoval = "already_absent"
)

// SubscriptionItem is a line item on a provider subscription.
type SubscriptionItem struct {
	ID       string
	PriceID  string
	Quantity int64
}

// Subscription mirrors the provider subscription fields the services need.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	CancelAtPeriodEnd  bool
	CancelAt           *time.Time
	CurrentPeriodEnd   time.Time
	StartDate          time.Time
	BillingCycleAnchor time.Time
	Items              []SubscriptionItem
}

// PaymentMethod carries the card details shown to members.
type PaymentMethod struct {
	ID         string
	CardBrand  string
	CardLast4  string
	CardExpiry string
}

type CustomerParams struct {
	Email    string
	Name     string
	Phone    string
	MemberID string
}

type ProductParams struct {
	Name        string
	Description string
}

type PriceParams struct {
	ProductID     string
	Currency      string
	Amount        decimal.Decimal
	Interval      types.BillingPeriod
	IntervalCount int
	Nickname      string
}

type SubscriptionCreateParams struct {
	CustomerID string
	PriceIDs   []string
}

// Gateway is the payment provider surface the services depend on. It is
// Stripe shaped on purpose, there is exactly one implementation plus the
// test fake.
type Gateway interface {
	// Customers
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)

	// Catalog objects
	CreateProduct(ctx context.Context, params ProductParams) (string, error)
	UpdateProduct(ctx context.Context, productID string, params ProductParams) error
	ArchiveProduct(ctx context.Context, productID string) error
	CreatePrice(ctx context.Context, params PriceParams) (string, error)
	ArchivePrice(ctx context.Context, priceID string) error

	// Subscriptions
	CreateSubscription(ctx context.Context, params SubscriptionCreateParams) (*Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string, prorate bool) (ItemRemoval, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*Subscription, error)

	// Subscription items
	AddSubscriptionItem(ctx context.Context, subscriptionID, priceID string, quantity int64) (string, error)
	RemoveSubscriptionItem(ctx context.Context, itemID string, prorate bool) (ItemRemoval, error)

	// Payment methods
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*PaymentMethod, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error

	// Webhooks
	ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// WebhookEvent is a parsed provider event with the fields the
// reconciliation service branches on.
type WebhookEvent struct {
	ID             string
	Type           string
	CustomerID     string
	SubscriptionID string
}
