package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/membermatters/memberportal/internal/domain/provider"
	ierr "github.com/membermatters/memberportal/internal/errors"
)

var _ provider.Gateway = (*FakeGateway)(nil)

// FakeGateway is an in-memory payment provider. It records every call,
// hands out sequential IDs and lets tests inject failures per method.
type FakeGateway struct {
	mu   sync.Mutex
	seq  int
	fail map[string]error

	Calls []string

	Customers     map[string]provider.CustomerParams
	Products      map[string]provider.ProductParams
	Prices        map[string]provider.PriceParams
	Subscriptions map[string]*provider.Subscription
	Items         map[string]string // item ID -> subscription ID

	NextEvent *provider.WebhookEvent
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		fail:          make(map[string]error),
		Customers:     make(map[string]provider.CustomerParams),
		Products:      make(map[string]provider.ProductParams),
		Prices:        make(map[string]provider.PriceParams),
		Subscriptions: make(map[string]*provider.Subscription),
		Items:         make(map[string]string),
	}
}

// FailWith makes the named method return err on every call until cleared.
func (g *FakeGateway) FailWith(method string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[method] = err
}

func (g *FakeGateway) ClearFailures() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = make(map[string]error)
}

// CallCount returns how many times the named method was invoked.
func (g *FakeGateway) CallCount(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (g *FakeGateway) record(method string) error {
	g.Calls = append(g.Calls, method)
	if err, ok := g.fail[method]; ok {
		return err
	}
	return nil
}

func (g *FakeGateway) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_%d", prefix, g.seq)
}

// SeedSubscription registers an existing provider subscription.
func (g *FakeGateway) SeedSubscription(sub *provider.Subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Subscriptions[sub.ID] = sub
	for _, item := range sub.Items {
		g.Items[item.ID] = sub.ID
	}
}

func (g *FakeGateway) CreateCustomer(ctx context.Context, params provider.CustomerParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("CreateCustomer"); err != nil {
		return "", err
	}
	id := g.nextID("cus")
	g.Customers[id] = params
	return id, nil
}

func (g *FakeGateway) CreateProduct(ctx context.Context, params provider.ProductParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("CreateProduct"); err != nil {
		return "", err
	}
	id := g.nextID("prod")
	g.Products[id] = params
	return id, nil
}

func (g *FakeGateway) UpdateProduct(ctx context.Context, productID string, params provider.ProductParams) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("UpdateProduct"); err != nil {
		return err
	}
	g.Products[productID] = params
	return nil
}

func (g *FakeGateway) ArchiveProduct(ctx context.Context, productID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("ArchiveProduct"); err != nil {
		return err
	}
	delete(g.Products, productID)
	return nil
}

func (g *FakeGateway) CreatePrice(ctx context.Context, params provider.PriceParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("CreatePrice"); err != nil {
		return "", err
	}
	id := g.nextID("price")
	g.Prices[id] = params
	return id, nil
}

func (g *FakeGateway) ArchivePrice(ctx context.Context, priceID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("ArchivePrice"); err != nil {
		return err
	}
	delete(g.Prices, priceID)
	return nil
}

func (g *FakeGateway) CreateSubscription(ctx context.Context, params provider.SubscriptionCreateParams) (*provider.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("CreateSubscription"); err != nil {
		return nil, err
	}

	sub := &provider.Subscription{
		ID:               g.nextID("sub"),
		CustomerID:       params.CustomerID,
		Status:           "active",
		StartDate:        time.Now().UTC(),
		CurrentPeriodEnd: time.Now().UTC().AddDate(0, 1, 0),
	}
	for _, priceID := range params.PriceIDs {
		sub.Items = append(sub.Items, provider.SubscriptionItem{
			ID:       g.nextID("si"),
			PriceID:  priceID,
			Quantity: 1,
		})
	}
	g.Subscriptions[sub.ID] = sub
	for _, item := range sub.Items {
		g.Items[item.ID] = sub.ID
	}
	return sub, nil
}

func (g *FakeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("GetSubscription"); err != nil {
		return nil, err
	}

	sub, ok := g.Subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("no such subscription").
			WithHint("Subscription not found").
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (g *FakeGateway) CancelSubscription(ctx context.Context, subscriptionID string, prorate bool) (provider.ItemRemoval, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("CancelSubscription"); err != nil {
		return "", err
	}

	sub, ok := g.Subscriptions[subscriptionID]
	if !ok {
		return provider.ItemAlreadyAbsent, nil
	}
	for _, item := range sub.Items {
		delete(g.Items, item.ID)
	}
	delete(g.Subscriptions, subscriptionID)
	return provider.ItemRemoved, nil
}

func (g *FakeGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*provider.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("SetCancelAtPeriodEnd"); err != nil {
		return nil, err
	}

	sub, ok := g.Subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("no such subscription").
			WithHint("Subscription not found").
			Mark(ierr.ErrNotFound)
	}
	sub.CancelAtPeriodEnd = cancel
	if cancel {
		at := sub.CurrentPeriodEnd
		sub.CancelAt = &at
	} else {
		sub.CancelAt = nil
	}
	return sub, nil
}

func (g *FakeGateway) AddSubscriptionItem(ctx context.Context, subscriptionID, priceID string, quantity int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("AddSubscriptionItem"); err != nil {
		return "", err
	}

	sub, ok := g.Subscriptions[subscriptionID]
	if !ok {
		return "", ierr.NewError("no such subscription").
			WithHint("Subscription not found").
			Mark(ierr.ErrNotFound)
	}
	itemID := g.nextID("si")
	sub.Items = append(sub.Items, provider.SubscriptionItem{
		ID:       itemID,
		PriceID:  priceID,
		Quantity: quantity,
	})
	g.Items[itemID] = subscriptionID
	return itemID, nil
}

func (g *FakeGateway) RemoveSubscriptionItem(ctx context.Context, itemID string, prorate bool) (provider.ItemRemoval, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("RemoveSubscriptionItem"); err != nil {
		return "", err
	}

	subID, ok := g.Items[itemID]
	if !ok {
		return provider.ItemAlreadyAbsent, nil
	}
	delete(g.Items, itemID)
	if sub, ok := g.Subscriptions[subID]; ok {
		items := sub.Items[:0]
		for _, item := range sub.Items {
			if item.ID != itemID {
				items = append(items, item)
			}
		}
		sub.Items = items
	}
	return provider.ItemRemoved, nil
}

func (g *FakeGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*provider.PaymentMethod, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("AttachPaymentMethod"); err != nil {
		return nil, err
	}
	return &provider.PaymentMethod{
		ID:         paymentMethodID,
		CardBrand:  "visa",
		CardLast4:  "4242",
		CardExpiry: "12/2030",
	}, nil
}

func (g *FakeGateway) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.record("DetachPaymentMethod")
}

func (g *FakeGateway) ParseWebhookEvent(payload []byte, signature string) (*provider.WebhookEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("ParseWebhookEvent"); err != nil {
		return nil, err
	}
	if g.NextEvent == nil {
		return nil, ierr.NewError("no event configured").
			WithHint("Invalid webhook payload").
			Mark(ierr.ErrValidation)
	}
	return g.NextEvent, nil
}
