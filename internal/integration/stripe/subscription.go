package stripe

import (
	"context"
	"time"

	"github.com/membermatters/memberportal/internal/domain/provider"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

func (g *Gateway) CreateSubscription(ctx context.Context, params provider.SubscriptionCreateParams) (*provider.Subscription, error) {
	items := make([]*stripe.SubscriptionCreateItemParams, 0, len(params.PriceIDs))
	for _, priceID := range params.PriceIDs {
		items = append(items, &stripe.SubscriptionCreateItemParams{
			Price: stripe.String(priceID),
		})
	}

	sub, err := g.client.V1Subscriptions.Create(ctx, &stripe.SubscriptionCreateParams{
		Customer: stripe.String(params.CustomerID),
		Items:    items,
	})
	if err != nil {
		return nil, providerErr(err, "Failed to create subscription with payment provider")
	}

	g.logger.Infow("created stripe subscription",
		"stripe_customer_id", params.CustomerID,
		"stripe_subscription_id", sub.ID,
	)
	return fromStripeSubscription(sub), nil
}

func (g *Gateway) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	sub, err := g.client.V1Subscriptions.Retrieve(ctx, subscriptionID, &stripe.SubscriptionRetrieveParams{
		Expand: []*string{
			stripe.String("items.data.price"),
		},
	})
	if err != nil {
		if isResourceMissing(err) {
			return nil, ierr.WithError(err).
				WithHint("Subscription does not exist with payment provider").
				WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, providerErr(err, "Failed to retrieve subscription from payment provider")
	}
	return fromStripeSubscription(sub), nil
}

func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string, prorate bool) (provider.ItemRemoval, error) {
	_, err := g.client.V1Subscriptions.Cancel(ctx, subscriptionID, &stripe.SubscriptionCancelParams{
		Prorate: stripe.Bool(prorate),
	})
	if err != nil {
		if isResourceMissing(err) {
			return provider.ItemAlreadyAbsent, nil
		}
		return "", providerErr(err, "Failed to cancel subscription with payment provider")
	}

	g.logger.Infow("cancelled stripe subscription",
		"stripe_subscription_id", subscriptionID,
		"prorate", prorate,
	)
	return provider.ItemRemoved, nil
}

func (g *Gateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*provider.Subscription, error) {
	sub, err := g.client.V1Subscriptions.Update(ctx, subscriptionID, &stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	})
	if err != nil {
		return nil, providerErr(err, "Failed to update subscription with payment provider")
	}
	return fromStripeSubscription(sub), nil
}

func (g *Gateway) AddSubscriptionItem(ctx context.Context, subscriptionID, priceID string, quantity int64) (string, error) {
	item, err := g.client.V1SubscriptionItems.Create(ctx, &stripe.SubscriptionItemCreateParams{
		Subscription:      stripe.String(subscriptionID),
		Price:             stripe.String(priceID),
		Quantity:          stripe.Int64(quantity),
		ProrationBehavior: stripe.String("create_prorations"),
	})
	if err != nil {
		return "", providerErr(err, "Failed to add subscription item with payment provider")
	}

	g.logger.Infow("added stripe subscription item",
		"stripe_subscription_id", subscriptionID,
		"stripe_price_id", priceID,
		"stripe_subscription_item_id", item.ID,
	)
	return item.ID, nil
}

func (g *Gateway) RemoveSubscriptionItem(ctx context.Context, itemID string, prorate bool) (provider.ItemRemoval, error) {
	prorationBehavior := "none"
	if prorate {
		prorationBehavior = "create_prorations"
	}

	_, err := g.client.V1SubscriptionItems.Delete(ctx, itemID, &stripe.SubscriptionItemDeleteParams{
		ProrationBehavior: stripe.String(prorationBehavior),
	})
	if err != nil {
		if isResourceMissing(err) {
			return provider.ItemAlreadyAbsent, nil
		}
		return "", providerErr(err, "Failed to remove subscription item with payment provider")
	}

	g.logger.Infow("removed stripe subscription item",
		"stripe_subscription_item_id", itemID,
		"prorate", prorate,
	)
	return provider.ItemRemoved, nil
}

func fromStripeSubscription(sub *stripe.Subscription) *provider.Subscription {
	out := &provider.Subscription{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		StartDate:          time.Unix(sub.StartDate, 0).UTC(),
		BillingCycleAnchor: time.Unix(sub.BillingCycleAnchor, 0).UTC(),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.CancelAt > 0 {
		t := time.Unix(sub.CancelAt, 0).UTC()
		out.CancelAt = &t
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			si := provider.SubscriptionItem{
				ID:       item.ID,
				Quantity: item.Quantity,
			}
			if item.Price != nil {
				si.PriceID = item.Price.ID
			}
			// Billing periods live on the items since the basil API
			if end := time.Unix(item.CurrentPeriodEnd, 0).UTC(); end.After(out.CurrentPeriodEnd) {
				out.CurrentPeriodEnd = end
			}
			out.Items = append(out.Items, si)
		}
	}
	return out
}

// toMinorUnits converts a decimal amount to the integer minor units the
// provider expects.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
