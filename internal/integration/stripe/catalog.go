package stripe

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/stripe/stripe-go/v82"
)

func (g *Gateway) CreateProduct(ctx context.Context, params provider.ProductParams) (string, error) {
	createParams := &stripe.ProductCreateParams{
		Name: stripe.String(params.Name),
	}
	if params.Description != "" {
		createParams.Description = stripe.String(params.Description)
	}

	product, err := g.client.V1Products.Create(ctx, createParams)
	if err != nil {
		return "", providerErr(err, "Failed to create product with payment provider")
	}
	return product.ID, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, productID string, params provider.ProductParams) error {
	updateParams := &stripe.ProductUpdateParams{
		Name: stripe.String(params.Name),
	}
	if params.Description != "" {
		updateParams.Description = stripe.String(params.Description)
	}

	_, err := g.client.V1Products.Update(ctx, productID, updateParams)
	if err != nil {
		return providerErr(err, "Failed to update product with payment provider")
	}
	return nil
}

func (g *Gateway) ArchiveProduct(ctx context.Context, productID string) error {
	_, err := g.client.V1Products.Update(ctx, productID, &stripe.ProductUpdateParams{
		Active: stripe.Bool(false),
	})
	if err != nil {
		if isResourceMissing(err) {
			return nil
		}
		return providerErr(err, "Failed to archive product with payment provider")
	}
	return nil
}

func (g *Gateway) CreatePrice(ctx context.Context, params provider.PriceParams) (string, error) {
	createParams := &stripe.PriceCreateParams{
		Product:    stripe.String(params.ProductID),
		Currency:   stripe.String(params.Currency),
		UnitAmount: stripe.Int64(toMinorUnits(params.Amount)),
		Recurring: &stripe.PriceCreateRecurringParams{
			Interval:      stripe.String(string(params.Interval)),
			IntervalCount: stripe.Int64(int64(params.IntervalCount)),
		},
	}
	if params.Nickname != "" {
		createParams.Nickname = stripe.String(params.Nickname)
	}

	price, err := g.client.V1Prices.Create(ctx, createParams)
	if err != nil {
		return "", providerErr(err, "Failed to create price with payment provider")
	}
	return price.ID, nil
}

func (g *Gateway) ArchivePrice(ctx context.Context, priceID string) error {
	_, err := g.client.V1Prices.Update(ctx, priceID, &stripe.PriceUpdateParams{
		Active: stripe.Bool(false),
	})
	if err != nil {
		if isResourceMissing(err) {
			return nil
		}
		return providerErr(err, "Failed to archive price with payment provider")
	}
	return nil
}
