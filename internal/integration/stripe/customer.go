package stripe

import (
	"context"
	"fmt"

	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/stripe/stripe-go/v82"
)

func (g *Gateway) CreateCustomer(ctx context.Context, params provider.CustomerParams) (string, error) {
	createParams := &stripe.CustomerCreateParams{
		Email: stripe.String(params.Email),
		Name:  stripe.String(params.Name),
		Metadata: map[string]string{
			"member_id": params.MemberID,
		},
	}
	if params.Phone != "" {
		createParams.Phone = stripe.String(params.Phone)
	}

	customer, err := g.client.V1Customers.Create(ctx, createParams)
	if err != nil {
		return "", providerErr(err, "Failed to create customer with payment provider")
	}

	g.logger.Infow("created stripe customer",
		"member_id", params.MemberID,
		"stripe_customer_id", customer.ID,
	)
	return customer.ID, nil
}

func (g *Gateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*provider.PaymentMethod, error) {
	pm, err := g.client.V1PaymentMethods.Attach(ctx, paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	if err != nil {
		return nil, providerErr(err, "Failed to attach payment method")
	}

	_, err = g.client.V1Customers.Update(ctx, customerID, &stripe.CustomerUpdateParams{
		InvoiceSettings: &stripe.CustomerUpdateInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	if err != nil {
		return nil, providerErr(err, "Failed to set default payment method")
	}

	method := &provider.PaymentMethod{ID: pm.ID}
	if pm.Card != nil {
		method.CardBrand = string(pm.Card.Brand)
		method.CardLast4 = pm.Card.Last4
		method.CardExpiry = formatCardExpiry(pm.Card.ExpMonth, pm.Card.ExpYear)
	}
	return method, nil
}

func (g *Gateway) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	_, err := g.client.V1PaymentMethods.Detach(ctx, paymentMethodID, &stripe.PaymentMethodDetachParams{})
	if err != nil {
		if isResourceMissing(err) {
			return nil
		}
		return providerErr(err, "Failed to detach payment method")
	}
	return nil
}

func formatCardExpiry(month, year int64) string {
	if month == 0 || year == 0 {
		return ""
	}
	return fmt.Sprintf("%02d/%d", month, year)
}
