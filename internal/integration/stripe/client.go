package stripe

import (
	"github.com/membermatters/memberportal/internal/config"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Gateway implements provider.Gateway against the Stripe API.
type Gateway struct {
	client        *stripe.Client
	webhookSecret string
	logger        *logger.Logger
}

// NewGateway creates a configured Stripe gateway
func NewGateway(cfg *config.Configuration, logger *logger.Logger) (provider.Gateway, error) {
	if !cfg.Stripe.Enabled {
		return nil, ierr.NewError("stripe is not enabled").
			WithHint("Enable stripe in configuration to use billing features").
			Mark(ierr.ErrValidation)
	}

	return &Gateway{
		client:        stripe.NewClient(cfg.Stripe.SecretKey, nil),
		webhookSecret: cfg.Stripe.WebhookSecret,
		logger:        logger,
	}, nil
}

// providerErr wraps a Stripe API failure in the common error taxonomy.
func providerErr(err error, msg string) error {
	details := map[string]any{"error": err.Error()}
	if stripeErr, ok := err.(*stripe.Error); ok {
		details["stripe_code"] = string(stripeErr.Code)
	}
	return ierr.WithError(err).
		WithHint(msg).
		WithReportableDetails(details).
		Mark(ierr.ErrProvider)
}

// isResourceMissing reports the Stripe "resource_missing" error code.
func isResourceMissing(err error) bool {
	if stripeErr, ok := err.(*stripe.Error); ok {
		return stripeErr.Code == stripe.ErrorCodeResourceMissing
	}
	return false
}
