package clients

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/config"
	"github.com/papershack/storefront-orders-service/internal/errs"
	"github.com/papershack/storefront-orders-service/internal/models"
)

// StripeGateway implements the payment gateway against Stripe payment
// intents. Amounts are integer minor units throughout; the priced-cart
// snapshot travels in the intent metadata for later audit.
type StripeGateway struct {
	currency string
	logger   *zap.Logger
}

// NewStripeGateway creates a Stripe-backed payment gateway.
func NewStripeGateway(cfg config.StripeConfig, currency string, logger *zap.Logger) *StripeGateway {
	stripe.Key = cfg.APIKey

	return &StripeGateway{
		currency: currency,
		logger:   logger,
	}
}

// CreateAuthorization creates a payment intent for the given amount.
// Financial calls are never retried here; a failure surfaces verbatim.
func (g *StripeGateway) CreateAuthorization(ctx context.Context, amountMinorUnits int64, metadata map[string]string) (*models.AuthorizationRecord, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:  ctx,
			Metadata: metadata,
		},
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(g.currency),
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error("Failed to create payment intent",
			zap.Int64("amount_minor_units", amountMinorUnits),
			zap.Error(err),
		)
		return nil, errs.NewGatewayError(gatewayMessage(err))
	}

	g.logger.Info("Payment intent created",
		zap.String("authorization_id", pi.ID),
		zap.Int64("amount_minor_units", pi.Amount),
	)

	return recordFromIntent(pi), nil
}

// Retrieve fetches the current state of an authorization.
func (g *StripeGateway) Retrieve(ctx context.Context, id string) (*models.AuthorizationRecord, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	}

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		g.logger.Error("Failed to retrieve payment intent",
			zap.String("authorization_id", id),
			zap.Error(err),
		)
		return nil, errs.NewGatewayError(gatewayMessage(err))
	}

	return recordFromIntent(pi), nil
}

func recordFromIntent(pi *stripe.PaymentIntent) *models.AuthorizationRecord {
	record := &models.AuthorizationRecord{
		ID:               pi.ID,
		Status:           statusFromIntent(pi.Status),
		AmountMinorUnits: pi.Amount,
		CreatedAt:        time.Unix(pi.Created, 0),
	}

	// The captured amount is what an order must reconcile against.
	if record.Status == models.AuthorizationSucceeded && pi.AmountReceived > 0 {
		record.AmountMinorUnits = pi.AmountReceived
	}

	return record
}

func statusFromIntent(status stripe.PaymentIntentStatus) models.AuthorizationStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return models.AuthorizationSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return models.AuthorizationFailed
	default:
		return models.AuthorizationPending
	}
}

func gatewayMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
