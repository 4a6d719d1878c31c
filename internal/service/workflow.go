package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/config"
	"github.com/papershack/storefront-orders-service/internal/errs"
	"github.com/papershack/storefront-orders-service/internal/metrics"
	"github.com/papershack/storefront-orders-service/internal/models"
)

const notifyTimeout = 10 * time.Second

// OrderWorkflow orchestrates authorization creation and order confirmation.
// It holds no state between requests; everything durable lives in the
// order store.
type OrderWorkflow struct {
	validator *CartValidator
	gateway   PaymentGateway
	orders    OrderStore
	cache     OrderCache
	notifier  NotificationSender
	marketing MarketingContacts
	events    EventPublisher
	features  config.FeatureFlags
	logger    *zap.Logger
}

// NewOrderWorkflow creates a new order workflow.
func NewOrderWorkflow(
	validator *CartValidator,
	gateway PaymentGateway,
	orders OrderStore,
	cache OrderCache,
	notifier NotificationSender,
	marketing MarketingContacts,
	events EventPublisher,
	features config.FeatureFlags,
	logger *zap.Logger,
) *OrderWorkflow {
	return &OrderWorkflow{
		validator: validator,
		gateway:   gateway,
		orders:    orders,
		cache:     cache,
		notifier:  notifier,
		marketing: marketing,
		events:    events,
		features:  features,
		logger:    logger,
	}
}

// CreateAuthorization validates the cart, totals it in minor units and
// requests a payment authorization. The priced cart travels with the
// authorization as metadata for later audit.
func (s *OrderWorkflow) CreateAuthorization(ctx context.Context, cart []models.CartLine) (*models.AuthorizationRecord, error) {
	priced, err := s.validator.Validate(ctx, cart)
	if err != nil {
		return nil, err
	}

	total := TotalMinorUnits(priced)

	snapshot, err := json.Marshal(priced)
	if err != nil {
		return nil, err
	}

	record, err := s.gateway.CreateAuthorization(ctx, total, map[string]string{
		"cart": string(snapshot),
	})
	if err != nil {
		return nil, asGatewayError(err)
	}

	metrics.AuthorizationsCreated.Inc()

	s.logger.Info("Authorization created",
		zap.String("authorization_id", record.ID),
		zap.Int64("total_minor_units", total),
		zap.Int("line_count", len(priced)),
	)

	return record, nil
}

// ConfirmOrder runs the confirmation state machine: five ordered gates,
// each terminal on failure.
//
//	G1 authorization lookup
//	G2 authorization status must be succeeded
//	G3 no existing order for the authorization
//	G4 cart re-validation and price reconciliation
//	G5 persist (store uniqueness is the real race arbiter)
//
// A committed order is never rolled back by anything after G5.
func (s *OrderWorkflow) ConfirmOrder(ctx context.Context, authorizationID, customerName, customerEmail string, cart []models.CartLine) (*models.Order, error) {
	// G1: the gateway is the source of truth for the authorization.
	auth, err := s.gateway.Retrieve(ctx, authorizationID)
	if err != nil {
		return nil, s.failConfirm(authorizationID, asGatewayError(err))
	}

	// G2: only captured payments fund orders.
	if auth.Status != models.AuthorizationSucceeded {
		return nil, s.failConfirm(authorizationID, errs.ErrPaymentNotCollected)
	}

	// G3: fail fast on an already-settled authorization before spending
	// catalog calls on re-validation. This is a check, not a lock; G5
	// closes the race.
	existing, err := s.orders.FindByAuthorizationID(ctx, authorizationID)
	if err != nil {
		return nil, s.failConfirm(authorizationID, errs.NewStoreError(err))
	}
	if len(existing) > 0 {
		return nil, s.failConfirm(authorizationID, errs.ErrDuplicateAuthorization)
	}

	// G4: never trust totals from the authorization phase; reprice the
	// cart and reconcile against what the gateway actually captured.
	priced, err := s.validator.Validate(ctx, cart)
	if err != nil {
		return nil, s.failConfirm(authorizationID, err)
	}

	total := TotalMinorUnits(priced)
	if total != auth.AmountMinorUnits {
		s.logger.Warn("Captured amount does not match repriced cart",
			zap.String("authorization_id", authorizationID),
			zap.Int64("cart_total", total),
			zap.Int64("captured_amount", auth.AmountMinorUnits),
		)
		return nil, s.failConfirm(authorizationID, errs.ErrAmountMismatch)
	}

	// G5: the unique constraint on authorization_id is the linearization
	// point for concurrent confirmations.
	order, err := s.orders.Create(ctx, &models.Order{
		AuthorizationID: authorizationID,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		Lines:           priced,
		TotalMinorUnits: total,
	})
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateAuthorization) {
			return nil, s.failConfirm(authorizationID, errs.ErrDuplicateAuthorization)
		}
		return nil, s.failConfirm(authorizationID, errs.NewStoreError(err))
	}

	metrics.OrdersConfirmed.Inc()

	if s.features.EnableOrderCaching && s.cache != nil {
		if err := s.cache.Set(ctx, order); err != nil {
			s.logger.Warn("Failed to cache order",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	// The order is durably committed; notification and events are strictly
	// side effects and must never surface a failure to the caller.
	go s.sendConfirmationEmail(order)
	if s.features.EnableOrderEvents && s.events != nil {
		go s.publishConfirmed(order)
	}

	s.logger.Info("Order confirmed",
		zap.String("order_id", order.ID),
		zap.String("authorization_id", order.AuthorizationID),
		zap.Int64("total_minor_units", order.TotalMinorUnits),
	)

	return order, nil
}

// GetOrder retrieves a committed order, consulting the read cache first.
func (s *OrderWorkflow) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if s.features.EnableOrderCaching && s.cache != nil {
		if order, err := s.cache.Get(ctx, id); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.features.EnableOrderCaching && s.cache != nil {
		if err := s.cache.Set(ctx, order); err != nil {
			s.logger.Warn("Failed to cache order",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	return order, nil
}

// RelayMarketingContact forwards a contact signup to the marketing
// provider and returns the provider's status verbatim. It has no
// interaction with the order state machine.
func (s *OrderWorkflow) RelayMarketingContact(ctx context.Context, email string) (int, error) {
	return s.marketing.UpsertContact(ctx, email)
}

func (s *OrderWorkflow) failConfirm(authorizationID string, err error) error {
	code := "internal"
	var wErr *errs.Error
	if errors.As(err, &wErr) {
		code = wErr.Code
	}
	metrics.ConfirmFailures.WithLabelValues(code).Inc()

	s.logger.Info("Order confirmation rejected",
		zap.String("authorization_id", authorizationID),
		zap.String("reason", code),
	)
	return err
}

func (s *OrderWorkflow) sendConfirmationEmail(order *models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order, %s!\n\n", order.CustomerName)
	fmt.Fprintf(&b, "Order number: %s\n\n", order.ID)
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "  %d x %s @ %s\n", line.Quantity, line.Title, line.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %d.%02d\n", order.TotalMinorUnits/100, order.TotalMinorUnits%100)

	subject := fmt.Sprintf("Order confirmation %s", order.ID)
	if err := s.notifier.Send(ctx, order.CustomerEmail, subject, b.String()); err != nil {
		s.logger.Error("Failed to send order confirmation",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func (s *OrderWorkflow) publishConfirmed(order *models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.events.PublishOrderConfirmed(ctx, order); err != nil {
		s.logger.Error("Failed to publish order confirmed event",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func asGatewayError(err error) error {
	var wErr *errs.Error
	if errors.As(err, &wErr) {
		return err
	}
	return errs.NewGatewayError(err.Error())
}
