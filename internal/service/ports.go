package service

import (
	"context"

	"github.com/papershack/storefront-orders-service/internal/models"
)

// CatalogLookup resolves product ids against the catalog. A missing product
// is (nil, nil), not an error.
type CatalogLookup interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

// PaymentGateway creates and retrieves payment authorizations. Amounts are
// integer minor units.
type PaymentGateway interface {
	CreateAuthorization(ctx context.Context, amountMinorUnits int64, metadata map[string]string) (*models.AuthorizationRecord, error)
	Retrieve(ctx context.Context, id string) (*models.AuthorizationRecord, error)
}

// OrderStore owns the order lifecycle. Create must enforce uniqueness of
// the authorization id and return errs.ErrDuplicateAuthorization when a
// second order races in for the same authorization; that constraint, not
// the find-then-create check, is what makes confirmation exactly-once.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByAuthorizationID(ctx context.Context, authorizationID string) ([]*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
}

// OrderCache is a best-effort read cache for committed orders. It is never
// consulted for duplicate detection.
type OrderCache interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
}

// NotificationSender delivers customer email. Best-effort, fire-and-forget.
type NotificationSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MarketingContacts relays contact signups to the marketing provider.
type MarketingContacts interface {
	UpsertContact(ctx context.Context, email string) (int, error)
}

// EventPublisher emits order lifecycle events. Best-effort.
type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, order *models.Order) error
}
