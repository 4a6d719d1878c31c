package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a raw cart entry as sent by the client. The product id is
// opaque; any price the client claims is ignored.
type CartLine struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// Product is a catalog record. Price is in major units (e.g. dollars).
type Product struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// PricedLine is a cart line resolved against the catalog. UnitPrice and
// Title come from the catalog at validation time, never from the client.
type PricedLine struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// AuthorizationStatus is the payment gateway's view of an authorization.
type AuthorizationStatus string

const (
	AuthorizationPending   AuthorizationStatus = "pending"
	AuthorizationSucceeded AuthorizationStatus = "succeeded"
	AuthorizationFailed    AuthorizationStatus = "failed"
)

// AuthorizationRecord mirrors a gateway authorization. It is owned by the
// gateway; this service only reads it. Amounts are integer minor units.
type AuthorizationRecord struct {
	ID               string              `json:"id"`
	Status           AuthorizationStatus `json:"status"`
	AmountMinorUnits int64               `json:"amount_minor_units"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Order is a confirmed, paid order. Orders are append-only and are created
// exactly once per authorization: AuthorizationID is unique across all rows.
type Order struct {
	ID              string       `json:"id"`
	AuthorizationID string       `json:"authorization_id"`
	CustomerName    string       `json:"customer_name"`
	CustomerEmail   string       `json:"customer_email"`
	Lines           []PricedLine `json:"lines"`
	TotalMinorUnits int64        `json:"total_minor_units"`
	CreatedAt       time.Time    `json:"created_at"`
}
