package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a workflow error with a stable code and an HTTP status.
// The set of codes is closed; handlers map them exhaustively.
type Error struct {
	Code    string `json:"error"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches on code so constructed instances compare equal to the
// package sentinels under errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

const (
	CodeInvalidCartItem        = "invalid_cart_item"
	CodeGatewayError           = "gateway_error"
	CodePaymentNotCollected    = "payment_not_collected"
	CodeDuplicateAuthorization = "duplicate_authorization"
	CodeAmountMismatch         = "amount_mismatch"
	CodeStoreError             = "store_error"
)

var (
	// ErrPaymentNotCollected means the authorization has not been captured.
	ErrPaymentNotCollected = &Error{
		Code:    CodePaymentNotCollected,
		Status:  http.StatusPaymentRequired,
		Message: "payment has not been collected for this authorization",
	}

	// ErrDuplicateAuthorization means an order already exists for the
	// authorization. An authorization funds at most one order, ever.
	ErrDuplicateAuthorization = &Error{
		Code:    CodeDuplicateAuthorization,
		Status:  http.StatusPaymentRequired,
		Message: "an order has already been placed for this authorization",
	}

	// ErrAmountMismatch means the freshly priced cart total does not equal
	// the amount captured by the gateway.
	ErrAmountMismatch = &Error{
		Code:    CodeAmountMismatch,
		Status:  http.StatusPaymentRequired,
		Message: "cart total does not match the captured payment amount",
	}

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// NewInvalidCartItem reports a cart line referencing an unknown product.
func NewInvalidCartItem(productID string) *Error {
	return &Error{
		Code:    CodeInvalidCartItem,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("cart contains an invalid item: %s", productID),
	}
}

// NewGatewayError wraps a payment-gateway failure, passing the gateway's
// message through verbatim.
func NewGatewayError(message string) *Error {
	return &Error{
		Code:    CodeGatewayError,
		Status:  http.StatusBadGateway,
		Message: message,
	}
}

// NewStoreError wraps a persistence failure.
func NewStoreError(err error) *Error {
	return &Error{
		Code:    CodeStoreError,
		Status:  http.StatusInternalServerError,
		Message: "failed to persist order: " + err.Error(),
	}
}
