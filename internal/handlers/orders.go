package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/models"
)

// AuthorizeRequest is the payload for creating a payment authorization.
type AuthorizeRequest struct {
	Cart []models.CartLine `json:"cart" binding:"required,min=1,dive"`
}

// ConfirmOrderRequest is the payload for confirming an order against a
// captured authorization.
type ConfirmOrderRequest struct {
	AuthorizationID string            `json:"authorization_id" binding:"required"`
	CustomerName    string            `json:"customer_name" binding:"required"`
	CustomerEmail   string            `json:"customer_email" binding:"required,email"`
	Cart            []models.CartLine `json:"cart" binding:"required,min=1,dive"`
}

// CreateAuthorization handles POST /api/v1/payments/authorize
func (h *Handlers) CreateAuthorization(c *gin.Context) {
	var req AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Rejected malformed authorize request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "invalid request body"})
		return
	}

	record, err := h.workflow.CreateAuthorization(c.Request.Context(), req.Cart)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ConfirmOrder handles POST /api/v1/orders/confirm
func (h *Handlers) ConfirmOrder(c *gin.Context) {
	var req ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Rejected malformed confirm request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "invalid request body"})
		return
	}

	order, err := h.workflow.ConfirmOrder(
		c.Request.Context(),
		req.AuthorizationID,
		req.CustomerName,
		req.CustomerEmail,
		req.Cart,
	)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.workflow.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
