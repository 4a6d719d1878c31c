package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactRequest is the payload for a marketing-contact signup.
type ContactRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreateContact handles POST /api/v1/contacts. The marketing provider's
// status code is forwarded verbatim.
func (h *Handlers) CreateContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "invalid request body"})
		return
	}

	status, err := h.workflow.RelayMarketingContact(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("Marketing contact relay failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway_error", "message": "marketing provider unavailable"})
		return
	}

	c.JSON(status, gin.H{"status": status})
}
