package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/errs"
	"github.com/papershack/storefront-orders-service/internal/service"
)

// Handlers holds all HTTP handlers for the storefront orders service.
type Handlers struct {
	workflow *service.OrderWorkflow
	logger   *zap.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(workflow *service.OrderWorkflow, logger *zap.Logger) *Handlers {
	return &Handlers{
		workflow: workflow,
		logger:   logger,
	}
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, errs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	var wErr *errs.Error
	if errors.As(err, &wErr) {
		c.JSON(wErr.Status, gin.H{
			"error":   wErr.Code,
			"message": wErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}
