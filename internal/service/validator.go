package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/errs"
	"github.com/papershack/storefront-orders-service/internal/models"
)

// CartValidator resolves raw cart lines against the catalog. Validation is
// all-or-nothing: one unknown product fails the whole cart.
type CartValidator struct {
	catalog CatalogLookup
	logger  *zap.Logger
}

// NewCartValidator creates a new cart validator.
func NewCartValidator(catalog CatalogLookup, logger *zap.Logger) *CartValidator {
	return &CartValidator{
		catalog: catalog,
		logger:  logger,
	}
}

// Validate prices every cart line from the catalog. Lookups run
// concurrently; output line i corresponds to input line i. Quantity is
// taken from the client, price and title only ever from the catalog.
func (v *CartValidator) Validate(ctx context.Context, cart []models.CartLine) ([]models.PricedLine, error) {
	priced := make([]models.PricedLine, len(cart))
	errCh := make(chan error, len(cart))

	var wg sync.WaitGroup
	for i, line := range cart {
		wg.Add(1)
		go func(i int, line models.CartLine) {
			defer wg.Done()

			product, err := v.catalog.FindByID(ctx, line.ProductID)
			if err != nil {
				errCh <- err
				return
			}
			if product == nil {
				errCh <- errs.NewInvalidCartItem(line.ProductID)
				return
			}

			priced[i] = models.PricedLine{
				ProductID: product.ID,
				Title:     product.Title,
				UnitPrice: product.Price,
				Quantity:  line.Quantity,
			}
		}(i, line)
	}
	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		v.logger.Info("Cart validation failed", zap.Error(err))
		return nil, err
	}

	return priced, nil
}
