package service

import (
	"github.com/shopspring/decimal"

	"github.com/papershack/storefront-orders-service/internal/models"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

// TotalMinorUnits computes the cart total in integer minor units:
// sum(unitPrice * quantity) * 100. Catalog prices are major units; this is
// the single point where the conversion happens.
func TotalMinorUnits(lines []models.PricedLine) int64 {
	total := decimal.Zero
	for _, line := range lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
	}
	return total.Mul(minorUnitsPerMajor).IntPart()
}
