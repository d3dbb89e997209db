package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parvesmosarof35/new-ecommerce-api/models"
)

func TestComputeSummaryEmpty(t *testing.T) {
	summary := ComputeSummary(nil)

	assert.Equal(t, models.CartSummary{}, summary)
}

func TestComputeSummaryTotalsLines(t *testing.T) {
	items := []models.CartItem{
		{Quantity: 2, PriceAtAddition: 25.00},
		{Quantity: 1, PriceAtAddition: 9.99},
	}

	summary := ComputeSummary(items)

	assert.Equal(t, 59.99, summary.Subtotal)
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, 2, summary.ItemCount)
}

func TestComputeSummaryRoundsToCents(t *testing.T) {
	items := []models.CartItem{
		{Quantity: 3, PriceAtAddition: 0.1},
	}

	summary := ComputeSummary(items)

	assert.Equal(t, 0.3, summary.Subtotal)
}
