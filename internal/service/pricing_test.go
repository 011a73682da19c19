package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceSalesLine(t *testing.T) {
	priced := PriceSalesLine(LineInput{Qty: 2, UnitCost: 100, TaxRate: 10, Shipping: 5})

	assert.InDelta(t, 200.0, priced.AmountExclTax, 0.01)
	assert.InDelta(t, 20.0, priced.TaxAmount, 0.01)
	assert.InDelta(t, 220.0, priced.AmountInclTax, 0.01)
	assert.InDelta(t, 5.0, priced.Shipping, 0.01)
	assert.InDelta(t, 225.0, priced.TotalPrice, 0.01)
}

func TestPriceSalesLineZeroTaxAndShipping(t *testing.T) {
	priced := PriceSalesLine(LineInput{Qty: 3, UnitCost: 50})

	assert.InDelta(t, 150.0, priced.AmountExclTax, 0.01)
	assert.InDelta(t, 0.0, priced.TaxAmount, 0.01)
	assert.InDelta(t, 150.0, priced.TotalPrice, 0.01)
}

func TestPricePurchaseLine(t *testing.T) {
	priced := PricePurchaseLine(LineInput{Qty: 2, UnitCost: 100, TaxRate: 10})

	assert.InDelta(t, 200.0, priced.AmountExclTax, 0.01)
	assert.InDelta(t, 20.0, priced.TaxAmount, 0.01)
	assert.InDelta(t, 220.0, priced.AmountInclTax, 0.01)
	assert.InDelta(t, 2.2, priced.Shipping, 0.01)
	assert.InDelta(t, 222.2, priced.TotalPrice, 0.01)
}

func TestPricePurchaseLineIgnoresUserShipping(t *testing.T) {
	priced := PricePurchaseLine(LineInput{Qty: 1, UnitCost: 100, Shipping: 50})

	// Shipping is always the 1% surcharge, never the entered value.
	assert.InDelta(t, 1.0, priced.Shipping, 0.01)
	assert.InDelta(t, 101.0, priced.TotalPrice, 0.01)
}
