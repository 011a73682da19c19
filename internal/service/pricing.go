package service

// purchaseShippingRate is the fixed surcharge applied to every purchase
// line in place of user-entered shipping.
const purchaseShippingRate = 0.01

// LineInput is one hand-entered order line before pricing. For sales
// lines Shipping is the user-entered per-line charge; purchase lines
// ignore it.
type LineInput struct {
	ItemID   string  `json:"item_id" binding:"required"`
	Qty      float64 `json:"qty" binding:"required"`
	UnitCost float64 `json:"unit_cost"`
	TaxRate  float64 `json:"tax_rate"`
	Shipping float64 `json:"shipping"`
}

// PricedLine is the derived pricing for one line. Pricing is pure and
// deterministic; inputs are validated by the coordinator before any line
// is priced, so these functions never fail.
type PricedLine struct {
	AmountExclTax float64
	TaxAmount     float64
	AmountInclTax float64
	Shipping      float64
	TotalPrice    float64
}

// PriceSalesLine prices a sales line: qty * unitPrice, tax on top, then
// the user-entered shipping.
func PriceSalesLine(in LineInput) PricedLine {
	amountExclTax := in.Qty * in.UnitCost
	taxAmount := amountExclTax * in.TaxRate / 100
	amountInclTax := amountExclTax + taxAmount
	return PricedLine{
		AmountExclTax: amountExclTax,
		TaxAmount:     taxAmount,
		AmountInclTax: amountInclTax,
		Shipping:      in.Shipping,
		TotalPrice:    amountInclTax + in.Shipping,
	}
}

// PricePurchaseLine prices a purchase line: identical through the
// tax-inclusive amount, then a fixed 1% shipping surcharge instead of
// user input.
func PricePurchaseLine(in LineInput) PricedLine {
	amountExclTax := in.Qty * in.UnitCost
	taxAmount := amountExclTax * in.TaxRate / 100
	amountInclTax := amountExclTax + taxAmount
	shipping := amountInclTax * purchaseShippingRate
	return PricedLine{
		AmountExclTax: amountExclTax,
		TaxAmount:     taxAmount,
		AmountInclTax: amountInclTax,
		Shipping:      shipping,
		TotalPrice:    amountInclTax + shipping,
	}
}
