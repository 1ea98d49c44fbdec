package service

// PricingPolicy sets the shipping fee and the promotional discount applied
// at checkout. Both thresholds are strict: the subtotal must exceed them.
type PricingPolicy struct {
	FreeShippingThreshold float64
	ShippingFee           float64
	DiscountThreshold     float64
	FlatDiscount          float64
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		FreeShippingThreshold: 1999,
		ShippingFee:           99,
		DiscountThreshold:     2999,
		FlatDiscount:          200,
	}
}

type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	Shipping        float64 `json:"shipping"`
	Discount        float64 `json:"discount"`
	FinalTotal      float64 `json:"finalTotal"`
	FreeShippingGap float64 `json:"freeShippingGap"`
}

func (p PricingPolicy) Quote(subtotal float64) Totals {
	t := Totals{Subtotal: subtotal}
	if subtotal <= p.FreeShippingThreshold {
		t.Shipping = p.ShippingFee
		t.FreeShippingGap = p.FreeShippingThreshold - subtotal
	}
	if subtotal > p.DiscountThreshold {
		t.Discount = p.FlatDiscount
	}
	t.FinalTotal = subtotal + t.Shipping - t.Discount
	return t
}
