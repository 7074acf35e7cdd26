package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/socialspark/cart-service/internal/domain"
)

const (
	DefaultTaxRate     = 0.08
	DefaultShippingFee = 9.99
)

// Calculator derives the checkout summary from cart contents. All money
// math runs on decimals and rounds to 2 places; float64 only appears at the
// domain boundary.
type Calculator struct {
	taxRate          decimal.Decimal
	shippingFee      decimal.Decimal
	freeShippingOver decimal.Decimal
	freeShipping     bool
}

type Option func(*Calculator)

// WithFreeShippingOver waives the shipping fee when the subtotal reaches
// threshold. Off by default: the checkout path charges the flat fee, and the
// threshold rule stays an explicit opt-in.
func WithFreeShippingOver(threshold float64) Option {
	return func(c *Calculator) {
		c.freeShippingOver = decimal.NewFromFloat(threshold)
		c.freeShipping = true
	}
}

func NewCalculator(taxRate, shippingFee float64, opts ...Option) *Calculator {
	c := &Calculator{
		taxRate:     decimal.NewFromFloat(taxRate),
		shippingFee: decimal.NewFromFloat(shippingFee),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summarize computes the breakdown fresh from the given items; nothing is
// cached across mutations.
func (c *Calculator) Summarize(items []domain.LineItem) domain.Summary {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Price).Mul(qty))
		count += item.Quantity
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(c.taxRate).Round(2)

	shipping := decimal.Zero
	if len(items) > 0 {
		shipping = c.shippingFee
		if c.freeShipping && subtotal.GreaterThanOrEqual(c.freeShippingOver) {
			shipping = decimal.Zero
		}
	}

	total := subtotal.Add(tax).Add(shipping).Round(2)

	return domain.Summary{
		Subtotal:  subtotal.InexactFloat64(),
		Tax:       tax.InexactFloat64(),
		Shipping:  shipping.InexactFloat64(),
		Total:     total.InexactFloat64(),
		ItemCount: count,
	}
}
