package domain

import "github.com/shopspring/decimal"

// PriceLine is one labelled term of a cake's price, as shown in the order summary.
type PriceLine struct {
	Label  string
	Amount decimal.Decimal
}

// CheckoutQuote captures the aggregated monetary results of pricing a cart.
type CheckoutQuote struct {
	Currency       string
	ItemCount      int
	Subtotal       decimal.Decimal
	DeliveryFee    decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	CouponCode     string
	CouponRate     decimal.Decimal
	CouponApplied  bool
	CouponRejected bool
}

// FreeDelivery reports whether the delivery fee was waived.
func (q CheckoutQuote) FreeDelivery() bool {
	return q.ItemCount > 0 && q.DeliveryFee.IsZero()
}
