package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	priceLineBase      = "Base"
	priceLineShapeSize = "Shape & Size"
	priceLineFrosting  = "Frosting"
	priceLineFillings  = "Fillings"
	priceLineAddons    = "Add-ons"
	priceLineMessage   = "Custom message"
)

// PricingRules holds the fees applied on top of catalog prices.
type PricingRules struct {
	MessageFee            decimal.Decimal
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	Currency              string
}

// DefaultPricingRules returns the storefront's standard fees.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		MessageFee:            decimal.NewFromInt(5),
		DeliveryFee:           decimal.NewFromInt(10),
		FreeDeliveryThreshold: decimal.NewFromInt(100),
		Currency:              "USD",
	}
}

// ComputePrice prices a configuration. Full precision is kept; rounding is a
// presentation concern.
func (r PricingRules) ComputePrice(cfg Configuration) decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Breakdown(cfg) {
		total = total.Add(line.Amount)
	}
	return total
}

// Breakdown lists the price terms of a configuration in rule order. Terms that
// do not apply are omitted, so the lines always sum to ComputePrice.
func (r PricingRules) Breakdown(cfg Configuration) []PriceLine {
	lines := make([]PriceLine, 0, 6)

	base := decimal.Zero
	if cfg.Base != nil {
		base = cfg.Base.Price
		lines = append(lines, PriceLine{Label: priceLineBase, Amount: base})
	}
	if cfg.Shape != nil && cfg.Size != nil {
		scaled := base.Mul(cfg.Shape.Multiplier).Mul(cfg.Size.Multiplier)
		lines = append(lines, PriceLine{Label: priceLineShapeSize, Amount: scaled.Sub(base)})
	}
	if cfg.Frosting != nil {
		lines = append(lines, PriceLine{Label: priceLineFrosting, Amount: cfg.Frosting.Price})
	}
	if len(cfg.Fillings) > 0 {
		sum := decimal.Zero
		for _, filling := range cfg.Fillings {
			sum = sum.Add(filling.Price)
		}
		lines = append(lines, PriceLine{Label: priceLineFillings, Amount: sum})
	}
	if len(cfg.Addons) > 0 {
		sum := decimal.Zero
		for _, addon := range cfg.Addons {
			sum = sum.Add(addon.Price)
		}
		lines = append(lines, PriceLine{Label: priceLineAddons, Amount: sum})
	}
	if strings.TrimSpace(cfg.Message) != "" {
		lines = append(lines, PriceLine{Label: priceLineMessage, Amount: r.MessageFee})
	}
	return lines
}

// DeliveryFeeFor returns the flat delivery fee, waived strictly above the threshold.
func (r PricingRules) DeliveryFeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(r.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return r.DeliveryFee
}

// PricingEngineDeps bundles collaborators required to construct the pricing engine.
type PricingEngineDeps struct {
	Rules      PricingRules
	Promotions PromotionService
}

// PricingEngine prices configurations and whole carts.
type PricingEngine struct {
	rules      PricingRules
	promotions PromotionService
}

// NewPricingEngine validates the rules and wires the coupon table.
func NewPricingEngine(deps PricingEngineDeps) (*PricingEngine, error) {
	if deps.Promotions == nil {
		return nil, errors.New("pricing engine: promotion service is required")
	}
	rules := deps.Rules
	if rules.MessageFee.IsNegative() || rules.DeliveryFee.IsNegative() || rules.FreeDeliveryThreshold.IsNegative() {
		return nil, errors.New("pricing engine: fees must not be negative")
	}
	if strings.TrimSpace(rules.Currency) == "" {
		rules.Currency = "USD"
	}
	return &PricingEngine{rules: rules, promotions: deps.Promotions}, nil
}

// Rules returns the configured fees.
func (e *PricingEngine) Rules() PricingRules { return e.rules }

// ComputePrice prices a single configuration.
func (e *PricingEngine) ComputePrice(cfg Configuration) decimal.Decimal {
	return e.rules.ComputePrice(cfg)
}

// Breakdown returns the labelled price terms of a configuration.
func (e *PricingEngine) Breakdown(cfg Configuration) []PriceLine {
	return e.rules.Breakdown(cfg)
}

// Quote aggregates a cart. An unknown non-empty coupon is reported through
// CouponRejected and contributes no discount.
func (e *PricingEngine) Quote(cart []CustomCake, couponCode string) CheckoutQuote {
	subtotal := decimal.Zero
	for _, cake := range cart {
		subtotal = subtotal.Add(cake.TotalPrice)
	}

	quote := CheckoutQuote{
		Currency:    e.rules.Currency,
		ItemCount:   len(cart),
		Subtotal:    subtotal,
		DeliveryFee: e.rules.DeliveryFeeFor(subtotal),
		Discount:    decimal.Zero,
		CouponRate:  decimal.Zero,
	}

	if code := strings.TrimSpace(couponCode); code != "" {
		quote.CouponCode = strings.ToUpper(code)
		if coupon, ok := e.promotions.Resolve(code); ok {
			quote.CouponCode = coupon.Code
			quote.CouponRate = coupon.Rate
			quote.CouponApplied = true
			quote.Discount = decimal.Min(subtotal.Mul(coupon.Rate), subtotal)
		} else {
			quote.CouponRejected = true
		}
	}

	quote.Total = subtotal.Sub(quote.Discount).Add(quote.DeliveryFee)
	if quote.Total.IsNegative() {
		quote.Total = decimal.Zero
	}
	return quote
}
