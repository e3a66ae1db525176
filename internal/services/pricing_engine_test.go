package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noore22/Cake-Craft/internal/catalog"
)

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

func newTestPricingEngine(t *testing.T) *PricingEngine {
	t.Helper()
	promotions, err := NewPromotionService(DefaultCoupons())
	require.NoError(t, err)
	engine, err := NewPricingEngine(PricingEngineDeps{Rules: DefaultPricingRules(), Promotions: promotions})
	require.NoError(t, err)
	return engine
}

func newTestConfigurator(t *testing.T) *Configurator {
	t.Helper()
	cfg, err := NewConfigurator(catalog.Default(), DefaultPricingRules())
	require.NoError(t, err)
	return cfg
}

// vanilla (25) round medium (x1.0 x1.5) with white buttercream (8).
func classicConfiguration(t *testing.T, c *Configurator) Configuration {
	t.Helper()
	cfg, err := c.SelectBase(Configuration{}, "vanilla")
	require.NoError(t, err)
	cfg, err = c.SelectShape(cfg, "round")
	require.NoError(t, err)
	cfg, err = c.SelectSize(cfg, "medium")
	require.NoError(t, err)
	cfg, err = c.SelectFrosting(cfg, "buttercream-white")
	require.NoError(t, err)
	return cfg
}

func cakeAt(t *testing.T, id, price string) CustomCake {
	t.Helper()
	c := newTestConfigurator(t)
	cake, err := c.Finalize(classicConfiguration(t, c), id)
	require.NoError(t, err)
	cake.TotalPrice = dec(t, price)
	return cake
}

func TestComputePriceWorkedExamples(t *testing.T) {
	rules := DefaultPricingRules()
	c := newTestConfigurator(t)
	cfg := classicConfiguration(t, c)

	assert.True(t, rules.ComputePrice(cfg).Equal(dec(t, "45.5")))

	withMessage := c.SetMessage(cfg, "Happy Birthday")
	assert.True(t, rules.ComputePrice(withMessage).Equal(dec(t, "50.5")))
}

func TestComputePriceAppliesMultipliersOnlyWithShapeAndSize(t *testing.T) {
	rules := DefaultPricingRules()
	c := newTestConfigurator(t)

	cfg, err := c.SelectBase(Configuration{}, "chocolate")
	require.NoError(t, err)
	cfg, err = c.SelectShape(cfg, "heart")
	require.NoError(t, err)
	assert.True(t, rules.ComputePrice(cfg).Equal(dec(t, "30")), "shape without size keeps base price")

	cfg, err = c.SelectSize(cfg, "small")
	require.NoError(t, err)
	assert.True(t, rules.ComputePrice(cfg).Equal(dec(t, "39")))

	assert.True(t, rules.ComputePrice(Configuration{}).IsZero())
}

func TestBreakdownSumsToPrice(t *testing.T) {
	rules := DefaultPricingRules()
	c := newTestConfigurator(t)
	cfg := classicConfiguration(t, c)

	var err error
	cfg, err = c.ToggleFilling(cfg, "nutella")
	require.NoError(t, err)
	cfg, err = c.ToggleFilling(cfg, "caramel")
	require.NoError(t, err)
	cfg, err = c.ToggleAddon(cfg, "gold-leaf")
	require.NoError(t, err)
	cfg = c.SetMessage(cfg, "Congrats")

	lines := rules.Breakdown(cfg)
	labels := make([]string, 0, len(lines))
	sum := decimal.Zero
	for _, line := range lines {
		labels = append(labels, line.Label)
		sum = sum.Add(line.Amount)
	}
	assert.Equal(t, []string{"Base", "Shape & Size", "Frosting", "Fillings", "Add-ons", "Custom message"}, labels)
	assert.True(t, sum.Equal(rules.ComputePrice(cfg)))
	assert.True(t, sum.Equal(dec(t, "92.5")))
}

func TestMessageFeeIgnoresWhitespace(t *testing.T) {
	rules := DefaultPricingRules()
	c := newTestConfigurator(t)
	cfg := classicConfiguration(t, c)
	cfg.Message = "   "
	assert.True(t, rules.ComputePrice(cfg).Equal(dec(t, "45.5")))
}

func TestQuote(t *testing.T) {
	engine := newTestPricingEngine(t)

	tests := []struct {
		name      string
		prices    []string
		coupon    string
		subtotal  string
		fee       string
		discount  string
		total     string
		applied   bool
		rejected  bool
		storeCode string
	}{
		{name: "welcome coupon", prices: []string{"80"}, coupon: "welcome10", subtotal: "80", fee: "10", discount: "8", total: "82", applied: true, storeCode: "WELCOME10"},
		{name: "birthday coupon mixed case", prices: []string{"60", "60"}, coupon: " BirthDay15 ", subtotal: "120", fee: "0", discount: "18", total: "102", applied: true, storeCode: "BIRTHDAY15"},
		{name: "unknown coupon", prices: []string{"50"}, coupon: "SAVE50", subtotal: "50", fee: "10", discount: "0", total: "60", rejected: true, storeCode: "SAVE50"},
		{name: "no coupon", prices: []string{"50"}, subtotal: "50", fee: "10", discount: "0", total: "60"},
		{name: "threshold is exclusive", prices: []string{"100"}, subtotal: "100", fee: "10", discount: "0", total: "110"},
		{name: "just above threshold", prices: []string{"100.01"}, subtotal: "100.01", fee: "0", discount: "0", total: "100.01"},
		{name: "empty cart", subtotal: "0", fee: "10", discount: "0", total: "10"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cart := make([]CustomCake, 0, len(tc.prices))
			for i, price := range tc.prices {
				cart = append(cart, cakeAt(t, string(rune('a'+i)), price))
			}
			quote := engine.Quote(cart, tc.coupon)
			assert.Equal(t, len(tc.prices), quote.ItemCount)
			assert.True(t, quote.Subtotal.Equal(dec(t, tc.subtotal)), "subtotal %s", quote.Subtotal)
			assert.True(t, quote.DeliveryFee.Equal(dec(t, tc.fee)), "fee %s", quote.DeliveryFee)
			assert.True(t, quote.Discount.Equal(dec(t, tc.discount)), "discount %s", quote.Discount)
			assert.True(t, quote.Total.Equal(dec(t, tc.total)), "total %s", quote.Total)
			assert.Equal(t, tc.applied, quote.CouponApplied)
			assert.Equal(t, tc.rejected, quote.CouponRejected)
			assert.Equal(t, tc.storeCode, quote.CouponCode)
		})
	}
}

func TestQuoteClampsDiscountToSubtotal(t *testing.T) {
	promotions, err := NewPromotionService(map[string]decimal.Decimal{"FREE": decimal.NewFromInt(1)})
	require.NoError(t, err)
	engine, err := NewPricingEngine(PricingEngineDeps{Rules: DefaultPricingRules(), Promotions: promotions})
	require.NoError(t, err)

	quote := engine.Quote([]CustomCake{cakeAt(t, "a", "40")}, "free")
	assert.True(t, quote.Discount.Equal(dec(t, "40")))
	assert.True(t, quote.Total.Equal(dec(t, "10")))
}

func TestNewPricingEngineValidates(t *testing.T) {
	_, err := NewPricingEngine(PricingEngineDeps{Rules: DefaultPricingRules()})
	require.Error(t, err)

	promotions, err := NewPromotionService(nil)
	require.NoError(t, err)
	rules := DefaultPricingRules()
	rules.DeliveryFee = decimal.NewFromInt(-1)
	_, err = NewPricingEngine(PricingEngineDeps{Rules: rules, Promotions: promotions})
	require.Error(t, err)
}

func TestNewPromotionServiceRejectsBadRates(t *testing.T) {
	_, err := NewPromotionService(map[string]decimal.Decimal{"ZERO": decimal.Zero})
	require.ErrorIs(t, err, ErrPromotionInvalidRate)

	_, err = NewPromotionService(map[string]decimal.Decimal{"BIG": decimal.NewFromInt(2)})
	require.ErrorIs(t, err, ErrPromotionInvalidRate)

	_, err = NewPromotionService(map[string]decimal.Decimal{"dup": decimal.RequireFromString("0.1"), "DUP": decimal.RequireFromString("0.2")})
	require.Error(t, err)

	svc, err := NewPromotionService(DefaultCoupons())
	require.NoError(t, err)
	codes := []string{}
	for _, coupon := range svc.Coupons() {
		codes = append(codes, coupon.Code)
	}
	assert.Equal(t, []string{"BIRTHDAY15", "WELCOME10"}, codes)
}
