package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrPromotionInvalidRate indicates a coupon rate outside (0, 1].
var ErrPromotionInvalidRate = errors.New("promotion: invalid rate")

type promotionService struct {
	coupons map[string]Coupon
}

// DefaultCoupons returns the storefront's standing coupon table.
func DefaultCoupons() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"WELCOME10":  decimal.RequireFromString("0.10"),
		"BIRTHDAY15": decimal.RequireFromString("0.15"),
	}
}

// NewPromotionService builds the coupon table. Codes are matched case-insensitively.
func NewPromotionService(coupons map[string]decimal.Decimal) (PromotionService, error) {
	table := make(map[string]Coupon, len(coupons))
	one := decimal.NewFromInt(1)
	for raw, rate := range coupons {
		code := normalizeCouponCode(raw)
		if code == "" {
			return nil, errors.New("promotion service: coupon code must not be empty")
		}
		if !rate.IsPositive() || rate.GreaterThan(one) {
			return nil, fmt.Errorf("%w: %s=%s", ErrPromotionInvalidRate, code, rate)
		}
		if _, exists := table[code]; exists {
			return nil, fmt.Errorf("promotion service: duplicate coupon %s", code)
		}
		table[code] = Coupon{Code: code, Rate: rate}
	}
	return &promotionService{coupons: table}, nil
}

func (s *promotionService) Resolve(code string) (Coupon, bool) {
	coupon, ok := s.coupons[normalizeCouponCode(code)]
	return coupon, ok
}

func (s *promotionService) Coupons() []Coupon {
	out := make([]Coupon, 0, len(s.coupons))
	for _, coupon := range s.coupons {
		out = append(out, coupon)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
