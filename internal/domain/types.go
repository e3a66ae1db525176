package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddonCategory groups cake add-ons for display.
type AddonCategory string

const (
	// AddonCategoryDecoration covers toppings and visual decorations.
	AddonCategoryDecoration AddonCategory = "decoration"
	// AddonCategoryMessage covers printed or piped messages.
	AddonCategoryMessage AddonCategory = "message"
	// AddonCategoryCandle covers candles.
	AddonCategoryCandle AddonCategory = "candle"
)

// Valid reports whether the category is one of the known values.
func (c AddonCategory) Valid() bool {
	switch c {
	case AddonCategoryDecoration, AddonCategoryMessage, AddonCategoryCandle:
		return true
	default:
		return false
	}
}

// CakeBase is the sponge flavour a cake is built on.
type CakeBase struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// CakeSize is always scoped to the shape that lists it.
type CakeSize struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Serves     int             `json:"serves"`
	Multiplier decimal.Decimal `json:"priceMultiplier"`
}

// CakeShape owns the ordered set of sizes valid for it.
type CakeShape struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"priceMultiplier"`
	Sizes      []CakeSize      `json:"sizes"`
}

// Size looks up a size by id within the shape.
func (s CakeShape) Size(id string) (CakeSize, bool) {
	for _, size := range s.Sizes {
		if size.ID == id {
			return size, true
		}
	}
	return CakeSize{}, false
}

// CakeFilling is a flat-priced layer filling.
type CakeFilling struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CakeFrosting is a flat-priced outer coating.
type CakeFrosting struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// CakeAddon is a flat-priced extra.
type CakeAddon struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category AddonCategory   `json:"category"`
}

// FeaturedCake is a showcase item displayed on the storefront landing page.
type FeaturedCake struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
}

// Configuration is the in-progress cake assembled by the customizer.
type Configuration struct {
	Base     *CakeBase     `json:"base,omitempty"`
	Shape    *CakeShape    `json:"shape,omitempty"`
	Size     *CakeSize     `json:"size,omitempty"`
	Fillings []CakeFilling `json:"fillings"`
	Frosting *CakeFrosting `json:"frosting,omitempty"`
	Addons   []CakeAddon   `json:"addons"`
	Message  string        `json:"customMessage,omitempty"`
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (c Configuration) Clone() Configuration {
	out := Configuration{Message: c.Message}
	if c.Base != nil {
		base := *c.Base
		out.Base = &base
	}
	if c.Shape != nil {
		shape := *c.Shape
		shape.Sizes = append([]CakeSize(nil), c.Shape.Sizes...)
		out.Shape = &shape
	}
	if c.Size != nil {
		size := *c.Size
		out.Size = &size
	}
	if c.Frosting != nil {
		frosting := *c.Frosting
		out.Frosting = &frosting
	}
	out.Fillings = append([]CakeFilling{}, c.Fillings...)
	out.Addons = append([]CakeAddon{}, c.Addons...)
	return out
}

// CustomCake is a finalized, priced configuration. It is only produced once base,
// shape, size and frosting are all selected.
type CustomCake struct {
	ID         string          `json:"id"`
	Base       CakeBase        `json:"base"`
	Shape      CakeShape       `json:"shape"`
	Size       CakeSize        `json:"size"`
	Fillings   []CakeFilling   `json:"fillings"`
	Frosting   CakeFrosting    `json:"frosting"`
	Addons     []CakeAddon     `json:"addons"`
	Message    string          `json:"customMessage,omitempty"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// CustomerInfo holds delivery contact details embedded in an order.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Order is a persisted purchase of a single cake.
type Order struct {
	ID           string          `json:"id"`
	CheckoutID   string          `json:"checkoutId,omitempty"`
	Cake         CustomCake      `json:"cake"`
	Customer     CustomerInfo    `json:"customerInfo"`
	DeliveryDate string          `json:"deliveryDate"`
	DeliveryTime string          `json:"deliveryTime"`
	Status       OrderStatus     `json:"status"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	Discount     decimal.Decimal `json:"discount"`
	CouponCode   string          `json:"couponCode,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}
