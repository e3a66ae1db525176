package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/services"
)

const maxRequestBody = 16 * 1024

var (
	errEmptyBody    = errors.New("request body is required")
	errBodyTooLarge = errors.New("request body too large")
)

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = maxRequestBody
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// decodeBody reads and strictly decodes a JSON body. The returned status is
// meaningful only when err is non-nil.
func decodeBody(r *http.Request, dst any) (int, error) {
	data, err := readLimitedBody(r, maxRequestBody)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return http.StatusBadRequest, errors.New("request body must be valid JSON")
	}
	return http.StatusOK, nil
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

// presenter renders domain values with localised money.
type presenter struct {
	money *format.MoneyFormatter
}

func newPresenter(money *format.MoneyFormatter) presenter {
	if money == nil {
		money, _ = format.NewMoneyFormatter("en-US", "USD")
	}
	return presenter{money: money}
}

func (p presenter) amount(v decimal.Decimal) format.Money {
	return p.money.Money(v)
}

type catalogItemPayload struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Price    *format.Money `json:"price,omitempty"`
	Image    string        `json:"image,omitempty"`
	Category string        `json:"category,omitempty"`
}

type sizePayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Serves     int    `json:"serves"`
	Multiplier string `json:"priceMultiplier"`
}

type shapePayload struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Multiplier string        `json:"priceMultiplier"`
	Sizes      []sizePayload `json:"sizes,omitempty"`
}

type cakePayload struct {
	ID            string               `json:"id"`
	Base          catalogItemPayload   `json:"base"`
	Shape         shapePayload         `json:"shape"`
	Size          sizePayload          `json:"size"`
	Fillings      []catalogItemPayload `json:"fillings"`
	Frosting      catalogItemPayload   `json:"frosting"`
	Addons        []catalogItemPayload `json:"addons"`
	CustomMessage string               `json:"customMessage,omitempty"`
	TotalPrice    format.Money         `json:"totalPrice"`
}

type configurationPayload struct {
	Base          *catalogItemPayload  `json:"base,omitempty"`
	Shape         *shapePayload        `json:"shape,omitempty"`
	Size          *sizePayload         `json:"size,omitempty"`
	Fillings      []catalogItemPayload `json:"fillings"`
	Frosting      *catalogItemPayload  `json:"frosting,omitempty"`
	Addons        []catalogItemPayload `json:"addons"`
	CustomMessage string               `json:"customMessage,omitempty"`
}

type priceLinePayload struct {
	Label  string       `json:"label"`
	Amount format.Money `json:"amount"`
}

type customerPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type orderPayload struct {
	ID           string          `json:"id"`
	CheckoutID   string          `json:"checkoutId,omitempty"`
	Cake         cakePayload     `json:"cake"`
	Customer     customerPayload `json:"customerInfo"`
	DeliveryDate string          `json:"deliveryDate"`
	DeliveryTime string          `json:"deliveryTime"`
	Status       string          `json:"status"`
	StatusLabel  string          `json:"statusLabel"`
	Progress     int             `json:"progress"`
	TotalAmount  format.Money    `json:"totalAmount"`
	DeliveryFee  format.Money    `json:"deliveryFee"`
	Discount     format.Money    `json:"discount"`
	CouponCode   string          `json:"couponCode,omitempty"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
}

type couponPayload struct {
	Code     string `json:"code"`
	Rate     string `json:"rate,omitempty"`
	Applied  bool   `json:"applied"`
	Rejected bool   `json:"rejected"`
}

type quotePayload struct {
	Currency     string         `json:"currency"`
	ItemCount    int            `json:"itemCount"`
	Subtotal     format.Money   `json:"subtotal"`
	DeliveryFee  format.Money   `json:"deliveryFee"`
	Discount     format.Money   `json:"discount"`
	Total        format.Money   `json:"total"`
	FreeDelivery bool           `json:"freeDelivery"`
	Coupon       *couponPayload `json:"coupon,omitempty"`
	Notices      []string       `json:"notices,omitempty"`
}

func (p presenter) priced(id, name string, price decimal.Decimal) catalogItemPayload {
	money := p.amount(price)
	return catalogItemPayload{ID: id, Name: name, Price: &money}
}

func (p presenter) base(b domain.CakeBase) catalogItemPayload {
	item := p.priced(b.ID, b.Name, b.Price)
	item.Image = b.Image
	return item
}

func (p presenter) frosting(f domain.CakeFrosting) catalogItemPayload {
	item := p.priced(f.ID, f.Name, f.Price)
	item.Image = f.Image
	return item
}

func (p presenter) fillings(fillings []domain.CakeFilling) []catalogItemPayload {
	out := make([]catalogItemPayload, 0, len(fillings))
	for _, f := range fillings {
		out = append(out, p.priced(f.ID, f.Name, f.Price))
	}
	return out
}

func (p presenter) addons(addons []domain.CakeAddon) []catalogItemPayload {
	out := make([]catalogItemPayload, 0, len(addons))
	for _, a := range addons {
		item := p.priced(a.ID, a.Name, a.Price)
		item.Category = string(a.Category)
		out = append(out, item)
	}
	return out
}

func size(s domain.CakeSize) sizePayload {
	return sizePayload{ID: s.ID, Name: s.Name, Serves: s.Serves, Multiplier: s.Multiplier.String()}
}

func shape(s domain.CakeShape, withSizes bool) shapePayload {
	out := shapePayload{ID: s.ID, Name: s.Name, Multiplier: s.Multiplier.String()}
	if withSizes {
		for _, sz := range s.Sizes {
			out.Sizes = append(out.Sizes, size(sz))
		}
	}
	return out
}

func (p presenter) cake(c services.CustomCake) cakePayload {
	return cakePayload{
		ID:            c.ID,
		Base:          p.base(c.Base),
		Shape:         shape(c.Shape, false),
		Size:          size(c.Size),
		Fillings:      p.fillings(c.Fillings),
		Frosting:      p.frosting(c.Frosting),
		Addons:        p.addons(c.Addons),
		CustomMessage: c.Message,
		TotalPrice:    p.amount(c.TotalPrice),
	}
}

func (p presenter) cakes(cakes []services.CustomCake) []cakePayload {
	out := make([]cakePayload, 0, len(cakes))
	for _, c := range cakes {
		out = append(out, p.cake(c))
	}
	return out
}

func (p presenter) configuration(cfg services.Configuration) configurationPayload {
	out := configurationPayload{
		Fillings:      p.fillings(cfg.Fillings),
		Addons:        p.addons(cfg.Addons),
		CustomMessage: cfg.Message,
	}
	if cfg.Base != nil {
		b := p.base(*cfg.Base)
		out.Base = &b
	}
	if cfg.Shape != nil {
		s := shape(*cfg.Shape, true)
		out.Shape = &s
	}
	if cfg.Size != nil {
		s := size(*cfg.Size)
		out.Size = &s
	}
	if cfg.Frosting != nil {
		f := p.frosting(*cfg.Frosting)
		out.Frosting = &f
	}
	return out
}

func (p presenter) breakdown(lines []services.PriceLine) []priceLinePayload {
	out := make([]priceLinePayload, 0, len(lines))
	for _, line := range lines {
		out = append(out, priceLinePayload{Label: line.Label, Amount: p.amount(line.Amount)})
	}
	return out
}

func (p presenter) order(o services.Order) orderPayload {
	return orderPayload{
		ID:         o.ID,
		CheckoutID: o.CheckoutID,
		Cake:       p.cake(o.Cake),
		Customer: customerPayload{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Email:   o.Customer.Email,
			Address: o.Customer.Address,
		},
		DeliveryDate: o.DeliveryDate,
		DeliveryTime: o.DeliveryTime,
		Status:       string(o.Status),
		StatusLabel:  o.Status.Label(),
		Progress:     o.Status.ProgressIndex(),
		TotalAmount:  p.amount(o.TotalAmount),
		DeliveryFee:  p.amount(o.DeliveryFee),
		Discount:     p.amount(o.Discount),
		CouponCode:   o.CouponCode,
		CreatedAt:    formatTime(o.CreatedAt),
		UpdatedAt:    formatTime(o.UpdatedAt),
	}
}

func (p presenter) orders(orders []services.Order) []orderPayload {
	out := make([]orderPayload, 0, len(orders))
	for _, o := range orders {
		out = append(out, p.order(o))
	}
	return out
}

func (p presenter) quote(q services.CheckoutQuote) quotePayload {
	out := quotePayload{
		Currency:     q.Currency,
		ItemCount:    q.ItemCount,
		Subtotal:     p.amount(q.Subtotal),
		DeliveryFee:  p.amount(q.DeliveryFee),
		Discount:     p.amount(q.Discount),
		Total:        p.amount(q.Total),
		FreeDelivery: q.FreeDelivery(),
	}
	if q.CouponCode != "" {
		coupon := &couponPayload{Code: q.CouponCode, Applied: q.CouponApplied, Rejected: q.CouponRejected}
		if q.CouponApplied {
			coupon.Rate = q.CouponRate.String()
		}
		out.Coupon = coupon
	}
	if q.CouponRejected {
		out.Notices = append(out.Notices, "coupon_rejected")
	}
	return out
}
