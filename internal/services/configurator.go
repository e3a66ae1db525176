package services

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/Noore22/Cake-Craft/internal/catalog"
	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

// MaxMessageLength caps the cake message, counted in characters.
const MaxMessageLength = 100

var (
	// ErrCatalogItemNotFound indicates a selection referenced an unknown catalog id.
	ErrCatalogItemNotFound = errors.New("configurator: catalog item not found")
	// ErrSizeNotInShape indicates a size was chosen that the current shape does not offer.
	ErrSizeNotInShape = errors.New("configurator: size not offered for shape")
	// ErrShapeRequired indicates a size was chosen before any shape.
	ErrShapeRequired = errors.New("configurator: shape must be selected first")
	// ErrConfigurationIncomplete indicates finalisation was attempted without base, shape, size and frosting.
	ErrConfigurationIncomplete = errors.New("configurator: configuration incomplete")
)

// Configurator applies catalog selections to a configuration. Every method
// returns a new value; the input is never mutated.
type Configurator struct {
	catalog *catalog.Catalog
	rules   PricingRules
	policy  *bluemonday.Policy
}

// NewConfigurator binds the configurator to a validated catalog.
func NewConfigurator(cat *catalog.Catalog, rules PricingRules) (*Configurator, error) {
	if cat == nil {
		return nil, errors.New("configurator: catalog is required")
	}
	return &Configurator{
		catalog: cat,
		rules:   rules,
		policy:  bluemonday.StrictPolicy(),
	}, nil
}

// Catalog returns the bound catalog.
func (c *Configurator) Catalog() *catalog.Catalog { return c.catalog }

// SelectBase replaces the base.
func (c *Configurator) SelectBase(cfg Configuration, id string) (Configuration, error) {
	base, ok := c.catalog.Base(id)
	if !ok {
		return cfg, fmt.Errorf("%w: base %q", ErrCatalogItemNotFound, id)
	}
	out := cfg.Clone()
	out.Base = &base
	return out, nil
}

// SelectShape replaces the shape and clears the size, since sizes are scoped per shape.
func (c *Configurator) SelectShape(cfg Configuration, id string) (Configuration, error) {
	shape, ok := c.catalog.Shape(id)
	if !ok {
		return cfg, fmt.Errorf("%w: shape %q", ErrCatalogItemNotFound, id)
	}
	out := cfg.Clone()
	out.Shape = &shape
	out.Size = nil
	return out, nil
}

// SelectSize picks a size offered by the current shape.
func (c *Configurator) SelectSize(cfg Configuration, id string) (Configuration, error) {
	if cfg.Shape == nil {
		return cfg, ErrShapeRequired
	}
	size, ok := cfg.Shape.Size(strings.TrimSpace(id))
	if !ok {
		return cfg, fmt.Errorf("%w: %s/%s", ErrSizeNotInShape, cfg.Shape.ID, id)
	}
	out := cfg.Clone()
	out.Size = &size
	return out, nil
}

// ToggleFilling adds the filling when absent and removes it when present.
func (c *Configurator) ToggleFilling(cfg Configuration, id string) (Configuration, error) {
	filling, ok := c.catalog.Filling(id)
	if !ok {
		return cfg, fmt.Errorf("%w: filling %q", ErrCatalogItemNotFound, id)
	}
	out := cfg.Clone()
	for i, existing := range out.Fillings {
		if existing.ID == filling.ID {
			out.Fillings = append(out.Fillings[:i], out.Fillings[i+1:]...)
			return out, nil
		}
	}
	out.Fillings = append(out.Fillings, filling)
	return out, nil
}

// SelectFrosting replaces the frosting.
func (c *Configurator) SelectFrosting(cfg Configuration, id string) (Configuration, error) {
	frosting, ok := c.catalog.Frosting(id)
	if !ok {
		return cfg, fmt.Errorf("%w: frosting %q", ErrCatalogItemNotFound, id)
	}
	out := cfg.Clone()
	out.Frosting = &frosting
	return out, nil
}

// ToggleAddon adds the add-on when absent and removes it when present.
func (c *Configurator) ToggleAddon(cfg Configuration, id string) (Configuration, error) {
	addon, ok := c.catalog.Addon(id)
	if !ok {
		return cfg, fmt.Errorf("%w: addon %q", ErrCatalogItemNotFound, id)
	}
	out := cfg.Clone()
	for i, existing := range out.Addons {
		if existing.ID == addon.ID {
			out.Addons = append(out.Addons[:i], out.Addons[i+1:]...)
			return out, nil
		}
	}
	out.Addons = append(out.Addons, addon)
	return out, nil
}

// SetMessage strips markup, trims whitespace and truncates to MaxMessageLength
// characters. A blank result clears the message.
func (c *Configurator) SetMessage(cfg Configuration, text string) Configuration {
	out := cfg.Clone()
	out.Message = c.cleanMessage(text)
	return out
}

const maxSanitizePasses = 4

func (c *Configurator) cleanMessage(text string) string {
	cleaned := strings.TrimSpace(c.plainText(text))
	if utf8.RuneCountInString(cleaned) > MaxMessageLength {
		runes := []rune(cleaned)
		cleaned = strings.TrimSpace(string(runes[:MaxMessageLength]))
	}
	return cleaned
}

// plainText strips markup until decoding entities reveals no more of it, so
// escaped tags cannot come back as live markup.
func (c *Configurator) plainText(text string) string {
	for range maxSanitizePasses {
		next := html.UnescapeString(c.policy.Sanitize(text))
		if next == text {
			return next
		}
		text = next
	}
	return strings.NewReplacer("<", "", ">", "").Replace(text)
}

// Price returns the configuration price.
func (c *Configurator) Price(cfg Configuration) decimal.Decimal {
	return c.rules.ComputePrice(cfg)
}

// Breakdown itemises the configuration price.
func (c *Configurator) Breakdown(cfg Configuration) []PriceLine {
	return c.rules.Breakdown(cfg)
}

// Finalize converts a complete configuration into a priced cake with the given id.
func (c *Configurator) Finalize(cfg Configuration, id string) (CustomCake, error) {
	if !IsComplete(cfg) {
		return CustomCake{}, ErrConfigurationIncomplete
	}
	snapshot := cfg.Clone()
	return CustomCake{
		ID:         id,
		Base:       *snapshot.Base,
		Shape:      *snapshot.Shape,
		Size:       *snapshot.Size,
		Fillings:   snapshot.Fillings,
		Frosting:   *snapshot.Frosting,
		Addons:     snapshot.Addons,
		Message:    snapshot.Message,
		TotalPrice: c.rules.ComputePrice(snapshot),
	}, nil
}

// configurationOf rebuilds a configuration from a finalised cake.
func configurationOf(cake CustomCake) Configuration {
	base, shape, size, frosting := cake.Base, cake.Shape, cake.Size, cake.Frosting
	return Configuration{
		Base:     &base,
		Shape:    &shape,
		Size:     &size,
		Fillings: append([]domain.CakeFilling{}, cake.Fillings...),
		Frosting: &frosting,
		Addons:   append([]domain.CakeAddon{}, cake.Addons...),
		Message:  cake.Message,
	}
}
