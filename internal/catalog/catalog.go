// Package catalog provides the read-only reference tables the customizer draws from.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

// ErrInvalidCatalog is returned when catalog data fails validation.
var ErrInvalidCatalog = errors.New("catalog: invalid data")

// Catalog holds the static reference tables. Callers must treat it as read-only.
type Catalog struct {
	Bases         []domain.CakeBase
	Shapes        []domain.CakeShape
	Fillings      []domain.CakeFilling
	Frostings     []domain.CakeFrosting
	Addons        []domain.CakeAddon
	Featured      []domain.FeaturedCake
	DeliverySlots []string
}

// Base looks up a base by id.
func (c *Catalog) Base(id string) (domain.CakeBase, bool) {
	id = strings.TrimSpace(id)
	for _, base := range c.Bases {
		if base.ID == id {
			return base, true
		}
	}
	return domain.CakeBase{}, false
}

// Shape looks up a shape by id.
func (c *Catalog) Shape(id string) (domain.CakeShape, bool) {
	id = strings.TrimSpace(id)
	for _, shape := range c.Shapes {
		if shape.ID == id {
			out := shape
			out.Sizes = append([]domain.CakeSize(nil), shape.Sizes...)
			return out, true
		}
	}
	return domain.CakeShape{}, false
}

// Filling looks up a filling by id.
func (c *Catalog) Filling(id string) (domain.CakeFilling, bool) {
	id = strings.TrimSpace(id)
	for _, filling := range c.Fillings {
		if filling.ID == id {
			return filling, true
		}
	}
	return domain.CakeFilling{}, false
}

// Frosting looks up a frosting by id.
func (c *Catalog) Frosting(id string) (domain.CakeFrosting, bool) {
	id = strings.TrimSpace(id)
	for _, frosting := range c.Frostings {
		if frosting.ID == id {
			return frosting, true
		}
	}
	return domain.CakeFrosting{}, false
}

// Addon looks up an add-on by id.
func (c *Catalog) Addon(id string) (domain.CakeAddon, bool) {
	id = strings.TrimSpace(id)
	for _, addon := range c.Addons {
		if addon.ID == id {
			return addon, true
		}
	}
	return domain.CakeAddon{}, false
}

// AddonsByCategory filters add-ons, preserving catalog order.
func (c *Catalog) AddonsByCategory(category domain.AddonCategory) []domain.CakeAddon {
	out := make([]domain.CakeAddon, 0, len(c.Addons))
	for _, addon := range c.Addons {
		if addon.Category == category {
			out = append(out, addon)
		}
	}
	return out
}

// IsDeliverySlot reports whether the slot is offered.
func (c *Catalog) IsDeliverySlot(slot string) bool {
	slot = strings.TrimSpace(slot)
	for _, candidate := range c.DeliverySlots {
		if candidate == slot {
			return true
		}
	}
	return false
}

// Validate checks ids are present and unique per table, prices are non-negative
// and multipliers are positive.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: catalog is nil", ErrInvalidCatalog)
	}
	var problems []string
	seen := func(table string) func(id string) {
		ids := make(map[string]struct{})
		return func(id string) {
			if strings.TrimSpace(id) == "" {
				problems = append(problems, table+": empty id")
				return
			}
			if _, dup := ids[id]; dup {
				problems = append(problems, fmt.Sprintf("%s: duplicate id %q", table, id))
			}
			ids[id] = struct{}{}
		}
	}

	if len(c.Bases) == 0 {
		problems = append(problems, "bases: at least one entry required")
	}
	checkBase := seen("bases")
	for _, base := range c.Bases {
		checkBase(base.ID)
		if base.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("bases: %s has negative price", base.ID))
		}
	}

	if len(c.Shapes) == 0 {
		problems = append(problems, "shapes: at least one entry required")
	}
	checkShape := seen("shapes")
	for _, shape := range c.Shapes {
		checkShape(shape.ID)
		if !shape.Multiplier.IsPositive() {
			problems = append(problems, fmt.Sprintf("shapes: %s multiplier must be positive", shape.ID))
		}
		if len(shape.Sizes) == 0 {
			problems = append(problems, fmt.Sprintf("shapes: %s has no sizes", shape.ID))
		}
		checkSize := seen("shapes." + shape.ID + ".sizes")
		for _, size := range shape.Sizes {
			checkSize(size.ID)
			if !size.Multiplier.IsPositive() {
				problems = append(problems, fmt.Sprintf("shapes: %s/%s multiplier must be positive", shape.ID, size.ID))
			}
		}
	}

	checkFilling := seen("fillings")
	for _, filling := range c.Fillings {
		checkFilling(filling.ID)
		if filling.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("fillings: %s has negative price", filling.ID))
		}
	}

	if len(c.Frostings) == 0 {
		problems = append(problems, "frostings: at least one entry required")
	}
	checkFrosting := seen("frostings")
	for _, frosting := range c.Frostings {
		checkFrosting(frosting.ID)
		if frosting.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("frostings: %s has negative price", frosting.ID))
		}
	}

	checkAddon := seen("addons")
	for _, addon := range c.Addons {
		checkAddon(addon.ID)
		if addon.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("addons: %s has negative price", addon.ID))
		}
		if !addon.Category.Valid() {
			problems = append(problems, fmt.Sprintf("addons: %s has unknown category %q", addon.ID, addon.Category))
		}
	}

	if len(c.DeliverySlots) == 0 {
		problems = append(problems, "delivery_slots: at least one entry required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}
