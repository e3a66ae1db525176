package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Noore22/Cake-Craft/internal/catalog"
	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/platform/httpx"
)

// CatalogHandlers serves the read-only reference tables.
type CatalogHandlers struct {
	catalog *catalog.Catalog
	present presenter
}

// NewCatalogHandlers binds the handlers to a loaded catalog.
func NewCatalogHandlers(cat *catalog.Catalog, money *format.MoneyFormatter) *CatalogHandlers {
	return &CatalogHandlers{catalog: cat, present: newPresenter(money)}
}

// Routes registers catalog endpoints under the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCatalog)
	r.Get("/delivery-slots", h.listDeliverySlots)
}

type featuredPayload struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Price       format.Money `json:"price"`
}

type addonGroupPayload struct {
	Category string               `json:"category"`
	Addons   []catalogItemPayload `json:"addons"`
}

type catalogResponse struct {
	Bases         []catalogItemPayload `json:"bases"`
	Shapes        []shapePayload       `json:"shapes"`
	Fillings      []catalogItemPayload `json:"fillings"`
	Frostings     []catalogItemPayload `json:"frostings"`
	Addons        []catalogItemPayload `json:"addons"`
	AddonGroups   []addonGroupPayload  `json:"addonGroups"`
	Featured      []featuredPayload    `json:"featured"`
	DeliverySlots []string             `json:"deliverySlots"`
}

func (h *CatalogHandlers) getCatalog(w http.ResponseWriter, r *http.Request) {
	p := h.present
	resp := catalogResponse{
		Bases:         make([]catalogItemPayload, 0, len(h.catalog.Bases)),
		Shapes:        make([]shapePayload, 0, len(h.catalog.Shapes)),
		Fillings:      p.fillings(h.catalog.Fillings),
		Frostings:     make([]catalogItemPayload, 0, len(h.catalog.Frostings)),
		Addons:        p.addons(h.catalog.Addons),
		Featured:      make([]featuredPayload, 0, len(h.catalog.Featured)),
		DeliverySlots: append([]string{}, h.catalog.DeliverySlots...),
	}
	for _, b := range h.catalog.Bases {
		resp.Bases = append(resp.Bases, p.base(b))
	}
	for _, s := range h.catalog.Shapes {
		resp.Shapes = append(resp.Shapes, shape(s, true))
	}
	for _, f := range h.catalog.Frostings {
		resp.Frostings = append(resp.Frostings, p.frosting(f))
	}
	for _, category := range []domain.AddonCategory{domain.AddonCategoryCandle, domain.AddonCategoryDecoration, domain.AddonCategoryMessage} {
		resp.AddonGroups = append(resp.AddonGroups, addonGroupPayload{
			Category: string(category),
			Addons:   p.addons(h.catalog.AddonsByCategory(category)),
		})
	}
	for _, f := range h.catalog.Featured {
		resp.Featured = append(resp.Featured, featuredPayload{
			ID:          f.ID,
			Name:        f.Name,
			Description: f.Description,
			Image:       f.Image,
			Price:       p.amount(f.Price),
		})
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandlers) listDeliverySlots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"slots": append([]string{}, h.catalog.DeliverySlots...)})
}
