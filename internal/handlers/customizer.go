package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/platform/httpx"
	"github.com/Noore22/Cake-Craft/internal/services"
)

// CustomizerHandlers exposes the step-by-step cake builder.
type CustomizerHandlers struct {
	customizer   services.CustomizerService
	configurator *services.Configurator
	present      presenter
}

// NewCustomizerHandlers constructs customizer handlers.
func NewCustomizerHandlers(customizer services.CustomizerService, configurator *services.Configurator, money *format.MoneyFormatter) *CustomizerHandlers {
	return &CustomizerHandlers{
		customizer:   customizer,
		configurator: configurator,
		present:      newPresenter(money),
	}
}

// Routes registers customizer endpoints under the provided router.
func (h *CustomizerHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/sessions", h.startSession)
	r.Get("/sessions/{sessionId}", h.getSession)
	r.Delete("/sessions/{sessionId}", h.discardSession)
	r.Put("/sessions/{sessionId}/selection", h.applySelection)
	r.Post("/sessions/{sessionId}:advance", h.advance)
	r.Post("/sessions/{sessionId}:back", h.back)
	r.Post("/sessions/{sessionId}:add-to-cart", h.addToCart)
	r.Post("/price", h.price)
}

type stepPayload struct {
	Index      int    `json:"index"`
	Label      string `json:"label"`
	CanAdvance bool   `json:"canAdvance"`
}

type customizerSessionResponse struct {
	ID            string               `json:"id"`
	Step          int                  `json:"step"`
	StepLabel     string               `json:"stepLabel"`
	Steps         []stepPayload        `json:"steps"`
	Configuration configurationPayload `json:"configuration"`
	Price         format.Money         `json:"price"`
	Breakdown     []priceLinePayload   `json:"breakdown"`
	CanAdvance    bool                 `json:"canAdvance"`
	Complete      bool                 `json:"complete"`
	Advanced      *bool                `json:"advanced,omitempty"`
	CreatedAt     string               `json:"createdAt"`
	UpdatedAt     string               `json:"updatedAt"`
}

type selectionRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type priceRequest struct {
	Base          string   `json:"base"`
	Shape         string   `json:"shape"`
	Size          string   `json:"size"`
	Fillings      []string `json:"fillings"`
	Frosting      string   `json:"frosting"`
	Addons        []string `json:"addons"`
	CustomMessage string   `json:"customMessage"`
}

type priceResponse struct {
	Configuration configurationPayload `json:"configuration"`
	Price         format.Money         `json:"price"`
	Breakdown     []priceLinePayload   `json:"breakdown"`
	Steps         []stepPayload        `json:"steps"`
	Complete      bool                 `json:"complete"`
}

func (h *CustomizerHandlers) startSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.customizer.Start(r.Context())
	if err != nil {
		h.writeCustomizerError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, h.sessionResponse(session, nil))
}

func (h *CustomizerHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.customizer.Get(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeCustomizerError(r.Context(), w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, h.sessionResponse(session, nil))
}

func (h *CustomizerHandlers) discardSession(w http.ResponseWriter, r *http.Request) {
	if err := h.customizer.Discard(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
		h.writeCustomizerError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomizerHandlers) applySelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req selectionRequest
	if status, err := decodeBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}
	session, err := h.customizer.Select(ctx, services.CustomizerSelectCommand{
		SessionID: chi.URLParam(r, "sessionId"),
		Field:     services.CustomizerSelection(strings.ToLower(strings.TrimSpace(req.Field))),
		Value:     req.Value,
	})
	if err != nil {
		h.writeCustomizerError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.sessionResponse(session, nil))
}

func (h *CustomizerHandlers) advance(w http.ResponseWriter, r *http.Request) {
	session, advanced, err := h.customizer.Advance(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeCustomizerError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.sessionResponse(session, &advanced))
}

func (h *CustomizerHandlers) back(w http.ResponseWriter, r *http.Request) {
	session, err := h.customizer.Back(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeCustomizerError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.sessionResponse(session, nil))
}

func (h *CustomizerHandlers) addToCart(w http.ResponseWriter, r *http.Request) {
	cake, err := h.customizer.AddToCart(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeCustomizerError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"cake": h.present.cake(cake)})
}

// price evaluates a full selection set without creating a session.
func (h *CustomizerHandlers) price(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req priceRequest
	if status, err := decodeBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}
	cfg, err := h.buildConfiguration(req)
	if err != nil {
		h.writeCustomizerError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, priceResponse{
		Configuration: h.present.configuration(cfg),
		Price:         h.present.amount(h.configurator.Price(cfg)),
		Breakdown:     h.present.breakdown(h.configurator.Breakdown(cfg)),
		Steps:         steps(cfg),
		Complete:      services.IsComplete(cfg),
	})
}

func (h *CustomizerHandlers) buildConfiguration(req priceRequest) (services.Configuration, error) {
	c := h.configurator
	cfg := services.Configuration{}
	var err error
	if v := strings.TrimSpace(req.Base); v != "" {
		if cfg, err = c.SelectBase(cfg, v); err != nil {
			return cfg, err
		}
	}
	if v := strings.TrimSpace(req.Shape); v != "" {
		if cfg, err = c.SelectShape(cfg, v); err != nil {
			return cfg, err
		}
	}
	if v := strings.TrimSpace(req.Size); v != "" {
		if cfg, err = c.SelectSize(cfg, v); err != nil {
			return cfg, err
		}
	}
	seen := make(map[string]struct{})
	for _, id := range req.Fillings {
		id = strings.TrimSpace(id)
		if _, dup := seen["f:"+id]; dup {
			continue
		}
		seen["f:"+id] = struct{}{}
		if cfg, err = c.ToggleFilling(cfg, id); err != nil {
			return cfg, err
		}
	}
	if v := strings.TrimSpace(req.Frosting); v != "" {
		if cfg, err = c.SelectFrosting(cfg, v); err != nil {
			return cfg, err
		}
	}
	for _, id := range req.Addons {
		id = strings.TrimSpace(id)
		if _, dup := seen["a:"+id]; dup {
			continue
		}
		seen["a:"+id] = struct{}{}
		if cfg, err = c.ToggleAddon(cfg, id); err != nil {
			return cfg, err
		}
	}
	return c.SetMessage(cfg, req.CustomMessage), nil
}

func steps(cfg services.Configuration) []stepPayload {
	out := make([]stepPayload, 0, len(services.Steps()))
	for _, step := range services.Steps() {
		out = append(out, stepPayload{Index: int(step), Label: step.Label(), CanAdvance: services.CanAdvance(cfg, step)})
	}
	return out
}

func (h *CustomizerHandlers) sessionResponse(session services.CustomizerSession, advanced *bool) customizerSessionResponse {
	return customizerSessionResponse{
		ID:            session.ID,
		Step:          int(session.Step),
		StepLabel:     session.Step.Label(),
		Steps:         steps(session.Configuration),
		Configuration: h.present.configuration(session.Configuration),
		Price:         h.present.amount(session.Price),
		Breakdown:     h.present.breakdown(session.Breakdown),
		CanAdvance:    session.CanAdvance,
		Complete:      session.Complete,
		Advanced:      advanced,
		CreatedAt:     formatTime(session.CreatedAt),
		UpdatedAt:     formatTime(session.UpdatedAt),
	}
}

func (h *CustomizerHandlers) writeCustomizerError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCustomizerSessionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("session_not_found", "customizer session not found", http.StatusNotFound))
	case errors.Is(err, services.ErrConfigurationIncomplete):
		httpx.WriteError(ctx, w, httpx.NewError("configuration_incomplete", "base, shape, size and frosting are required", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCustomizerInvalidInput),
		errors.Is(err, services.ErrCatalogItemNotFound),
		errors.Is(err, services.ErrShapeRequired),
		errors.Is(err, services.ErrSizeNotInShape):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_selection", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart is temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("customizer_error", "failed to process customizer request", http.StatusInternalServerError))
	}
}
