package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/httpx"
	"github.com/Noore22/Cake-Craft/internal/platform/requestctx"
	"github.com/Noore22/Cake-Craft/internal/services"
)

// MeHandlers exposes the visitor profile and customer dashboard.
type MeHandlers struct {
	orders services.OrderService
}

// NewMeHandlers constructs visitor scoped handlers.
func NewMeHandlers(orders services.OrderService) *MeHandlers {
	return &MeHandlers{orders: orders}
}

// Routes registers visitor endpoints under the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getProfile)
	r.Get("/dashboard", h.getDashboard)
}

type userPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	Favorites []string `json:"favorites"`
}

type profileResponse struct {
	SignedIn bool         `json:"signedIn"`
	User     *userPayload `json:"user,omitempty"`
}

type dashboardResponse struct {
	User        userPayload `json:"user"`
	TotalOrders int         `json:"totalOrders"`
	Delivered   int         `json:"delivered"`
	InProgress  int         `json:"inProgress"`
	Favorites   int         `json:"favorites"`
}

func userResponse(u domain.User) userPayload {
	favorites := append([]string{}, u.Favorites...)
	return userPayload{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		Favorites: favorites,
	}
}

func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	user, ok := domain.SessionUser(requestctx.Session(r.Context()))
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, profileResponse{SignedIn: false})
		return
	}
	payload := userResponse(user)
	httpx.WriteJSON(w, http.StatusOK, profileResponse{SignedIn: true, User: &payload})
}

func (h *MeHandlers) getDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := requestctx.Session(ctx)
	user, ok := domain.SessionUser(session)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "sign in to view your dashboard", http.StatusUnauthorized))
		return
	}
	stats, err := h.orders.DashboardStats(ctx, session)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, dashboardResponse{
		User:        userResponse(user),
		TotalOrders: stats.TotalOrders,
		Delivered:   stats.Delivered,
		InProgress:  stats.InProgress,
		Favorites:   stats.Favorites,
	})
}
