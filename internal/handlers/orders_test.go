package handlers

import (
	"net/http"
	"testing"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

func placeTestOrder(t *testing.T, sf *testStorefront) checkoutResponse {
	t.Helper()
	sf.addClassicCake(t, "")
	rr := sf.do(t, http.MethodPost, "/api/v1/checkout", validCheckout(""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return decodeJSON[checkoutResponse](t, rr)
}

func TestOrderHandlers_GetAndReorder(t *testing.T) {
	sf := newTestStorefront(t, domain.User{})
	placed := placeTestOrder(t, sf)
	orderID := placed.Orders[0].ID

	rr := sf.do(t, http.MethodGet, "/api/v1/orders/"+orderID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	order := decodeJSON[orderPayload](t, rr)
	if order.TotalAmount.Amount != "55.50" {
		t.Fatalf("expected total 55.50, got %s", order.TotalAmount.Amount)
	}

	rr = sf.do(t, http.MethodPost, "/api/v1/orders/"+orderID+":reorder", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	cart := decodeJSON[cartResponse](t, sf.do(t, http.MethodGet, "/api/v1/cart", nil))
	if len(cart.Items) != 1 {
		t.Fatalf("expected reorder to fill the cart with 1 cake, got %d", len(cart.Items))
	}
	if cart.Items[0].ID == order.Cake.ID {
		t.Fatalf("expected reordered cake to get a fresh id")
	}

	rr = sf.do(t, http.MethodGet, "/api/v1/orders/ORD-MISSING", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAdminHandlers_StatusAndStats(t *testing.T) {
	sf := newTestStorefront(t, domain.User{})
	first := placeTestOrder(t, sf)
	placeTestOrder(t, sf)
	orderID := first.Orders[0].ID

	rr := sf.do(t, http.MethodPut, "/api/v1/admin/orders/"+orderID+"/status", updateStatusRequest{Status: "out-for-delivery"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	updated := decodeJSON[orderPayload](t, rr)
	if updated.StatusLabel != "Out for Delivery" || updated.Progress != 4 {
		t.Fatalf("unexpected status presentation %s/%d", updated.StatusLabel, updated.Progress)
	}

	rr = sf.do(t, http.MethodPut, "/api/v1/admin/orders/"+orderID+"/status", updateStatusRequest{Status: "eaten"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rr.Code)
	}

	sf.do(t, http.MethodPut, "/api/v1/admin/orders/"+orderID+"/status", updateStatusRequest{Status: "delivered"})

	list := decodeJSON[adminOrdersResponse](t, sf.do(t, http.MethodGet, "/api/v1/admin/orders?status=delivered", nil))
	if len(list.Items) != 1 || list.Items[0].ID != orderID {
		t.Fatalf("expected only the delivered order, got %+v", list.Items)
	}
	if len(list.Statuses) != len(domain.OrderStatuses()) {
		t.Fatalf("expected every status option, got %d", len(list.Statuses))
	}

	stats := decodeJSON[adminStatsResponse](t, sf.do(t, http.MethodGet, "/api/v1/admin/stats", nil))
	if stats.TotalOrders != 2 || stats.ActiveOrders != 1 || stats.TodayOrders != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.TotalRevenue.Amount != "111.00" {
		t.Fatalf("expected revenue 111.00, got %s", stats.TotalRevenue.Amount)
	}
}

func TestAdminHandlers_PaginatesOrders(t *testing.T) {
	sf := newTestStorefront(t, domain.User{})
	for i := 0; i < 3; i++ {
		placeTestOrder(t, sf)
	}

	first := decodeJSON[adminOrdersResponse](t, sf.do(t, http.MethodGet, "/api/v1/admin/orders?pageSize=2", nil))
	if len(first.Items) != 2 || first.NextPageToken == "" {
		t.Fatalf("expected a full first page with a token, got %d items, token %q", len(first.Items), first.NextPageToken)
	}
	second := decodeJSON[adminOrdersResponse](t, sf.do(t, http.MethodGet, "/api/v1/admin/orders?pageSize=2&pageToken="+first.NextPageToken, nil))
	if len(second.Items) != 1 || second.NextPageToken != "" {
		t.Fatalf("expected last page with 1 item, got %d items, token %q", len(second.Items), second.NextPageToken)
	}
	if second.Items[0].ID == first.Items[0].ID || second.Items[0].ID == first.Items[1].ID {
		t.Fatalf("expected pages not to overlap")
	}

	rr := sf.do(t, http.MethodGet, "/api/v1/admin/orders?pageSize=-1", nil)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_pagination" {
		t.Fatalf("expected invalid_pagination, got %d", rr.Code)
	}
}

func TestAdminHandlers_PaginationSurvivesFilterChange(t *testing.T) {
	sf := newTestStorefront(t, domain.User{})
	for i := 0; i < 3; i++ {
		placeTestOrder(t, sf)
	}

	first := decodeJSON[adminOrdersResponse](t, sf.do(t, http.MethodGet, "/api/v1/admin/orders?status=pending&pageSize=1", nil))
	if len(first.Items) != 1 || first.NextPageToken == "" {
		t.Fatalf("expected one pending order and a token, got %d items", len(first.Items))
	}
	cursorID := first.Items[0].ID
	rr := sf.do(t, http.MethodPut, "/api/v1/admin/orders/"+cursorID+"/status", updateStatusRequest{Status: "baking"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status: expected 200, got %d", rr.Code)
	}

	rr = sf.do(t, http.MethodGet, "/api/v1/admin/orders?status=pending&pageSize=5&pageToken="+first.NextPageToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected next page after the cursor order left the filter, got %d: %s", rr.Code, rr.Body.String())
	}
	next := decodeJSON[adminOrdersResponse](t, rr)
	if len(next.Items) != 2 {
		t.Fatalf("expected the two remaining pending orders, got %d", len(next.Items))
	}
	for _, item := range next.Items {
		if item.ID == cursorID {
			t.Fatalf("cursor order %s listed again", cursorID)
		}
	}
}

func TestMeHandlers(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		sf := newTestStorefront(t, domain.User{})

		profile := decodeJSON[profileResponse](t, sf.do(t, http.MethodGet, "/api/v1/me", nil))
		if profile.SignedIn || profile.User != nil {
			t.Fatalf("expected anonymous profile, got %+v", profile)
		}
		rr := sf.do(t, http.MethodGet, "/api/v1/me/dashboard", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("signed in", func(t *testing.T) {
		sf := newTestStorefront(t, demoUser())
		placed := placeTestOrder(t, sf)
		sf.do(t, http.MethodPut, "/api/v1/admin/orders/"+placed.Orders[0].ID+"/status", updateStatusRequest{Status: "baking"})

		profile := decodeJSON[profileResponse](t, sf.do(t, http.MethodGet, "/api/v1/me", nil))
		if !profile.SignedIn || profile.User == nil || profile.User.ID != "user-1" {
			t.Fatalf("expected signed-in profile, got %+v", profile)
		}
		rr := sf.do(t, http.MethodGet, "/api/v1/me/dashboard", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		dash := decodeJSON[dashboardResponse](t, rr)
		if dash.TotalOrders != 1 || dash.InProgress != 1 || dash.Delivered != 0 || dash.Favorites != 2 {
			t.Fatalf("unexpected dashboard %+v", dash)
		}
	})
}
