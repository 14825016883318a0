package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
	ordersvc "storefront-api/internal/service/order"
)

type fixedOrderRepo struct {
	order *domain.Order
}

func (s *fixedOrderRepo) CreateCheckout(_ context.Context, o domain.Order) (*domain.Order, error) {
	o.ID = "o-new"
	return &o, nil
}

func (s *fixedOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, domain.ErrNotFound
	}
	out := *s.order
	return &out, nil
}

func (s *fixedOrderRepo) GetByNumber(_ context.Context, _ string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (s *fixedOrderRepo) List(_ context.Context, _ orderrepo.ListFilter) ([]domain.Order, int, error) {
	return nil, 0, nil
}

func (s *fixedOrderRepo) ListAdmin(_ context.Context, _ orderrepo.AdminListFilter) ([]domain.Order, int, error) {
	return nil, 0, nil
}

func (s *fixedOrderRepo) Update(_ context.Context, o domain.Order) (*domain.Order, error) {
	out := o
	return &out, nil
}

func (s *fixedOrderRepo) Stats(_ context.Context) (*domain.OrderStats, error) {
	return &domain.OrderStats{}, nil
}

func orderTestRouter(t *testing.T, repo *fixedOrderRepo, sessions *stubSessions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := ordersvc.New(repo, newMemCartRepo(), &fixedProductRepo{products: map[string]*domain.Product{}}, nopHub{}, nil, nil)

	router := gin.New()
	auth := authMiddleware(sessions)
	router.POST("/api/v1/orders/checkout", auth, checkoutHandler(svc))
	router.GET("/api/v1/orders/:id", auth, getOrderHandler(svc))
	router.PUT("/api/v1/admin/orders/:id", auth, requireStaff(), updateOrderHandler(svc))
	return router
}

func customerSessions() *stubSessions {
	return &stubSessions{users: map[string]*domain.User{
		"tok-1": {ID: "u1", Role: domain.RoleCustomer},
	}}
}

func TestCheckoutEmptyCart(t *testing.T) {
	router := orderTestRouter(t, &fixedOrderRepo{}, customerSessions())

	body := `{"shippingAddress":{"firstName":"A","lastName":"B","addressLine1":"1 Main","city":"X","state":"Y","postalCode":"1","country":"US"},"paymentMethod":"card"}`
	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders/checkout", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error.Code != "empty_cart" {
		t.Fatalf("error code = %s, want empty_cart", resp.Error.Code)
	}
}

func TestGetOrderHiddenFromNonOwner(t *testing.T) {
	repo := &fixedOrderRepo{order: &domain.Order{ID: "o1", UserID: "someone-else", Status: domain.OrderPending}}
	router := orderTestRouter(t, repo, customerSessions())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/o1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestGetOrderVisibleToStaff(t *testing.T) {
	repo := &fixedOrderRepo{order: &domain.Order{ID: "o1", UserID: "someone-else", Status: domain.OrderPending}}
	sessions := &stubSessions{users: map[string]*domain.User{
		"tok-1": {ID: "staff-1", Role: domain.RoleEditor},
	}}
	router := orderTestRouter(t, repo, sessions)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/o1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestUpdateOrderInvalidTransition(t *testing.T) {
	repo := &fixedOrderRepo{order: &domain.Order{ID: "o1", UserID: "u1", Status: domain.OrderPending, PaymentStatus: domain.PaymentPending}}
	sessions := &stubSessions{users: map[string]*domain.User{
		"tok-1": {ID: "staff-1", Role: domain.RoleAdmin},
	}}
	router := orderTestRouter(t, repo, sessions)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/admin/orders/o1", `{"status":"delivered"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error.Code != "invalid_transition" {
		t.Fatalf("error code = %s, want invalid_transition", resp.Error.Code)
	}
}
