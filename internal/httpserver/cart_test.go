package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	cartsvc "storefront-api/internal/service/cart"
)

type memCartRepo struct {
	carts map[string]*domain.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]*domain.Cart{}}
}

func (s *memCartRepo) Get(_ context.Context, userID string) (*domain.Cart, error) {
	cart, ok := s.carts[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cart, nil
}

func (s *memCartRepo) Replace(_ context.Context, cart domain.Cart) (*domain.Cart, error) {
	s.carts[cart.UserID] = &cart
	return &cart, nil
}

func (s *memCartRepo) Delete(_ context.Context, userID string) error {
	delete(s.carts, userID)
	return nil
}

type fixedProductRepo struct {
	products map[string]*domain.Product
}

func (s *fixedProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type nopHub struct{}

func (nopHub) Publish(string, string, any) {}

func cartTestRouter(t *testing.T, products map[string]*domain.Product) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := cartsvc.New(newMemCartRepo(), &fixedProductRepo{products: products}, nopHub{})
	sessions := &stubSessions{users: map[string]*domain.User{
		"tok-1": {ID: "u1", Role: domain.RoleCustomer},
	}}

	router := gin.New()
	auth := authMiddleware(sessions)
	router.GET("/api/v1/cart", auth, getCartHandler(svc))
	router.POST("/api/v1/cart/items", auth, addCartItemHandler(svc))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddCartItemAndGetTotals(t *testing.T) {
	price1, _ := decimal.NewFromString("10")
	price2, _ := decimal.NewFromString("50")
	router := cartTestRouter(t, map[string]*domain.Product{
		"p1": {ID: "p1", Name: "P1", Price: price1, Inventory: 10, Status: domain.ProductActive},
		"p2": {ID: "p2", Name: "P2", Price: price2, Inventory: 10, Status: domain.ProductActive},
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"productId":"p2","quantity":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Subtotal string `json:"subtotal"`
			Tax      string `json:"taxAmount"`
			Shipping string `json:"shippingCost"`
			Total    string `json:"totalAmount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success envelope: %s", rec.Body.String())
	}
	if resp.Data.Subtotal != "70" || resp.Data.Tax != "5.6" || resp.Data.Shipping != "9.99" || resp.Data.Total != "85.59" {
		t.Fatalf("unexpected totals: %+v", resp.Data)
	}
}

func TestAddCartItemInsufficientStock(t *testing.T) {
	price, _ := decimal.NewFromString("10")
	router := cartTestRouter(t, map[string]*domain.Product{
		"p1": {ID: "p1", Name: "P1", Price: price, Inventory: 1, Status: domain.ProductActive},
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":5}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected success=false")
	}
	if resp.Error.Code != "insufficient_stock" {
		t.Fatalf("error code = %s, want insufficient_stock", resp.Error.Code)
	}
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	router := cartTestRouter(t, map[string]*domain.Product{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"productId":"ghost","quantity":1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
