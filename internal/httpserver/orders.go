package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
	ordersvc "storefront-api/internal/service/order"
)

type checkoutRequest struct {
	ShippingAddress domain.OrderAddress   `json:"shippingAddress" binding:"required"`
	BillingAddress  *domain.OrderAddress  `json:"billingAddress"`
	ShippingMethod  domain.ShippingMethod `json:"shippingMethod"`
	PaymentMethod   string                `json:"paymentMethod" binding:"required"`
}

func checkoutHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		billing := req.ShippingAddress
		if req.BillingAddress != nil {
			billing = *req.BillingAddress
		}
		created, err := svc.Checkout(c.Request.Context(), ordersvc.CheckoutInput{
			UserID:          currentUser(c).ID,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  billing,
			ShippingMethod:  req.ShippingMethod,
			PaymentMethod:   req.PaymentMethod,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusCreated, created)
	}
}

func listOrdersHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := pageParams(c)
		orders, total, err := svc.List(c.Request.Context(), orderrepo.ListFilter{
			UserID: currentUser(c).ID,
			Status: domain.OrderStatus(c.Query("status")),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondList(c, orders, total, offset, limit)
	}
}

// getOrderHandler serves an order to its owner, or to staff for any user.
// Non-owners get a 404, not a 403, so order IDs cannot be enumerated.
func getOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		u := currentUser(c)
		if order.UserID != u.ID && !u.Role.CanManageOrders() {
			respondError(c, http.StatusNotFound, "not_found", "resource not found")
			return
		}
		respondData(c, http.StatusOK, order)
	}
}

// getOrderByNumberHandler resolves the human-readable order number printed
// on confirmations. Same visibility rule as getOrderHandler.
func getOrderByNumberHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.GetByNumber(c.Request.Context(), c.Param("number"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		u := currentUser(c)
		if order.UserID != u.ID && !u.Role.CanManageOrders() {
			respondError(c, http.StatusNotFound, "not_found", "resource not found")
			return
		}
		respondData(c, http.StatusOK, order)
	}
}

func adminListOrdersHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := pageParams(c)
		filter := orderrepo.AdminListFilter{
			Status: domain.OrderStatus(c.Query("status")),
			Search: c.Query("search"),
			Offset: offset,
			Limit:  limit,
		}
		if t, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
			filter.From = &t
		}
		if t, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
			filter.To = &t
		}
		orders, total, err := svc.ListAdmin(c.Request.Context(), filter)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondList(c, orders, total, offset, limit)
	}
}

func orderStatsHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, stats)
	}
}

type orderUpdateRequest struct {
	Status         *domain.OrderStatus   `json:"status"`
	PaymentStatus  *domain.PaymentStatus `json:"paymentStatus"`
	TrackingNumber *string               `json:"trackingNumber"`
	Notes          *string               `json:"notes"`
}

func updateOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orderUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		updated, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), ordersvc.UpdateInput{
			Status:         req.Status,
			PaymentStatus:  req.PaymentStatus,
			TrackingNumber: req.TrackingNumber,
			Notes:          req.Notes,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, updated)
	}
}
