package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	cartsvc "storefront-api/internal/service/cart"
)

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (r cartItemRequest) variant() domain.Variant {
	return domain.Variant{Size: r.Size, Color: r.Color}
}

func getCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		priced, err := svc.Get(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, priced)
	}
}

func addCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		priced, err := svc.AddItem(c.Request.Context(), currentUser(c).ID, req.ProductID, req.Quantity, req.variant())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, priced)
	}
}

func updateCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		priced, err := svc.UpdateQuantity(c.Request.Context(), currentUser(c).ID, req.ProductID, req.Quantity, req.variant())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, priced)
	}
}

func removeCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		priced, err := svc.RemoveItem(c.Request.Context(), currentUser(c).ID, req.ProductID, req.variant())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, priced)
	}
}

func clearCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), currentUser(c).ID); err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c)
	}
}
