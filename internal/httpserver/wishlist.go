package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	wishlistsvc "storefront-api/internal/service/wishlist"
)

func getWishlistHandler(svc *wishlistsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Get(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, list)
	}
}

func addWishlistHandler(svc *wishlistsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Add(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, list)
	}
}

func removeWishlistHandler(svc *wishlistsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Remove(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, list)
	}
}
