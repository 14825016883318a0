package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	ordersvc "storefront-api/internal/service/order"
	returnssvc "storefront-api/internal/service/returns"
	usersvc "storefront-api/internal/service/user"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, items any, total, offset, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"pagination": gin.H{
			"total":  total,
			"offset": offset,
			"limit":  limit,
		},
	})
}

func respondOK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func badRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "bad_request", message)
}

// respondServiceError maps service-level errors onto the wire envelope.
// Unknown errors come back as an opaque 500; details go to the log only.
func respondServiceError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		respondError(c, http.StatusConflict, "insufficient_stock", stockErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(c, http.StatusConflict, "already_exists", "resource already exists")
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, ordersvc.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, returnssvc.ErrNotEligible):
		respondError(c, http.StatusBadRequest, "not_eligible", "order not eligible for return")
	case errors.Is(err, usersvc.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	default:
		respondError(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
