package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	paymentsvc "storefront-api/internal/service/payment"
)

type paymentMethodRequest struct {
	Type      domain.PaymentMethodType `json:"type" binding:"required"`
	Nickname  string                   `json:"nickname"`
	IsDefault bool                     `json:"isDefault"`
	Card      *domain.CardDetails      `json:"card"`
	PayPal    *domain.PayPalDetails    `json:"paypal"`
	Bank      *domain.BankDetails      `json:"bank"`
}

func (r paymentMethodRequest) toDomain(userID string) domain.PaymentMethod {
	return domain.PaymentMethod{
		UserID:    userID,
		Type:      r.Type,
		Nickname:  r.Nickname,
		IsDefault: r.IsDefault,
		Card:      r.Card,
		PayPal:    r.PayPal,
		Bank:      r.Bank,
	}
}

func listPaymentMethodsHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		methods, defaultID, err := svc.List(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if methods == nil {
			methods = []domain.PaymentMethod{}
		}
		respondData(c, http.StatusOK, gin.H{
			"paymentMethods":   methods,
			"total":            len(methods),
			"defaultPaymentId": defaultID,
		})
	}
}

func createPaymentMethodHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		created, err := svc.Create(c.Request.Context(), req.toDomain(currentUser(c).ID))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusCreated, created)
	}
}

func getPaymentMethodHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svc.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, m)
	}
}

func updatePaymentMethodHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		m := req.toDomain(currentUser(c).ID)
		m.ID = c.Param("id")
		updated, err := svc.Update(c.Request.Context(), m)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, updated)
	}
}

func removePaymentMethodHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Remove(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c)
	}
}

func setDefaultPaymentMethodHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svc.SetDefault(c.Request.Context(), currentUser(c).ID, c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, m)
	}
}

func billingHistoryHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := pageParams(c)
		entries, total, err := svc.BillingHistory(c.Request.Context(), currentUser(c).ID, offset, limit)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondList(c, entries, total, offset, limit)
	}
}
