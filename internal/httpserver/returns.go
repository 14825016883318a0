package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	returnsrepo "storefront-api/internal/repository/returns"
	returnssvc "storefront-api/internal/service/returns"
)

type createReturnRequest struct {
	OrderID string              `json:"orderId" binding:"required"`
	Items   []domain.ReturnLine `json:"items" binding:"required"`
	Reason  string              `json:"reason"`
}

func createReturnHandler(svc *returnssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createReturnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		created, err := svc.Create(c.Request.Context(), currentUser(c).ID, req.OrderID, req.Items, req.Reason)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusCreated, created)
	}
}

func listReturnsHandler(svc *returnssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := pageParams(c)
		items, total, err := svc.List(c.Request.Context(), returnsrepo.ListFilter{
			UserID: currentUser(c).ID,
			Status: domain.ReturnStatus(c.Query("status")),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondList(c, items, total, offset, limit)
	}
}

func getReturnHandler(svc *returnssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		u := currentUser(c)
		if req.UserID != u.ID && !u.Role.CanManageOrders() {
			respondError(c, http.StatusNotFound, "not_found", "resource not found")
			return
		}
		respondData(c, http.StatusOK, req)
	}
}

func adminListReturnsHandler(svc *returnssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := pageParams(c)
		items, total, err := svc.List(c.Request.Context(), returnsrepo.ListFilter{
			UserID: c.Query("userId"),
			Status: domain.ReturnStatus(c.Query("status")),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondList(c, items, total, offset, limit)
	}
}

type returnStatusRequest struct {
	Status domain.ReturnStatus `json:"status" binding:"required"`
}

func updateReturnStatusHandler(svc *returnssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req returnStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		updated, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, updated)
	}
}
