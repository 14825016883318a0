package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	addresssvc "storefront-api/internal/service/address"
)

type addressRequest struct {
	Label        string             `json:"label" binding:"required"`
	Type         domain.AddressType `json:"type"`
	FirstName    string             `json:"firstName" binding:"required"`
	LastName     string             `json:"lastName" binding:"required"`
	Company      string             `json:"company"`
	AddressLine1 string             `json:"addressLine1" binding:"required"`
	AddressLine2 string             `json:"addressLine2"`
	City         string             `json:"city" binding:"required"`
	State        string             `json:"state" binding:"required"`
	PostalCode   string             `json:"postalCode" binding:"required"`
	Country      string             `json:"country" binding:"required"`
	Phone        string             `json:"phone"`
	IsDefault    bool               `json:"isDefault"`
}

func (r addressRequest) toDomain(userID string) domain.Address {
	return domain.Address{
		UserID:       userID,
		Label:        r.Label,
		Type:         r.Type,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Company:      r.Company,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
		Phone:        r.Phone,
		IsDefault:    r.IsDefault,
	}
}

func listAddressesHandler(svc *addresssvc.Book) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, defaultID, err := svc.List(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if entries == nil {
			entries = []domain.Address{}
		}
		respondData(c, http.StatusOK, gin.H{
			"addresses":        entries,
			"total":            len(entries),
			"defaultAddressId": defaultID,
		})
	}
}

func createAddressHandler(svc *addresssvc.Book) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addressRequest
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

func getAddressHandler(svc *addresssvc.Book) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, a)
	}
}

func updateAddressHandler(svc *addresssvc.Book) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		a := req.toDomain(currentUser(c).ID)
		a.ID = c.Param("id")
		updated, err := svc.Update(c.Request.Context(), a)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, updated)
	}
}

func deleteAddressHandler(svc *addresssvc.Book) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c)
	}
}

func setDefaultAddressHandler(svc *addresssvc.Book) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.SetDefault(c.Request.Context(), currentUser(c).ID, c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, a)
	}
}
