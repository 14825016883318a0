package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	productrepo "storefront-api/internal/repository/product"
	catalogsvc "storefront-api/internal/service/catalog"
)

type productRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Price       decimal.Decimal      `json:"price" binding:"required"`
	SalePrice   *decimal.Decimal     `json:"salePrice"`
	Category    string               `json:"category"`
	Brand       string               `json:"brand"`
	SKU         string               `json:"sku" binding:"required"`
	Status      domain.ProductStatus `json:"status"`
	Inventory   int                  `json:"inventoryQuantity"`
	Images      []string             `json:"images"`
	Sizes       []string             `json:"sizes"`
	Colors      []string             `json:"colors"`
	Tags        []string             `json:"tags"`
	IsFeatured  bool                 `json:"isFeatured"`
	IsTrending  bool                 `json:"isTrending"`
}

func (r productRequest) toDomain() domain.Product {
	return domain.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		SalePrice:   r.SalePrice,
		Category:    r.Category,
		Brand:       r.Brand,
		SKU:         r.SKU,
		Status:      r.Status,
		Inventory:   r.Inventory,
		Images:      r.Images,
		Sizes:       r.Sizes,
		Colors:      r.Colors,
		Tags:        r.Tags,
		IsFeatured:  r.IsFeatured,
		IsTrending:  r.IsTrending,
	}
}

func createProductHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		created, err := svc.Create(c.Request.Context(), req.toDomain(), currentUser(c).ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusCreated, created)
	}
}

func getProductHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, p)
	}
}

func listProductsHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := pageParams(c)
		filter := productrepo.ListFilter{
			Category: c.Query("category"),
			Brand:    c.Query("brand"),
			Status:   domain.ProductStatus(c.Query("status")),
			Query:    c.Query("q"),
			SortBy:   c.Query("sort"),
			Offset:   offset,
			Limit:    limit,
		}
		if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
			filter.MinPrice = &v
		}
		if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
			filter.MaxPrice = &v
		}
		products, total, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondList(c, products, total, offset, limit)
	}
}

func featuredProductsHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.Featured(c.Request.Context(), intQuery(c, "limit", 10))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, products)
	}
}

func trendingProductsHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.Trending(c.Request.Context(), intQuery(c, "limit", 10))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, products)
	}
}

func newArrivalsHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.NewArrivals(c.Request.Context(), intQuery(c, "limit", 10))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, products)
	}
}

func updateProductHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		p := req.toDomain()
		p.ID = c.Param("id")
		updated, err := svc.Update(c.Request.Context(), p)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, updated)
	}
}

func deleteProductHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c)
	}
}

type inventoryRequest struct {
	Delta int `json:"delta"`
}

func adjustInventoryHandler(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inventoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		updated, err := svc.AdjustInventory(c.Request.Context(), c.Param("id"), req.Delta)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, updated)
	}
}
