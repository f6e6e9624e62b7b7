package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdcars/internal/core/id"
	"mdcars/internal/domain/catalogs/product"
	"mdcars/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service:      service.CatalogService,
			EntityName:   "product",
			MapCreateDTO: mapCreateProduct,
			MapUpdateDTO: mapUpdateProduct,
		}),
		service: service,
	}
}

func mapCreateProduct(req dto.CreateProductRequest) *product.Product {
	p := product.NewProduct(req.Name, req.CostPrice, req.SellingPrice)
	p.Code = req.Code
	p.LowStockThreshold = req.LowStockThreshold
	if req.CategoryID != nil {
		if catID, err := id.Parse(*req.CategoryID); err == nil {
			p.CategoryID = &catID
		}
	}
	return p
}

func mapUpdateProduct(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.CostPrice != nil {
		existing.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		existing.SellingPrice = *req.SellingPrice
	}
	if req.LowStockThreshold != nil {
		existing.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.Version = req.Version
	return existing
}

// LowStock handles GET /products/low-stock.
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      products,
		TotalCount: int64(len(products)),
		Limit:      len(products),
	})
}
