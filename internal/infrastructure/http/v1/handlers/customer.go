package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdcars/internal/core/apperror"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/infrastructure/http/v1/dto"
)

// CustomerHandler serves the customer catalog.
type CustomerHandler struct {
	*CatalogHandler[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]
	service *customer.Service
}

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return &CustomerHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
			Service:      service.CatalogService,
			EntityName:   "customer",
			MapCreateDTO: mapCreateCustomer,
			MapUpdateDTO: mapUpdateCustomer,
		}),
		service: service,
	}
}

func mapCreateCustomer(req dto.CreateCustomerRequest) *customer.Customer {
	c := customer.NewCustomer(req.Name, req.Phone)
	c.Email = req.Email
	c.Address = req.Address
	c.Notes = req.Notes
	return c
}

func mapUpdateCustomer(req dto.UpdateCustomerRequest, existing *customer.Customer) *customer.Customer {
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.Address != nil {
		existing.Address = *req.Address
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}
	existing.Version = req.Version
	return existing
}

// ByPhone handles GET /customers/by-phone?phone=...
func (h *CustomerHandler) ByPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		h.Error(c, apperror.NewValidation("phone query parameter is required"))
		return
	}

	found, err := h.service.FindByPhone(c.Request.Context(), phone)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// Debtors handles GET /customers/debtors.
func (h *CustomerHandler) Debtors(c *gin.Context) {
	debtors, err := h.service.ListDebtors(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      debtors,
		TotalCount: int64(len(debtors)),
		Limit:      len(debtors),
	})
}
