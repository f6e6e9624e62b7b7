package handlers

import (
	"mdcars/internal/domain/catalogs/partner"
	"mdcars/internal/infrastructure/http/v1/dto"
)

// PartnerHandler serves the business partner catalog.
type PartnerHandler struct {
	*CatalogHandler[*partner.Partner, dto.CreatePartnerRequest, dto.UpdatePartnerRequest]
	service *partner.Service
}

// NewPartnerHandler creates a partner handler.
func NewPartnerHandler(base *BaseHandler, service *partner.Service) *PartnerHandler {
	return &PartnerHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*partner.Partner, dto.CreatePartnerRequest, dto.UpdatePartnerRequest]{
			Service:      service.CatalogService,
			EntityName:   "partner",
			MapCreateDTO: mapCreatePartner,
			MapUpdateDTO: mapUpdatePartner,
		}),
		service: service,
	}
}

func mapCreatePartner(req dto.CreatePartnerRequest) *partner.Partner {
	p := partner.NewPartner(req.Name, req.OwnershipPercentage)
	p.Phone = req.Phone
	p.Email = req.Email
	return p
}

func mapUpdatePartner(req dto.UpdatePartnerRequest, existing *partner.Partner) *partner.Partner {
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.OwnershipPercentage != nil {
		existing.OwnershipPercentage = *req.OwnershipPercentage
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.Version = req.Version
	return existing
}
