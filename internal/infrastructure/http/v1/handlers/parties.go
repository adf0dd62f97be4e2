package handlers

import (
	"github.com/gin-gonic/gin"

	"sitebook/internal/core/id"
	"sitebook/internal/domain"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// NewProjectHandler serves projects. Listing and reads are scoped to the caller's sites.
func NewProjectHandler(base *BaseHandler, service *project.Service) *CatalogHandler[*project.Project, dto.ProjectRequest] {
	return NewCatalogHandler[*project.Project, dto.ProjectRequest](base, service.CatalogService,
		WithList[*project.Project, dto.ProjectRequest](func(c *gin.Context, f domain.ListFilter) (domain.ListResult[*project.Project], error) {
			return service.ListScoped(c.Request.Context(), f)
		}),
		WithGet[*project.Project, dto.ProjectRequest](func(c *gin.Context, projectID id.ID) (*project.Project, error) {
			return service.GetScoped(c.Request.Context(), projectID)
		}),
	)
}

// NewVendorHandler serves vendors.
func NewVendorHandler(base *BaseHandler, service *party.VendorService) *CatalogHandler[*party.Vendor, dto.VendorRequest] {
	return NewCatalogHandler[*party.Vendor, dto.VendorRequest](base, service.CatalogService)
}

// ContractorHandler serves contractors.
type ContractorHandler struct {
	*CatalogHandler[*party.Contractor, dto.ContractorRequest]
	service *party.ContractorService
}

// NewContractorHandler creates a new contractor handler.
func NewContractorHandler(base *BaseHandler, service *party.ContractorService) *ContractorHandler {
	return &ContractorHandler{
		CatalogHandler: NewCatalogHandler[*party.Contractor, dto.ContractorRequest](base, service.CatalogService),
		service:        service,
	}
}

// ListScoped handles GET /site/contractors: contractors working on the caller's sites.
func (h *ContractorHandler) ListScoped(c *gin.Context) {
	filter := domain.DefaultListFilter()
	if status := c.Query("status"); status != "" {
		filter = filter.Eq("status", status)
	}
	items, err := h.service.ListScoped(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items, "totalCount": len(items)})
}
