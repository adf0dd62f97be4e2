package handlers

import (
	"github.com/gin-gonic/gin"

	"sitebook/internal/domain"
	"sitebook/internal/domain/labour"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// LabourHandler exposes labourers and wage payouts.
type LabourHandler struct {
	*CatalogHandler[*labour.Labour, dto.LabourRequest]
	service *labour.Service
}

// NewLabourHandler creates a new labour handler. Creation goes through
// Enroll and listing is scoped to the caller's sites.
func NewLabourHandler(base *BaseHandler, service *labour.Service) *LabourHandler {
	return &LabourHandler{
		CatalogHandler: NewCatalogHandler[*labour.Labour, dto.LabourRequest](base, service.CatalogService,
			WithCreate[*labour.Labour, dto.LabourRequest](func(c *gin.Context, l *labour.Labour) error {
				return service.Enroll(c.Request.Context(), l)
			}),
			WithList[*labour.Labour, dto.LabourRequest](func(c *gin.Context, f domain.ListFilter) (domain.ListResult[*labour.Labour], error) {
				return service.ListScoped(c.Request.Context(), f)
			}),
		),
		service: service,
	}
}

// Pay handles POST /labour-payments
func (h *LabourHandler) Pay(c *gin.Context) {
	var req dto.LabourPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.PayLabour(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// ListPayments handles GET /labour-payments
func (h *LabourHandler) ListPayments(c *gin.Context) {
	listWith(h.BaseHandler, c, h.service.ListPayments)
}

// RegisterAdminRoutes registers the admin labour routes.
func (h *LabourHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	h.RegisterRoutes(admin.Group("/labours"))
	admin.GET("/labour-payments", h.ListPayments)
}

// RegisterSiteRoutes registers the site labour routes.
func (h *LabourHandler) RegisterSiteRoutes(site *gin.RouterGroup) {
	site.GET("/labours", h.List)
	site.POST("/labours", h.Create)
	site.GET("/labour-payments", h.ListPayments)
	site.POST("/labour-payments", h.Pay)
}
