package handlers

import (
	"github.com/gin-gonic/gin"

	"sitebook/internal/domain/rental"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// MachineHandler exposes machines and their rental billing.
type MachineHandler struct {
	*CatalogHandler[*rental.Machine, dto.MachineRequest]
	service *rental.Service
}

// NewMachineHandler creates a new machine handler.
func NewMachineHandler(base *BaseHandler, service *rental.Service) *MachineHandler {
	return &MachineHandler{
		CatalogHandler: NewCatalogHandler[*rental.Machine, dto.MachineRequest](base, service.CatalogService),
		service:        service,
	}
}

// Update handles PUT /admin/machines/:id. Moving an available machine to
// in-use starts a new assignment.
func (h *MachineHandler) Update(c *gin.Context) {
	machineID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.MachineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.UpdateMachine(c.Request.Context(), machineID, req.Apply)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Assign handles POST /admin/machines/:id/assign
func (h *MachineHandler) Assign(c *gin.Context) {
	machineID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignMachineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.Assign(c.Request.Context(), machineID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// TogglePause handles PUT /machines/:id/pause
func (h *MachineHandler) TogglePause(c *gin.Context) {
	machineID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	m, err := h.service.TogglePause(c.Request.Context(), machineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Details handles GET /machines/:id with the live rent estimate.
func (h *MachineHandler) Details(c *gin.Context) {
	machineID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	d, err := h.service.Details(c.Request.Context(), machineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// Return handles POST /admin/machines/:id/return
func (h *MachineHandler) Return(c *gin.Context) {
	machineID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	res, err := h.service.Return(c.Request.Context(), machineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// SiteMachines handles GET /site/machines?projectId=
func (h *MachineHandler) SiteMachines(c *gin.Context) {
	projectID, err := dto.OptionalID("projectId", c.Query("projectId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	machines, err := h.service.SiteMachines(c.Request.Context(), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": machines, "totalCount": len(machines)})
}

// RegisterAdminRoutes registers the admin machine routes.
func (h *MachineHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/machines")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Details)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/assign", h.Assign)
	g.PUT("/:id/pause", h.TogglePause)
	g.POST("/:id/return", h.Return)
}

// RegisterSiteRoutes registers the site machine routes.
func (h *MachineHandler) RegisterSiteRoutes(site *gin.RouterGroup) {
	g := site.Group("/machines")
	g.GET("", h.SiteMachines)
	g.GET("/:id", h.Details)
	g.PUT("/:id/pause", h.TogglePause)
}
