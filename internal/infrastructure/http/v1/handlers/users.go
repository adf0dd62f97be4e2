package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "sitebook/internal/core/context"
	"sitebook/internal/domain/user"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// UserHandler lets admins manage site managers.
type UserHandler struct {
	*BaseHandler
	service *user.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *BaseHandler, service *user.Service) *UserHandler {
	return &UserHandler{BaseHandler: base, service: service}
}

// ListManagers handles GET /admin/managers
func (h *UserHandler) ListManagers(c *gin.Context) {
	managers, err := h.service.ListManagers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": managers, "totalCount": len(managers)})
}

// CreateManager handles POST /admin/managers
func (h *UserHandler) CreateManager(c *gin.Context) {
	var req dto.CreateManagerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	u, err := h.service.Register(c.Request.Context(), req.ToInput(appctx.RoleSiteManager))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, u)
}

// GetManager handles GET /admin/managers/:id, wallet balance included.
func (h *UserHandler) GetManager(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	u, err := h.service.GetManager(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}

// UpdateManager handles PUT /admin/managers/:id
func (h *UserHandler) UpdateManager(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateManagerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if _, err := h.service.GetManager(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}
	u, err := h.service.Update(c.Request.Context(), userID, req.Apply)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}

// AssignSites handles PUT /admin/managers/:id/sites
func (h *UserHandler) AssignSites(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignSitesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	u, err := h.service.AssignSites(c.Request.Context(), userID, req.Sites)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}

// DeleteManager handles DELETE /admin/managers/:id
func (h *UserHandler) DeleteManager(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if _, err := h.service.GetManager(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, "deleted")
}

// RegisterRoutes registers the manager routes.
func (h *UserHandler) RegisterRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/managers")
	g.GET("", h.ListManagers)
	g.POST("", h.CreateManager)
	g.GET("/:id", h.GetManager)
	g.PUT("/:id", h.UpdateManager)
	g.PUT("/:id/sites", h.AssignSites)
	g.DELETE("/:id", h.DeleteManager)
}
