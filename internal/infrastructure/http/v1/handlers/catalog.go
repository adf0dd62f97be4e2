package handlers

import (
	"github.com/gin-gonic/gin"

	"sitebook/internal/core/id"
	"sitebook/internal/domain"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// EntityRequest builds a new entity or applies itself onto an existing one.
type EntityRequest[T any] interface {
	ToEntity() T
	Apply(T) error
}

// CatalogHandler provides generic CRUD handlers over a catalog service.
type CatalogHandler[T domain.CatalogEntity, R EntityRequest[T]] struct {
	*BaseHandler
	service *domain.CatalogService[T]

	// create overrides service.Create, e.g. to apply site scope.
	create func(*gin.Context, T) error
	// list overrides service.List.
	list func(*gin.Context, domain.ListFilter) (domain.ListResult[T], error)
	// get overrides service.GetByID.
	get func(*gin.Context, id.ID) (T, error)
}

// CatalogOption customises a CatalogHandler.
type CatalogOption[T domain.CatalogEntity, R EntityRequest[T]] func(*CatalogHandler[T, R])

// WithCreate replaces the create call.
func WithCreate[T domain.CatalogEntity, R EntityRequest[T]](fn func(*gin.Context, T) error) CatalogOption[T, R] {
	return func(h *CatalogHandler[T, R]) { h.create = fn }
}

// WithList replaces the list call.
func WithList[T domain.CatalogEntity, R EntityRequest[T]](fn func(*gin.Context, domain.ListFilter) (domain.ListResult[T], error)) CatalogOption[T, R] {
	return func(h *CatalogHandler[T, R]) { h.list = fn }
}

// WithGet replaces the get-by-id call.
func WithGet[T domain.CatalogEntity, R EntityRequest[T]](fn func(*gin.Context, id.ID) (T, error)) CatalogOption[T, R] {
	return func(h *CatalogHandler[T, R]) { h.get = fn }
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T domain.CatalogEntity, R EntityRequest[T]](base *BaseHandler, service *domain.CatalogService[T], opts ...CatalogOption[T, R]) *CatalogHandler[T, R] {
	h := &CatalogHandler[T, R]{BaseHandler: base, service: service}
	h.create = func(c *gin.Context, e T) error { return service.Create(c.Request.Context(), e) }
	h.list = func(c *gin.Context, f domain.ListFilter) (domain.ListResult[T], error) {
		return service.List(c.Request.Context(), f)
	}
	h.get = func(c *gin.Context, entityID id.ID) (T, error) {
		return service.GetByID(c.Request.Context(), entityID)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// List handles GET /{entity}.
func (h *CatalogHandler[T, R]) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}
	result, err := h.list(c, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result))
}

// Get handles GET /{entity}/:id.
func (h *CatalogHandler[T, R]) Get(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	e, err := h.get(c, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// Create handles POST /{entity}.
func (h *CatalogHandler[T, R]) Create(c *gin.Context) {
	var req R
	if !h.BindJSON(c, &req) {
		return
	}
	e := req.ToEntity()
	if err := h.create(c, e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// Update handles PUT /{entity}/:id.
func (h *CatalogHandler[T, R]) Update(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req R
	if !h.BindJSON(c, &req) {
		return
	}
	updated, err := h.service.Update(c.Request.Context(), entityID, req.Apply)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}

// Delete handles DELETE /{entity}/:id.
func (h *CatalogHandler[T, R]) Delete(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, "deleted")
}

// RegisterRoutes registers the five CRUD routes on group.
func (h *CatalogHandler[T, R]) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}
