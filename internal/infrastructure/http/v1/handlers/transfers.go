package handlers

import (
	"github.com/gin-gonic/gin"

	"sitebook/internal/domain/transfer"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// TransferHandler exposes inter-project transfers.
type TransferHandler struct {
	*BaseHandler
	service *transfer.Service
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(base *BaseHandler, service *transfer.Service) *TransferHandler {
	return &TransferHandler{BaseHandler: base, service: service}
}

// Create handles POST /transfers. The transfer is executed immediately.
func (h *TransferHandler) Create(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	r, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}
	t, err := h.service.Create(c.Request.Context(), r)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// List handles GET /transfers
func (h *TransferHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}
	if kind := c.Query("type"); kind != "" {
		filter = filter.Eq("type", kind)
	}
	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result))
}

// RegisterRoutes registers transfer routes on a role group.
func (h *TransferHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/transfers", h.List)
	group.POST("/transfers", h.Create)
}
