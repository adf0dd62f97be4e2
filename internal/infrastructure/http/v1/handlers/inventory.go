package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"sitebook/internal/domain"
	"sitebook/internal/domain/inventory"
	"sitebook/internal/infrastructure/http/v1/dto"
)

var (
	_ EntityRequest[*inventory.Consumable] = dto.ConsumableRequest{}
	_ EntityRequest[*inventory.Asset]      = dto.AssetRequest{}
)

// InventoryHandler exposes stock lots, stock-outs, consumable goods and equipment.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service

	consumables  *CatalogHandler[*inventory.Consumable, dto.ConsumableRequest]
	labEquipment *CatalogHandler[*inventory.Asset, dto.AssetRequest]
	equipment    *CatalogHandler[*inventory.Asset, dto.AssetRequest]
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	h := &InventoryHandler{BaseHandler: base, service: service}
	h.consumables = NewCatalogHandler[*inventory.Consumable, dto.ConsumableRequest](base, service.Consumables(),
		WithCreate[*inventory.Consumable, dto.ConsumableRequest](func(c *gin.Context, e *inventory.Consumable) error {
			return service.AddConsumable(c.Request.Context(), e)
		}),
		WithList[*inventory.Consumable, dto.ConsumableRequest](func(c *gin.Context, f domain.ListFilter) (domain.ListResult[*inventory.Consumable], error) {
			return service.ListConsumables(c.Request.Context(), f)
		}),
	)
	h.labEquipment = h.assetHandler(inventory.KindLabEquipment)
	h.equipment = h.assetHandler(inventory.KindEquipment)
	return h
}

func (h *InventoryHandler) assetHandler(kind inventory.AssetKind) *CatalogHandler[*inventory.Asset, dto.AssetRequest] {
	svc, err := h.service.Assets(kind)
	if err != nil {
		panic(err)
	}
	return NewCatalogHandler[*inventory.Asset, dto.AssetRequest](h.BaseHandler, svc,
		WithList[*inventory.Asset, dto.AssetRequest](func(c *gin.Context, f domain.ListFilter) (domain.ListResult[*inventory.Asset], error) {
			return h.service.ListAssets(c.Request.Context(), kind, f)
		}),
	)
}

// CreateStock handles POST /admin/stocks: a lot supplied on credit.
func (h *InventoryHandler) CreateStock(c *gin.Context) {
	h.receive(c, h.service.CreateStock)
}

// AddStockIn handles POST /site/stocks: a lot bought on credit or paid from the wallet.
func (h *InventoryHandler) AddStockIn(c *gin.Context) {
	h.receive(c, h.service.AddStockIn)
}

func (h *InventoryHandler) receive(c *gin.Context, fn func(context.Context, inventory.StockInput) (*inventory.Stock, error)) {
	var req dto.StockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	lot, err := fn(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, lot)
}

// UpdateStock handles PUT /admin/stocks/:id
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	stockID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.StockUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	lot, err := h.service.UpdateStock(c.Request.Context(), stockID, req.Quantity, req.UnitPrice, req.Remarks)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lot)
}

// RecordStockOut handles POST /stock-out
func (h *InventoryHandler) RecordStockOut(c *gin.Context) {
	var req dto.StockOutRequest
	if !h.BindJSON(c, &req) {
		return
	}
	out, err := h.service.RecordStockOut(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, out)
}

// ListStocks handles GET /stocks
func (h *InventoryHandler) ListStocks(c *gin.Context) {
	h.listScoped(c, func(ctx context.Context, f domain.ListFilter) (any, error) {
		r, err := h.service.ListStocks(ctx, f)
		return dto.NewListResponse(r), err
	})
}

// ListStockOuts handles GET /stock-outs
func (h *InventoryHandler) ListStockOuts(c *gin.Context) {
	h.listScoped(c, func(ctx context.Context, f domain.ListFilter) (any, error) {
		r, err := h.service.ListStockOuts(ctx, f)
		return dto.NewListResponse(r), err
	})
}

func (h *InventoryHandler) listScoped(c *gin.Context, fn func(context.Context, domain.ListFilter) (any, error)) {
	var q dto.LedgerQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}
	page, err := fn(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, page)
}

// ConsumeGoods handles POST /consumable-goods/:id/consume
func (h *InventoryHandler) ConsumeGoods(c *gin.Context) {
	consumableID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.ConsumeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.service.ConsumeGoods(c.Request.Context(), consumableID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"item": item, "low": item.Low()})
}

// RegisterAdminRoutes registers the admin inventory routes.
func (h *InventoryHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/stocks", h.ListStocks)
	admin.POST("/stocks", h.CreateStock)
	admin.PUT("/stocks/:id", h.UpdateStock)
	admin.GET("/stock-outs", h.ListStockOuts)
	admin.POST("/stock-out", h.RecordStockOut)

	consumables := admin.Group("/consumable-goods")
	h.consumables.RegisterRoutes(consumables)
	consumables.POST("/:id/consume", h.ConsumeGoods)

	h.labEquipment.RegisterRoutes(admin.Group("/lab-equipment"))
	h.equipment.RegisterRoutes(admin.Group("/equipment"))
}

// RegisterSiteRoutes registers the site inventory routes.
func (h *InventoryHandler) RegisterSiteRoutes(site *gin.RouterGroup) {
	site.GET("/stocks", h.ListStocks)
	site.POST("/stocks", h.AddStockIn)
	site.GET("/stock-outs", h.ListStockOuts)
	site.POST("/stock-out", h.RecordStockOut)

	consumables := site.Group("/consumable-goods")
	consumables.GET("", h.consumables.List)
	consumables.POST("", h.consumables.Create)
	consumables.POST("/:id/consume", h.ConsumeGoods)

	site.GET("/lab-equipment", h.labEquipment.List)
	site.GET("/equipment", h.equipment.List)
}
