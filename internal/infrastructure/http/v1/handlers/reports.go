package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"sitebook/internal/domain/reports"
	"sitebook/internal/infrastructure/export"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

func (h *ReportsHandler) accounts(c *gin.Context) (*reports.Accounts, bool) {
	var q dto.AccountsQuery
	if !h.BindQuery(c, &q) {
		return nil, false
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	acc, err := h.service.GetAccounts(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return acc, true
}

// GetAccounts handles GET /admin/accounts
func (h *ReportsHandler) GetAccounts(c *gin.Context) {
	if acc, ok := h.accounts(c); ok {
		h.OK(c, acc)
	}
}

// ExportAccounts handles GET /admin/accounts/export.xlsx
func (h *ReportsHandler) ExportAccounts(c *gin.Context) {
	acc, ok := h.accounts(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Accounts(&buf, acc); err != nil {
		h.Error(c, err)
		return
	}
	sendWorkbook(c, fmt.Sprintf("accounts-%s.xlsx", time.Now().UTC().Format("2006-01-02")), buf.Bytes())
}

// GetStockBalance handles GET /reports/stock-balance
func (h *ReportsHandler) GetStockBalance(c *gin.Context) {
	var q dto.StockBalanceQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.service.GetStockBalance(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// RegisterAdminRoutes registers admin report routes.
func (h *ReportsHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/accounts", h.GetAccounts)
	admin.GET("/accounts/export.xlsx", h.ExportAccounts)
	admin.GET("/reports/stock-balance", h.GetStockBalance)
}

// RegisterSiteRoutes registers site report routes.
func (h *ReportsHandler) RegisterSiteRoutes(site *gin.RouterGroup) {
	site.GET("/reports/stock-balance", h.GetStockBalance)
}
