package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sitebook/internal/domain/accounts"
	"sitebook/internal/infrastructure/export"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// BankHandler exposes bank accounts and their statements.
type BankHandler struct {
	*CatalogHandler[*accounts.BankAccount, dto.BankAccountRequest]
	service *accounts.BankService
}

// NewBankHandler creates a new bank handler.
func NewBankHandler(base *BaseHandler, service *accounts.BankService) *BankHandler {
	return &BankHandler{
		CatalogHandler: NewCatalogHandler[*accounts.BankAccount, dto.BankAccountRequest](base, service.CatalogService),
		service:        service,
	}
}

// Statement handles GET /admin/banks/:id/statement
func (h *BankHandler) Statement(c *gin.Context) {
	bankID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	st, err := h.service.Statement(c.Request.Context(), bankID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, st)
}

// StatementXLSX handles GET /admin/banks/:id/statement.xlsx
func (h *BankHandler) StatementXLSX(c *gin.Context) {
	bankID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	st, err := h.service.Statement(c.Request.Context(), bankID)
	if err != nil {
		h.Error(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.BankStatement(&buf, st); err != nil {
		h.Error(c, err)
		return
	}
	sendWorkbook(c, fmt.Sprintf("statement-%s.xlsx", st.Bank.AccountNumber), buf.Bytes())
}

// RegisterRoutes registers bank routes.
func (h *BankHandler) RegisterRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/banks")
	h.CatalogHandler.RegisterRoutes(g)
	g.GET("/:id/statement", h.Statement)
	g.GET("/:id/statement.xlsx", h.StatementXLSX)
}

// CreditorHandler exposes creditors and their logs.
type CreditorHandler struct {
	*CatalogHandler[*accounts.Creditor, dto.CreditorRequest]
	service *accounts.CreditorService
}

// NewCreditorHandler creates a new creditor handler.
func NewCreditorHandler(base *BaseHandler, service *accounts.CreditorService) *CreditorHandler {
	return &CreditorHandler{
		CatalogHandler: NewCatalogHandler[*accounts.Creditor, dto.CreditorRequest](base, service.CatalogService),
		service:        service,
	}
}

// Detail handles GET /admin/creditors/:id/detail
func (h *CreditorHandler) Detail(c *gin.Context) {
	creditorID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	d, err := h.service.Detail(c.Request.Context(), creditorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// RegisterRoutes registers creditor routes.
func (h *CreditorHandler) RegisterRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/creditors")
	h.CatalogHandler.RegisterRoutes(g)
	g.GET("/:id/detail", h.Detail)
}

// ReconcileHandler runs the balance reconciliation on demand.
type ReconcileHandler struct {
	*BaseHandler
	reconciler *accounts.Reconciler
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(base *BaseHandler, reconciler *accounts.Reconciler) *ReconcileHandler {
	return &ReconcileHandler{BaseHandler: base, reconciler: reconciler}
}

// Run handles POST /admin/reconcile?fix=true
func (h *ReconcileHandler) Run(c *gin.Context) {
	fix, _ := strconv.ParseBool(c.DefaultQuery("fix", "false"))
	drifts, err := h.reconciler.Run(c.Request.Context(), fix)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"drifts": drifts, "fixed": fix && len(drifts) > 0})
}

func sendWorkbook(c *gin.Context, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, body)
}
