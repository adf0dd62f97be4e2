package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"sitebook/internal/core/id"
	"sitebook/internal/domain"
	"sitebook/internal/domain/ledger"
	"sitebook/internal/infrastructure/http/v1/dto"
)

// LedgerHandler exposes payments, expenses and bank transactions.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, service: service}
}

// RecordVendorPayment handles POST /admin/vendor-payments
func (h *LedgerHandler) RecordVendorPayment(c *gin.Context) {
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.RecordVendorPayment(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// DeleteVendorPayment handles DELETE /admin/vendor-payments/:id
func (h *LedgerHandler) DeleteVendorPayment(c *gin.Context) {
	h.deleteBy(c, h.service.DeleteVendorPayment, "vendor payment reversed")
}

// RecordContractorPayment handles POST /admin/contractor-payments
func (h *LedgerHandler) RecordContractorPayment(c *gin.Context) {
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.RecordContractorPayment(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// DeleteContractorPayment handles DELETE /admin/contractor-payments/:id
func (h *LedgerHandler) DeleteContractorPayment(c *gin.Context) {
	h.deleteBy(c, h.service.DeleteContractorPayment, "contractor payment reversed")
}

// RecordExpense handles POST /admin/expenses
func (h *LedgerHandler) RecordExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	e, err := h.service.RecordExpense(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// DeleteExpense handles DELETE /admin/expenses/:id
func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	h.deleteBy(c, h.service.DeleteExpense, "expense reversed")
}

// AddTransaction handles POST /admin/transactions
func (h *LedgerHandler) AddTransaction(c *gin.Context) {
	var req dto.TransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	t, err := h.service.AddTransaction(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// DeleteTransaction handles DELETE /admin/transactions/:id
func (h *LedgerHandler) DeleteTransaction(c *gin.Context) {
	h.deleteBy(c, h.service.DeleteTransaction, "transaction reversed")
}

// AddCapital handles POST /admin/capital
func (h *LedgerHandler) AddCapital(c *gin.Context) {
	var req dto.CapitalRequest
	if !h.BindJSON(c, &req) {
		return
	}
	t, err := h.service.AddCapital(c.Request.Context(), req.Amount, req.BankID, req.ProjectID,
		ledger.PaymentMode(req.PaymentMode), req.Description, req.Date.TimeOrZero())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// AllocateFunds handles POST /admin/allocate-funds
func (h *LedgerHandler) AllocateFunds(c *gin.Context) {
	var req dto.AllocateFundsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	t, err := h.service.AllocateFunds(c.Request.Context(), req.ManagerID, req.Amount, req.BankID,
		ledger.PaymentMode(req.PaymentMode), req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// TransferBankToBank handles POST /admin/banks/transfer
func (h *LedgerHandler) TransferBankToBank(c *gin.Context) {
	var req dto.BankTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	t, err := h.service.TransferBankToBank(c.Request.Context(), req.SourceBankID, req.DestinationBankID,
		req.Amount, req.Date.TimeOrZero(), req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// RecordCreditorPayment handles POST /admin/creditor-payments
func (h *LedgerHandler) RecordCreditorPayment(c *gin.Context) {
	var req dto.CreditorPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.RecordCreditorPayment(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// DeleteCreditorPayment handles DELETE /admin/creditor-payments/:id
func (h *LedgerHandler) DeleteCreditorPayment(c *gin.Context) {
	h.deleteBy(c, h.service.DeleteCreditorPayment, "creditor payment reversed")
}

// ListVendorPayments handles GET /vendor-payments
func (h *LedgerHandler) ListVendorPayments(c *gin.Context) {
	listWith(h.BaseHandler, c, h.service.ListVendorPayments)
}

// ListContractorPayments handles GET /contractor-payments
func (h *LedgerHandler) ListContractorPayments(c *gin.Context) {
	listWith(h.BaseHandler, c, h.service.ListContractorPayments)
}

// ListExpenses handles GET /expenses
func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	listWith(h.BaseHandler, c, h.service.ListExpenses)
}

// ListTransactions handles GET /admin/transactions
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	listWith(h.BaseHandler, c, h.service.ListTransactions)
}

// ListCreditorPayments handles GET /admin/creditor-payments
func (h *LedgerHandler) ListCreditorPayments(c *gin.Context) {
	listWith(h.BaseHandler, c, h.service.ListCreditorPayments)
}

// Wallet handles GET /site/wallet
func (h *LedgerHandler) Wallet(c *gin.Context) {
	u, err := h.service.Wallet(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"walletBalance": u.WalletBalance, "user": u})
}

// AddSiteExpense handles POST /site/expenses
func (h *LedgerHandler) AddSiteExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	e, err := h.service.AddSiteExpense(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// PaySiteVendor handles POST /site/vendor-payments
func (h *LedgerHandler) PaySiteVendor(c *gin.Context) {
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.PaySiteVendor(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// PaySiteContractor handles POST /site/contractor-payments
func (h *LedgerHandler) PaySiteContractor(c *gin.Context) {
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.PaySiteContractor(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// RegisterAdminRoutes registers the admin ledger routes.
func (h *LedgerHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/vendor-payments", h.ListVendorPayments)
	admin.POST("/vendor-payments", h.RecordVendorPayment)
	admin.DELETE("/vendor-payments/:id", h.DeleteVendorPayment)

	admin.GET("/contractor-payments", h.ListContractorPayments)
	admin.POST("/contractor-payments", h.RecordContractorPayment)
	admin.DELETE("/contractor-payments/:id", h.DeleteContractorPayment)

	admin.GET("/expenses", h.ListExpenses)
	admin.POST("/expenses", h.RecordExpense)
	admin.DELETE("/expenses/:id", h.DeleteExpense)

	admin.GET("/transactions", h.ListTransactions)
	admin.POST("/transactions", h.AddTransaction)
	admin.DELETE("/transactions/:id", h.DeleteTransaction)

	admin.POST("/capital", h.AddCapital)
	admin.POST("/allocate-funds", h.AllocateFunds)
	admin.POST("/banks/transfer", h.TransferBankToBank)

	admin.GET("/creditor-payments", h.ListCreditorPayments)
	admin.POST("/creditor-payments", h.RecordCreditorPayment)
	admin.DELETE("/creditor-payments/:id", h.DeleteCreditorPayment)
}

// RegisterSiteRoutes registers the wallet-funded site routes.
func (h *LedgerHandler) RegisterSiteRoutes(site *gin.RouterGroup) {
	site.GET("/wallet", h.Wallet)
	site.GET("/expenses", h.ListExpenses)
	site.POST("/expenses", h.AddSiteExpense)
	site.GET("/vendor-payments", h.ListVendorPayments)
	site.POST("/vendor-payments", h.PaySiteVendor)
	site.GET("/contractor-payments", h.ListContractorPayments)
	site.POST("/contractor-payments", h.PaySiteContractor)
}

func (h *LedgerHandler) deleteBy(c *gin.Context, del func(ctx context.Context, id id.ID) error, message string) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, message)
}

// listWith binds the ledger query and renders one page of fn.
func listWith[T any](h *BaseHandler, c *gin.Context, fn func(context.Context, domain.ListFilter) (domain.ListResult[T], error)) {
	var q dto.LedgerQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}
	result, err := fn(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result))
}
