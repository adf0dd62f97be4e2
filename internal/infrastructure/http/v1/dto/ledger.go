package dto

import (
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/ledger"
)

// PaymentRequest pays a vendor or a contractor.
type PaymentRequest struct {
	PartyID      id.ID       `json:"partyId" binding:"required"`
	Amount       types.Money `json:"amount"`
	Advance      types.Money `json:"advance"`
	Deduction    types.Money `json:"deduction"`
	MachineRent  types.Money `json:"machineRent"`
	RentDeducted types.Money `json:"rentDeducted"`
	PaymentMode  string      `json:"paymentMode" binding:"omitempty,max=30"`
	BankID       *id.ID      `json:"bankId"`
	CreditorID   *id.ID      `json:"creditorId"`
	ProjectID    *id.ID      `json:"projectId"`
	Date         *Date       `json:"date"`
	Remarks      string      `json:"remarks" binding:"max=1000"`
}

// ToInput maps the request to the ledger input.
func (r PaymentRequest) ToInput() ledger.PaymentInput {
	return ledger.PaymentInput{
		PartyID:      r.PartyID,
		Amount:       r.Amount,
		Advance:      r.Advance,
		Deduction:    r.Deduction,
		Mode:         ledger.PaymentMode(r.PaymentMode),
		BankID:       r.BankID,
		CreditorID:   r.CreditorID,
		ProjectID:    r.ProjectID,
		Date:         r.Date.TimeOrZero(),
		Remarks:      r.Remarks,
		MachineRent:  r.MachineRent,
		RentDeducted: r.RentDeducted,
	}
}

// ExpenseRequest books a project expense.
type ExpenseRequest struct {
	ProjectID     id.ID       `json:"projectId" binding:"required"`
	Name          string      `json:"name" binding:"required,max=200"`
	Amount        types.Money `json:"amount"`
	VoucherNumber string      `json:"voucherNumber" binding:"max=50"`
	Category      string      `json:"category" binding:"omitempty,max=30"`
	PaymentMode   string      `json:"paymentMode" binding:"omitempty,max=30"`
	BankID        *id.ID      `json:"bankId"`
	CreditorID    *id.ID      `json:"creditorId"`
	MachineID     *id.ID      `json:"machineId"`
	Date          *Date       `json:"date"`
	Remarks       string      `json:"remarks" binding:"max=1000"`
}

// ToInput maps the request to the ledger input.
func (r ExpenseRequest) ToInput() ledger.ExpenseInput {
	return ledger.ExpenseInput{
		ProjectID:     r.ProjectID,
		Name:          r.Name,
		Amount:        r.Amount,
		VoucherNumber: r.VoucherNumber,
		Category:      r.Category,
		Mode:          ledger.PaymentMode(r.PaymentMode),
		BankID:        r.BankID,
		CreditorID:    r.CreditorID,
		MachineID:     r.MachineID,
		Date:          r.Date.TimeOrZero(),
		Remarks:       r.Remarks,
	}
}

// TransactionRequest records a manual ledger entry.
type TransactionRequest struct {
	Type        string      `json:"type" binding:"omitempty,oneof=credit debit"`
	Amount      types.Money `json:"amount"`
	Category    string      `json:"category" binding:"omitempty,max=30"`
	PaymentMode string      `json:"paymentMode" binding:"omitempty,max=30"`
	BankID      *id.ID      `json:"bankId"`
	CreditorID  *id.ID      `json:"creditorId"`
	ProjectID   *id.ID      `json:"projectId"`
	Date        *Date       `json:"date"`
	Description string      `json:"description" binding:"max=1000"`
}

// ToInput maps the request to the ledger input.
func (r TransactionRequest) ToInput() ledger.TransactionInput {
	return ledger.TransactionInput{
		Type:        accounts.EntryType(r.Type),
		Amount:      r.Amount,
		Category:    r.Category,
		Mode:        ledger.PaymentMode(r.PaymentMode),
		BankID:      r.BankID,
		CreditorID:  r.CreditorID,
		ProjectID:   r.ProjectID,
		Date:        r.Date.TimeOrZero(),
		Description: r.Description,
	}
}

// CapitalRequest records money put into the company.
type CapitalRequest struct {
	Amount      types.Money `json:"amount"`
	BankID      *id.ID      `json:"bankId"`
	ProjectID   *id.ID      `json:"projectId"`
	PaymentMode string      `json:"paymentMode" binding:"omitempty,max=30"`
	Date        *Date       `json:"date"`
	Description string      `json:"description" binding:"max=1000"`
}

// AllocateFundsRequest credits a site manager's wallet.
type AllocateFundsRequest struct {
	ManagerID   id.ID       `json:"managerId" binding:"required"`
	Amount      types.Money `json:"amount"`
	BankID      *id.ID      `json:"bankId"`
	PaymentMode string      `json:"paymentMode" binding:"omitempty,max=30"`
	Description string      `json:"description" binding:"max=1000"`
}

// BankTransferRequest moves money between two company accounts.
type BankTransferRequest struct {
	SourceBankID      id.ID       `json:"sourceBankId" binding:"required"`
	DestinationBankID id.ID       `json:"destinationBankId" binding:"required"`
	Amount            types.Money `json:"amount"`
	Date              *Date       `json:"date"`
	Description       string      `json:"description" binding:"max=1000"`
}

// CreditorPaymentRequest repays a creditor from a bank, cash or another creditor.
type CreditorPaymentRequest struct {
	CreditorID       id.ID       `json:"creditorId" binding:"required"`
	SourceCreditorID *id.ID      `json:"sourceCreditorId"`
	Amount           types.Money `json:"amount"`
	PaymentMode      string      `json:"paymentMode" binding:"omitempty,max=30"`
	BankID           *id.ID      `json:"bankId"`
	Date             *Date       `json:"date"`
	Remarks          string      `json:"remarks" binding:"max=1000"`
}

// ToInput maps the request to the ledger input.
func (r CreditorPaymentRequest) ToInput() ledger.CreditorPaymentInput {
	return ledger.CreditorPaymentInput{
		CreditorID:       r.CreditorID,
		SourceCreditorID: r.SourceCreditorID,
		Amount:           r.Amount,
		Mode:             ledger.PaymentMode(r.PaymentMode),
		BankID:           r.BankID,
		Date:             r.Date.TimeOrZero(),
		Remarks:          r.Remarks,
	}
}

// LedgerQuery filters payment, expense and transaction lists.
type LedgerQuery struct {
	ListQuery
	ProjectID string `form:"projectId"`
	BankID    string `form:"bankId"`
	Category  string `form:"category"`
}

// Filter adds the ledger columns to the common list filter.
func (q LedgerQuery) Filter() (domain.ListFilter, error) {
	f, err := q.ListQuery.Filter()
	if err != nil {
		return f, err
	}
	for column, value := range map[string]string{"project_id": q.ProjectID, "bank_id": q.BankID} {
		v, err := OptionalID(column, value)
		if err != nil {
			return f, err
		}
		if v != nil {
			f = f.Eq(column, *v)
		}
	}
	if q.Category != "" {
		f = f.Eq("category", q.Category)
	}
	return f, nil
}
