// Package ledger applies every money movement of the company: vendor, contractor
// and creditor payments, project expenses, capital, manual transactions, wallet
// allocations and bank-to-bank transfers. Each operation runs in one transaction
// and moves the party balance, the bank/creditor logs and the ledger row together.
package ledger

import (
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/accounts"
)

// PaymentMode is how money left or entered the company.
type PaymentMode string

const (
	ModeCash         PaymentMode = "cash"
	ModeBank         PaymentMode = "bank"
	ModeBankTransfer PaymentMode = "bank_transfer"
	ModeOnline       PaymentMode = "online"
	ModeUPI          PaymentMode = "upi"
	ModeCheck        PaymentMode = "check"
	ModeCredit       PaymentMode = "credit"
	ModeCreditor     PaymentMode = "creditor"
	ModeOther        PaymentMode = "other"
)

func (m PaymentMode) orDefault(def PaymentMode) PaymentMode {
	if m == "" {
		return def
	}
	return m
}

// ParseMode validates s as a payment mode, using def when s is empty.
func ParseMode(s string, def PaymentMode) (PaymentMode, error) {
	m := PaymentMode(s).orDefault(def)
	return m, m.validate()
}

func (m PaymentMode) validate() error {
	switch m {
	case ModeCash, ModeBank, ModeBankTransfer, ModeOnline, ModeUPI, ModeCheck, ModeCredit, ModeCreditor, ModeOther:
		return nil
	}
	return apperror.NewValidation("invalid payment mode").WithDetail("paymentMode", string(m))
}

// Transaction categories.
const (
	CategoryCapital          = "capital"
	CategoryExpense          = "expense"
	CategoryIncome           = "income"
	CategoryOther            = "other"
	CategoryWalletAllocation = "wallet_allocation"
	CategoryBankTransfer     = "bank_transfer"
)

// Expense categories.
const (
	ExpenseMaterial      = "material"
	ExpenseLabour        = "labour"
	ExpenseEquipment     = "equipment"
	ExpenseOther         = "other"
	ExpenseMachineRental = "machine_rental"
	ExpenseMaintenance   = "maintenance"
)

func validExpenseCategory(c string) bool {
	switch c {
	case ExpenseMaterial, ExpenseLabour, ExpenseEquipment, ExpenseOther, ExpenseMachineRental, ExpenseMaintenance:
		return true
	}
	return false
}

// Transaction is a generic ledger row: capital, manual entries, wallet
// allocations and the two legs of a bank-to-bank transfer.
type Transaction struct {
	entity.Base

	Type          accounts.EntryType `db:"type" json:"type"`
	Amount        types.Money        `db:"amount" json:"amount"`
	Category      string             `db:"category" json:"category"`
	TxnDate       time.Time          `db:"txn_date" json:"date"`
	PaymentMode   PaymentMode        `db:"payment_mode" json:"paymentMode"`
	Description   string             `db:"description" json:"description"`
	BankID        *id.ID             `db:"bank_id" json:"bankId,omitempty"`
	CreditorID    *id.ID             `db:"creditor_id" json:"creditorId,omitempty"`
	ProjectID     *id.ID             `db:"project_id" json:"projectId,omitempty"`
	RelatedUserID *id.ID             `db:"related_user_id" json:"relatedUserId,omitempty"`
	TransferGroup *id.ID             `db:"transfer_group" json:"transferGroup,omitempty"`
	CreatedBy     *id.ID             `db:"created_by" json:"addedBy,omitempty"`
}

// Expense is money spent on a project.
type Expense struct {
	entity.Base

	ProjectID     id.ID       `db:"project_id" json:"projectId"`
	Name          string      `db:"name" json:"name"`
	Amount        types.Money `db:"amount" json:"amount"`
	VoucherNumber string      `db:"voucher_number" json:"voucherNumber,omitempty"`
	Category      string      `db:"category" json:"category"`
	PaymentMode   PaymentMode `db:"payment_mode" json:"paymentMode"`
	BankID        *id.ID      `db:"bank_id" json:"bankId,omitempty"`
	CreditorID    *id.ID      `db:"creditor_id" json:"creditorId,omitempty"`
	MachineID     *id.ID      `db:"machine_id" json:"machineId,omitempty"`
	WalletUserID  *id.ID      `db:"wallet_user_id" json:"walletUserId,omitempty"`
	ExpenseDate   time.Time   `db:"expense_date" json:"date"`
	Remarks       string      `db:"remarks" json:"remarks,omitempty"`
	AddedBy       *id.ID      `db:"added_by" json:"addedBy,omitempty"`
}

// VendorPayment is a payment to a vendor.
type VendorPayment struct {
	entity.Base

	VendorID     id.ID       `db:"vendor_id" json:"vendorId"`
	ProjectID    *id.ID      `db:"project_id" json:"projectId,omitempty"`
	Amount       types.Money `db:"amount" json:"amount"`
	Advance      types.Money `db:"advance" json:"advance"`
	Deduction    types.Money `db:"deduction" json:"deduction"`
	PaymentMode  PaymentMode `db:"payment_mode" json:"paymentMode"`
	BankID       *id.ID      `db:"bank_id" json:"bankId,omitempty"`
	CreditorID   *id.ID      `db:"creditor_id" json:"creditorId,omitempty"`
	WalletUserID *id.ID      `db:"wallet_user_id" json:"walletUserId,omitempty"`
	PaymentDate  time.Time   `db:"payment_date" json:"date"`
	Remarks      string      `db:"remarks" json:"remarks,omitempty"`
	RecordedBy   *id.ID      `db:"recorded_by" json:"recordedBy,omitempty"`
}

// ContractorPayment is a payment to a contractor. MachineRent and RentDeducted
// record machine rent settled against the payment.
type ContractorPayment struct {
	entity.Base

	ContractorID   id.ID       `db:"contractor_id" json:"contractorId"`
	ContractorName string      `db:"contractor_name" json:"contractorName"`
	ProjectID      *id.ID      `db:"project_id" json:"projectId,omitempty"`
	Amount         types.Money `db:"amount" json:"amount"`
	Advance        types.Money `db:"advance" json:"advance"`
	Deduction      types.Money `db:"deduction" json:"deduction"`
	MachineRent    types.Money `db:"machine_rent" json:"machineRent"`
	RentDeducted   types.Money `db:"rent_deducted" json:"rentDeducted"`
	PaymentMode    PaymentMode `db:"payment_mode" json:"paymentMode"`
	BankID         *id.ID      `db:"bank_id" json:"bankId,omitempty"`
	CreditorID     *id.ID      `db:"creditor_id" json:"creditorId,omitempty"`
	WalletUserID   *id.ID      `db:"wallet_user_id" json:"walletUserId,omitempty"`
	PaymentDate    time.Time   `db:"payment_date" json:"date"`
	Remarks        string      `db:"remarks" json:"remark,omitempty"`
	PaidBy         *id.ID      `db:"paid_by" json:"paidBy,omitempty"`
}

// CreditorPayment repays a creditor, either from the company (cash or bank)
// or with money borrowed from another creditor (SourceCreditorID set).
type CreditorPayment struct {
	entity.Base

	CreditorID       id.ID       `db:"creditor_id" json:"creditorId"`
	SourceCreditorID *id.ID      `db:"source_creditor_id" json:"sourceCreditorId,omitempty"`
	Amount           types.Money `db:"amount" json:"amount"`
	PaymentMode      PaymentMode `db:"payment_mode" json:"paymentMode"`
	BankID           *id.ID      `db:"bank_id" json:"bankId,omitempty"`
	PaymentDate      time.Time   `db:"payment_date" json:"date"`
	Remarks          string      `db:"remarks" json:"remarks,omitempty"`
	RecordedBy       *id.ID      `db:"recorded_by" json:"recordedBy,omitempty"`
}
