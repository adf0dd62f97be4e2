// Package accounts provides bank accounts and creditors together with their
// append-only entry tables. Balances change only through Book.
package accounts

import (
	"context"
	"strings"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

// EntryType is the direction of a ledger entry.
type EntryType string

const (
	Credit EntryType = "credit"
	Debit  EntryType = "debit"
)

// Valid reports whether t is credit or debit.
func (t EntryType) Valid() bool {
	return t == Credit || t == Debit
}

// Opposite returns the reversing direction.
func (t EntryType) Opposite() EntryType {
	if t == Credit {
		return Debit
	}
	return Credit
}

// Signed returns amount for credits and -amount for debits.
func (t EntryType) Signed(amount types.Money) types.Money {
	if t == Debit {
		return amount.Neg()
	}
	return amount
}

// Names of the records an entry may point back to.
const (
	RefExpense           = "Expense"
	RefVendorPayment     = "VendorPayment"
	RefContractorPayment = "ContractorPayment"
	RefCreditorPayment   = "CreditorPayment"
	RefLabourPayment     = "LabourPayment"
	RefTransaction       = "Transaction"
	RefStock             = "Stock"
)

// BankAccount is a company bank account. CurrentBalance always equals
// OpeningBalance plus the signed sum of its entries.
type BankAccount struct {
	entity.Base

	HolderName     string      `db:"holder_name" json:"holderName"`
	BankName       string      `db:"bank_name" json:"bankName"`
	Branch         string      `db:"branch" json:"branch"`
	AccountNumber  string      `db:"account_number" json:"accountNumber"`
	IFSCCode       string      `db:"ifsc_code" json:"ifscCode"`
	OpeningBalance types.Money `db:"opening_balance" json:"openingBalance"`
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
	AddedBy        *id.ID      `db:"added_by" json:"addedBy,omitempty"`
}

// NewBankAccount creates an account whose current balance starts at opening.
func NewBankAccount(holder, bank, branch, number, ifsc string, opening types.Money) *BankAccount {
	return &BankAccount{
		Base:           entity.NewBase(),
		HolderName:     strings.TrimSpace(holder),
		BankName:       strings.TrimSpace(bank),
		Branch:         strings.TrimSpace(branch),
		AccountNumber:  strings.TrimSpace(number),
		IFSCCode:       strings.ToUpper(strings.TrimSpace(ifsc)),
		OpeningBalance: opening,
		CurrentBalance: opening,
	}
}

// Validate implements entity.Validatable.
func (b *BankAccount) Validate(_ context.Context) error {
	required := []struct{ field, value string }{
		{"holderName", b.HolderName},
		{"bankName", b.BankName},
		{"branch", b.Branch},
		{"accountNumber", b.AccountNumber},
		{"ifscCode", b.IFSCCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperror.NewValidation(r.field+" is required").WithDetail("field", r.field)
		}
	}
	return nil
}

// Label is the short display name used in entry descriptions.
func (b *BankAccount) Label() string {
	return b.BankName + " (" + b.AccountNumber + ")"
}

// BankEntry is one line of a bank account's log.
type BankEntry struct {
	entity.Base

	BankID      id.ID       `db:"bank_id" json:"bankId"`
	Type        EntryType   `db:"type" json:"type"`
	Amount      types.Money `db:"amount" json:"amount"`
	EntryDate   time.Time   `db:"entry_date" json:"date"`
	Description string      `db:"description" json:"description"`
	RefID       *id.ID      `db:"ref_id" json:"refId,omitempty"`
	RefModel    string      `db:"ref_model" json:"refModel,omitempty"`
}

// Creditor lends money or goods to the company. CurrentBalance is what we owe
// them: credit entries raise it, debit entries lower it.
type Creditor struct {
	entity.Base

	Name           string      `db:"name" json:"name"`
	Mobile         string      `db:"mobile" json:"mobile"`
	Address        string      `db:"address" json:"address,omitempty"`
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
	AddedBy        *id.ID      `db:"added_by" json:"addedBy,omitempty"`
}

// NewCreditor creates a creditor with nothing owed.
func NewCreditor(name, mobile, address string) *Creditor {
	return &Creditor{
		Base:           entity.NewBase(),
		Name:           strings.TrimSpace(name),
		Mobile:         strings.TrimSpace(mobile),
		Address:        strings.TrimSpace(address),
		CurrentBalance: types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (c *Creditor) Validate(_ context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("creditor name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(c.Mobile) == "" {
		return apperror.NewValidation("mobile number is required").WithDetail("field", "mobile")
	}
	return nil
}

// CreditorEntry is one line of a creditor's log.
type CreditorEntry struct {
	entity.Base

	CreditorID  id.ID       `db:"creditor_id" json:"creditorId"`
	Type        EntryType   `db:"type" json:"type"`
	Amount      types.Money `db:"amount" json:"amount"`
	EntryDate   time.Time   `db:"entry_date" json:"date"`
	Description string      `db:"description" json:"description"`
	RefID       *id.ID      `db:"ref_id" json:"refId,omitempty"`
	RefModel    string      `db:"ref_model" json:"refModel,omitempty"`
}
