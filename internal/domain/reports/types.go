// Package reports builds the read-only money and stock summaries shown to admins.
package reports

import (
	"time"

	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

// --- Accounts ---

// AccountsFilter narrows the accounts feed.
type AccountsFilter struct {
	From *time.Time
	To   *time.Time

	// ManagerID keeps only the expenses added by this site manager.
	ManagerID *id.ID

	// Limit caps each source feed (transactions, expenses, payments).
	Limit int
}

// AccountEntry is one money movement normalised from any ledger table.
type AccountEntry struct {
	ID          id.ID       `db:"id" json:"id"`
	RefModel    string      `db:"ref_model" json:"refModel"`
	Date        time.Time   `db:"date" json:"date"`
	Description string      `db:"description" json:"description"`
	Amount      types.Money `db:"amount" json:"amount"`
	Type        string      `db:"type" json:"type"`
	Category    string      `db:"category" json:"category"`
	PaymentMode string      `db:"payment_mode" json:"paymentMode"`
	Source      string      `db:"source" json:"source"`
	AddedBy     *id.ID      `db:"added_by" json:"-"`
}

// BankBalance is the running balance of one bank account.
type BankBalance struct {
	BankID      id.ID       `db:"id" json:"bankId"`
	BankName    string      `db:"bank_name" json:"bankName"`
	AccountName string      `db:"account_name" json:"accountName"`
	Balance     types.Money `db:"current_balance" json:"balance"`
}

// Accounts is the admin accounts overview.
type Accounts struct {
	Capital               types.Money    `json:"capital"`
	TotalExpenses         types.Money    `json:"totalExpenses"`
	TotalBankTransactions types.Money    `json:"totalBankTransactions"`
	TotalCashTransactions types.Money    `json:"totalCashTransactions"`
	TotalBankBalance      types.Money    `json:"totalBankBalance"`
	Banks                 []BankBalance  `json:"banks"`
	Transactions          []AccountEntry `json:"transactions"`
}

// --- Stock ---

// StockBalanceFilter narrows the stock balance report.
type StockBalanceFilter struct {
	ProjectIDs  []id.ID
	Material    string
	ExcludeZero bool
}

// StockBalanceItem is the on-hand quantity of one material on one project.
type StockBalanceItem struct {
	ProjectID    id.ID          `db:"project_id" json:"projectId"`
	ProjectName  string         `db:"project_name" json:"projectName"`
	MaterialName string         `db:"material_name" json:"materialName"`
	Unit         string         `db:"unit" json:"unit"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	Consumed     types.Quantity `db:"consumed" json:"consumed"`
	TotalValue   types.Money    `db:"total_value" json:"totalValue"`
	Lots         int            `db:"lots" json:"lots"`
}

// StockBalance is the stock balance report.
type StockBalance struct {
	AsOf       time.Time          `json:"asOf"`
	Items      []StockBalanceItem `json:"items"`
	TotalItems int                `json:"totalItems"`
	TotalValue types.Money        `json:"totalValue"`
}
