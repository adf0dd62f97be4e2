package reports

import (
	"context"
)

// Repository reads the aggregates behind the reports.
type Repository interface {
	// AccountEntries returns the normalised feed of transactions, expenses and payments.
	AccountEntries(ctx context.Context, filter AccountsFilter) ([]AccountEntry, error)

	// BankBalances returns every bank account with its current balance.
	BankBalances(ctx context.Context) ([]BankBalance, error)

	// StockBalance sums the stock lots per project and material.
	StockBalance(ctx context.Context, filter StockBalanceFilter) ([]StockBalanceItem, error)
}
