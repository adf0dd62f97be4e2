package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

type stubRepo struct {
	entries     []AccountEntry
	banks       []BankBalance
	stock       []StockBalanceItem
	stockFilter *StockBalanceFilter
}

func (r *stubRepo) AccountEntries(_ context.Context, _ AccountsFilter) ([]AccountEntry, error) {
	return append([]AccountEntry(nil), r.entries...), nil
}

func (r *stubRepo) BankBalances(_ context.Context) ([]BankBalance, error) {
	return r.banks, nil
}

func (r *stubRepo) StockBalance(_ context.Context, filter StockBalanceFilter) ([]StockBalanceItem, error) {
	r.stockFilter = &filter
	return r.stock, nil
}

func m(s string) types.Money { return types.MustMoney(s) }

func TestGetAccounts_Totals(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	manager := id.New()
	other := id.New()
	repo := &stubRepo{
		entries: []AccountEntry{
			{ID: id.New(), RefModel: "Transaction", Date: day, Amount: m("10000"), Type: "credit", Category: "capital", PaymentMode: "bank"},
			{ID: id.New(), RefModel: "Expense", Date: day.AddDate(0, 0, 2), Amount: m("1500"), Type: "debit", Category: "expense", PaymentMode: "cash", AddedBy: &manager},
			{ID: id.New(), RefModel: "Expense", Date: day.AddDate(0, 0, 3), Amount: m("700"), Type: "debit", Category: "expense", PaymentMode: "cash", AddedBy: &other},
			{ID: id.New(), RefModel: "VendorPayment", Date: day.AddDate(0, 0, 1), Amount: m("2000"), Type: "debit", Category: "vendor_payment", PaymentMode: "UPI"},
			{ID: id.New(), RefModel: "CreditorPayment", Date: day.AddDate(0, 0, 4), Amount: m("300"), Type: "debit", Category: "creditor_payment", PaymentMode: "creditor"},
		},
		banks: []BankBalance{
			{BankID: id.New(), BankName: "A", Balance: m("3000")},
			{BankID: id.New(), BankName: "B", Balance: m("4500.50")},
		},
	}
	svc := NewService(repo)

	got, err := svc.GetAccounts(context.Background(), AccountsFilter{})
	require.NoError(t, err)
	assert.True(t, got.Capital.Equal(m("10000")))
	assert.True(t, got.TotalExpenses.Equal(m("4500")), got.TotalExpenses.String())
	assert.True(t, got.TotalBankTransactions.Equal(m("12000")), got.TotalBankTransactions.String())
	assert.True(t, got.TotalCashTransactions.Equal(m("2200")))
	assert.True(t, got.TotalBankBalance.Equal(m("7500.50")))
	require.Len(t, got.Transactions, 5)
	assert.Equal(t, "CreditorPayment", got.Transactions[0].RefModel, "newest first")
	assert.Equal(t, "Transaction", got.Transactions[4].RefModel)

	mine, err := svc.GetAccounts(context.Background(), AccountsFilter{ManagerID: &manager})
	require.NoError(t, err)
	assert.Len(t, mine.Transactions, 4)
	assert.True(t, mine.TotalCashTransactions.Equal(m("1500")))
}

func TestGetAccounts_BadRange(t *testing.T) {
	from := time.Now()
	to := from.Add(-time.Hour)
	_, err := NewService(&stubRepo{}).GetAccounts(context.Background(), AccountsFilter{From: &from, To: &to})
	assert.Error(t, err)
}

func TestGetStockBalance_Scope(t *testing.T) {
	site, foreign := id.New(), id.New()
	repo := &stubRepo{stock: []StockBalanceItem{
		{ProjectID: site, MaterialName: "Cement", Quantity: m("40"), TotalValue: m("400")},
		{ProjectID: site, MaterialName: "Sand", Quantity: m("10"), TotalValue: m("150")},
	}}
	svc := NewService(repo)
	mgr := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: id.New().String(), Role: appctx.RoleSiteManager, AssignedSites: []string{site.String()},
	})

	got, err := svc.GetStockBalance(mgr, StockBalanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, []id.ID{site}, repo.stockFilter.ProjectIDs)
	assert.Equal(t, 2, got.TotalItems)
	assert.True(t, got.TotalValue.Equal(m("550")))

	repo.stockFilter = nil
	empty, err := svc.GetStockBalance(mgr, StockBalanceFilter{ProjectIDs: []id.ID{foreign}})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Nil(t, repo.stockFilter, "no query for a foreign project")
}
