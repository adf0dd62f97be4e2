package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/infrastructure/storage/memory"
)

type fixture struct {
	ctx       context.Context
	txm       *memory.TxManager
	banks     *memory.Store[*BankAccount]
	bankLog   *memory.Store[*BankEntry]
	creditors *memory.Store[*Creditor]
	credLog   *memory.Store[*CreditorEntry]
	repos     Repositories
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:       context.Background(),
		txm:       memory.NewTxManager(),
		banks:     memory.NewStore[*BankAccount]("bank_accounts"),
		bankLog:   memory.NewStore[*BankEntry]("bank_entries"),
		creditors: memory.NewStore[*Creditor]("creditors"),
		credLog:   memory.NewStore[*CreditorEntry]("creditor_entries"),
	}
	f.txm.Track(f.banks, f.bankLog, f.creditors, f.credLog)
	f.repos = Repositories{Banks: f.banks, BankEntries: f.bankLog, Creditors: f.creditors, CreditorEntries: f.credLog}
	return f
}

func (f *fixture) bank(t *testing.T, opening string) *BankAccount {
	t.Helper()
	b := NewBankAccount("Site Co", "State Bank", "Main", id.New().String()[:8], "sbin0001", types.MustMoney(opening))
	require.NoError(t, f.banks.Create(f.ctx, b))
	return b
}

func (f *fixture) creditor(t *testing.T, name string) *Creditor {
	t.Helper()
	c := NewCreditor(name, "9000000000", "")
	require.NoError(t, f.creditors.Create(f.ctx, c))
	return c
}

func TestBook_PostBank(t *testing.T) {
	f := newFixture(t)
	book := NewBook(f.repos, f.txm)
	b := f.bank(t, "5000")
	ref := id.New()

	entry, err := book.PostBank(f.ctx, b.ID, Posting{Type: Debit, Amount: types.MustMoney("1200"), Description: "Vendor payment", RefID: ref, RefModel: RefVendorPayment})
	require.NoError(t, err)
	assert.Equal(t, b.ID, entry.BankID)
	require.NotNil(t, entry.RefID)
	assert.Equal(t, ref, *entry.RefID)

	_, err = book.PostBank(f.ctx, b.ID, Posting{Type: Credit, Amount: types.MustMoney("200")})
	require.NoError(t, err)

	got, _ := f.banks.GetByID(f.ctx, b.ID)
	assert.True(t, got.CurrentBalance.Equal(types.MustMoney("4000")), "balance %s", got.CurrentBalance)
	assert.Equal(t, 2, f.bankLog.Len())
}

func TestBook_PostBank_Errors(t *testing.T) {
	f := newFixture(t)
	book := NewBook(f.repos, f.txm)
	b := f.bank(t, "100")

	_, err := book.PostBank(f.ctx, id.New(), Posting{Type: Debit, Amount: types.MustMoney("1")})
	assert.True(t, apperror.IsNotFound(err))

	_, err = book.PostBank(f.ctx, b.ID, Posting{Type: Debit, Amount: types.Zero()})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = book.PostBank(f.ctx, b.ID, Posting{Type: "sideways", Amount: types.MustMoney("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, 0, f.bankLog.Len())
}

func TestBook_Overdraft(t *testing.T) {
	f := newFixture(t)
	b := f.bank(t, "100")

	strict := NewBook(f.repos, f.txm, WithOverdraft(false))
	_, err := strict.PostBank(f.ctx, b.ID, Posting{Type: Debit, Amount: types.MustMoney("150")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBalance))

	lenient := NewBook(f.repos, f.txm)
	_, err = lenient.PostBank(f.ctx, b.ID, Posting{Type: Debit, Amount: types.MustMoney("150")})
	require.NoError(t, err)
	got, _ := f.banks.GetByID(f.ctx, b.ID)
	assert.True(t, got.CurrentBalance.Equal(types.MustMoney("-50")))
}

func TestBook_CreditorSignConvention(t *testing.T) {
	f := newFixture(t)
	book := NewBook(f.repos, f.txm)
	c := f.creditor(t, "Sharma Traders")

	_, err := book.PostCreditor(f.ctx, c.ID, Posting{Type: Credit, Amount: types.MustMoney("10000"), Description: "borrowed"})
	require.NoError(t, err)
	_, err = book.PostCreditor(f.ctx, c.ID, Posting{Type: Debit, Amount: types.MustMoney("2500"), Description: "repaid"})
	require.NoError(t, err)

	got, _ := f.creditors.GetByID(f.ctx, c.ID)
	assert.True(t, got.CurrentBalance.Equal(types.MustMoney("7500")))
}

func TestBook_ReverseCreditor(t *testing.T) {
	f := newFixture(t)
	book := NewBook(f.repos, f.txm)
	a := f.creditor(t, "A")
	b := f.creditor(t, "B")
	ref := id.New()
	other := id.New()

	_, err := book.PostCreditor(f.ctx, a.ID, Posting{Type: Credit, Amount: types.MustMoney("300"), RefID: ref, RefModel: RefCreditorPayment})
	require.NoError(t, err)
	_, err = book.PostCreditor(f.ctx, b.ID, Posting{Type: Debit, Amount: types.MustMoney("300"), RefID: ref, RefModel: RefCreditorPayment})
	require.NoError(t, err)
	_, err = book.PostCreditor(f.ctx, b.ID, Posting{Type: Credit, Amount: types.MustMoney("50"), RefID: other, RefModel: RefExpense})
	require.NoError(t, err)

	n, err := book.ReverseCreditor(f.ctx, ref, RefCreditorPayment)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	gotA, _ := f.creditors.GetByID(f.ctx, a.ID)
	gotB, _ := f.creditors.GetByID(f.ctx, b.ID)
	assert.True(t, gotA.CurrentBalance.IsZero())
	assert.True(t, gotB.CurrentBalance.Equal(types.MustMoney("50")))
	assert.Equal(t, 1, f.credLog.Len())

	n, err = book.ReverseCreditor(f.ctx, ref, RefCreditorPayment)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBook_RollbackOnLaterFailure(t *testing.T) {
	f := newFixture(t)
	book := NewBook(f.repos, f.txm)
	b := f.bank(t, "1000")

	err := f.txm.RunInTransaction(f.ctx, func(ctx context.Context) error {
		if _, err := book.PostBank(ctx, b.ID, Posting{Type: Debit, Amount: types.MustMoney("400")}); err != nil {
			return err
		}
		_, err := book.PostCreditor(ctx, id.New(), Posting{Type: Debit, Amount: types.MustMoney("400")})
		return err
	})
	require.Error(t, err)

	got, _ := f.banks.GetByID(f.ctx, b.ID)
	assert.True(t, got.CurrentBalance.Equal(types.MustMoney("1000")))
	assert.Zero(t, f.bankLog.Len())
}

func TestReconciler(t *testing.T) {
	f := newFixture(t)
	book := NewBook(f.repos, f.txm)
	b := f.bank(t, "1000")
	c := f.creditor(t, "Lender")

	_, err := book.PostBank(f.ctx, b.ID, Posting{Type: Credit, Amount: types.MustMoney("500")})
	require.NoError(t, err)
	_, err = book.PostCreditor(f.ctx, c.ID, Posting{Type: Credit, Amount: types.MustMoney("700")})
	require.NoError(t, err)

	rec := NewReconciler(f.repos, f.txm)
	drifts, err := rec.Run(f.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	corrupt, _ := f.banks.GetByID(f.ctx, b.ID)
	corrupt.CurrentBalance = types.MustMoney("9999")
	require.NoError(t, f.banks.Update(f.ctx, corrupt))

	drifts, err = rec.Run(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, "bank", drifts[0].Kind)
	assert.True(t, drifts[0].Computed.Equal(types.MustMoney("1500")))
	assert.True(t, drifts[0].Difference().Equal(types.MustMoney("8499")))

	fixed, _ := f.banks.GetByID(f.ctx, b.ID)
	assert.True(t, fixed.CurrentBalance.Equal(types.MustMoney("1500")))
}

func TestBankService_Statement(t *testing.T) {
	f := newFixture(t)
	book := NewBook(f.repos, f.txm)
	svc := NewBankService(f.repos, f.txm)
	b := f.bank(t, "0")

	for _, p := range []Posting{
		{Type: Credit, Amount: types.MustMoney("1000")},
		{Type: Debit, Amount: types.MustMoney("250")},
		{Type: Debit, Amount: types.MustMoney("50")},
	} {
		_, err := book.PostBank(f.ctx, b.ID, p)
		require.NoError(t, err)
	}

	st, err := svc.Statement(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, st.Entries, 3)
	assert.True(t, st.Summary.TotalCredit.Equal(types.MustMoney("1000")))
	assert.True(t, st.Summary.TotalDebit.Equal(types.MustMoney("300")))
	assert.True(t, st.Summary.Net.Equal(types.MustMoney("700")))

	_, err = svc.Statement(f.ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}
