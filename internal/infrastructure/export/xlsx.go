// Package export renders reports as .xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/reports"
)

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

// sheet writes rows into one worksheet, starting after a bold header.
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(f *excelize.File, name string, header ...any) (*sheet, error) {
	if f.SheetCount == 1 && f.GetSheetName(0) == "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return nil, err
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return nil, err
	}

	s := &sheet{f: f, name: name}
	if err := s.append(header...); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sheet) append(values ...any) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.f.SetSheetRow(s.name, cell, &values)
}

// BankStatement writes the entries of one bank account followed by their totals.
func BankStatement(w io.Writer, st *accounts.BankStatement) error {
	f := excelize.NewFile()
	defer f.Close()

	s, err := newSheet(f, "Statement", "Date", "Description", "Type", "Amount", "Reference")
	if err != nil {
		return fmt.Errorf("bank statement sheet: %w", err)
	}
	for _, e := range st.Entries {
		amount, _ := e.Amount.Float64()
		if err := s.append(e.EntryDate.Format(dateLayout), e.Description, string(e.Type), amount, e.RefModel); err != nil {
			return err
		}
	}

	s.row++
	totals := []struct {
		label string
		value float64
	}{
		{"Total credit", st.Summary.TotalCredit.InexactFloat64()},
		{"Total debit", st.Summary.TotalDebit.InexactFloat64()},
		{"Net", st.Summary.Net.InexactFloat64()},
		{"Current balance", st.Bank.CurrentBalance.InexactFloat64()},
	}
	for _, t := range totals {
		if err := s.append("", t.label, "", t.value); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// Accounts writes the accounts overview: a summary sheet, the bank balances
// and the movement feed.
func Accounts(w io.Writer, a *reports.Accounts) error {
	f := excelize.NewFile()
	defer f.Close()

	summary, err := newSheet(f, "Summary", "Metric", "Amount")
	if err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	for _, row := range [][]any{
		{"Capital", a.Capital.InexactFloat64()},
		{"Total expenses", a.TotalExpenses.InexactFloat64()},
		{"Bank transactions", a.TotalBankTransactions.InexactFloat64()},
		{"Cash transactions", a.TotalCashTransactions.InexactFloat64()},
		{"Total bank balance", a.TotalBankBalance.InexactFloat64()},
	} {
		if err := summary.append(row...); err != nil {
			return err
		}
	}

	banks, err := newSheet(f, "Banks", "Bank", "Account", "Balance")
	if err != nil {
		return fmt.Errorf("banks sheet: %w", err)
	}
	for _, b := range a.Banks {
		if err := banks.append(b.BankName, b.AccountName, b.Balance.InexactFloat64()); err != nil {
			return err
		}
	}

	feed, err := newSheet(f, "Transactions", "Date", "Description", "Type", "Category", "Mode", "Amount", "Source")
	if err != nil {
		return fmt.Errorf("transactions sheet: %w", err)
	}
	for _, e := range a.Transactions {
		if err := feed.append(e.Date.Format(dateLayout), e.Description, e.Type, e.Category, e.PaymentMode,
			e.Amount.InexactFloat64(), e.Source); err != nil {
			return err
		}
	}
	return f.Write(w)
}
