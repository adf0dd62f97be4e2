// Package report_repo provides the PostgreSQL implementation of the report queries.
package report_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"sitebook/internal/domain/reports"
	"sitebook/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm *postgres.TxManager
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

// feedSource describes how one ledger table maps onto reports.AccountEntry.
type feedSource struct {
	table   string
	dateCol string
	columns []string
}

var feedSources = []feedSource{
	{
		table:   "transactions",
		dateCol: "txn_date",
		columns: []string{
			"id", "'Transaction' AS ref_model", "txn_date AS date", "description", "amount", "type",
			"category", "payment_mode", "'transaction' AS source", "created_by AS added_by",
		},
	},
	{
		table:   "expenses",
		dateCol: "expense_date",
		columns: []string{
			"id", "'Expense' AS ref_model", "expense_date AS date", "name AS description", "amount", "'debit' AS type",
			"category", "payment_mode", "'expense' AS source", "added_by",
		},
	},
	{
		table:   "vendor_payments",
		dateCol: "payment_date",
		columns: []string{
			"id", "'VendorPayment' AS ref_model", "payment_date AS date", "remarks AS description", "amount",
			"'debit' AS type", "'vendor_payment' AS category", "payment_mode", "'payment' AS source", "recorded_by AS added_by",
		},
	},
	{
		table:   "contractor_payments",
		dateCol: "payment_date",
		columns: []string{
			"id", "'ContractorPayment' AS ref_model", "payment_date AS date", "'Payment to ' || contractor_name AS description",
			"amount", "'debit' AS type", "'contractor_payment' AS category", "payment_mode", "'payment' AS source",
			"paid_by AS added_by",
		},
	},
	{
		table:   "labour_payments",
		dateCol: "created_at",
		columns: []string{
			"id", "'LabourPayment' AS ref_model", "created_at AS date", "remarks AS description", "final_amount AS amount",
			"'debit' AS type", "'labour_payment' AS category", "payment_mode", "'payment' AS source", "user_id AS added_by",
		},
	},
}

// accountFeedSQL builds one UNION ALL query over every ledger table, each
// leg capped at filter.Limit rows.
func accountFeedSQL(filter reports.AccountsFilter) (string, []any, error) {
	var (
		legs []string
		args []any
	)
	for _, src := range feedSources {
		q := squirrel.Select(src.columns...).From(src.table)
		if filter.From != nil {
			q = q.Where(squirrel.GtOrEq{src.dateCol: *filter.From})
		}
		if filter.To != nil {
			q = q.Where(squirrel.LtOrEq{src.dateCol: *filter.To})
		}
		q = q.OrderBy(src.dateCol + " DESC")
		if filter.Limit > 0 {
			q = q.Limit(uint64(filter.Limit))
		}

		sql, legArgs, err := q.ToSql()
		if err != nil {
			return "", nil, fmt.Errorf("build %s feed: %w", src.table, err)
		}
		legs = append(legs, "("+sql+")")
		args = append(args, legArgs...)
	}

	sql, err := squirrel.Dollar.ReplacePlaceholders(strings.Join(legs, " UNION ALL ") + " ORDER BY date DESC")
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}

// AccountEntries returns the normalised money feed of every ledger table.
func (r *ReportRepo) AccountEntries(ctx context.Context, filter reports.AccountsFilter) ([]reports.AccountEntry, error) {
	sql, args, err := accountFeedSQL(filter)
	if err != nil {
		return nil, err
	}

	var items []reports.AccountEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("account entries: %w", err)
	}
	return items, nil
}

// BankBalances returns every bank account with its running balance.
func (r *ReportRepo) BankBalances(ctx context.Context) ([]reports.BankBalance, error) {
	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "bank_name", "holder_name AS account_name", "current_balance").
		From("bank_accounts").
		OrderBy("bank_name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bank balances: %w", err)
	}

	var items []reports.BankBalance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("bank balances: %w", err)
	}
	return items, nil
}

func stockBalanceQuery(filter reports.StockBalanceFilter) squirrel.SelectBuilder {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"s.project_id",
			"p.name AS project_name",
			"s.material_name",
			"MIN(s.unit) AS unit",
			"SUM(s.quantity) AS quantity",
			"SUM(s.consumed) AS consumed",
			"SUM(ROUND(s.quantity * s.unit_price, 2)) AS total_value",
			"COUNT(*) AS lots",
		).
		From("stocks s").
		Join("projects p ON p.id = s.project_id").
		GroupBy("s.project_id", "p.name", "s.material_name").
		OrderBy("p.name", "s.material_name")

	if len(filter.ProjectIDs) > 0 {
		q = q.Where(squirrel.Eq{"s.project_id": filter.ProjectIDs})
	}
	if filter.Material != "" {
		q = q.Where(squirrel.ILike{"s.material_name": "%" + filter.Material + "%"})
	}
	if filter.ExcludeZero {
		q = q.Having("SUM(s.quantity) <> 0")
	}
	return q
}

// StockBalance sums the remaining quantity of every lot per project and material.
func (r *ReportRepo) StockBalance(ctx context.Context, filter reports.StockBalanceFilter) ([]reports.StockBalanceItem, error) {
	sql, args, err := stockBalanceQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock balance: %w", err)
	}

	var items []reports.StockBalanceItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("stock balance report: %w", err)
	}
	return items, nil
}
