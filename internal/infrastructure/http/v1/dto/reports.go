package dto

import (
	"sitebook/internal/core/id"
	"sitebook/internal/domain/reports"
)

// AccountsQuery filters the accounts summary.
type AccountsQuery struct {
	From      string `form:"from"`
	To        string `form:"to"`
	ManagerID string `form:"managerId"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// ToFilter maps the query to the report filter.
func (q AccountsQuery) ToFilter() (reports.AccountsFilter, error) {
	from, to, err := DateRange(q.From, q.To)
	if err != nil {
		return reports.AccountsFilter{}, err
	}
	manager, err := OptionalID("managerId", q.ManagerID)
	if err != nil {
		return reports.AccountsFilter{}, err
	}
	return reports.AccountsFilter{From: from, To: to, ManagerID: manager, Limit: q.Limit}, nil
}

// StockBalanceQuery filters the stock balance report.
type StockBalanceQuery struct {
	ProjectIDs  []string `form:"projectId"`
	Material    string   `form:"material"`
	ExcludeZero bool     `form:"excludeZero"`
}

// ToFilter maps the query to the report filter, ignoring malformed ids.
func (q StockBalanceQuery) ToFilter() reports.StockBalanceFilter {
	return reports.StockBalanceFilter{
		ProjectIDs:  id.ParseAll(q.ProjectIDs),
		Material:    q.Material,
		ExcludeZero: q.ExcludeZero,
	}
}
