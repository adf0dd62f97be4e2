package app

import (
	"sitebook/internal/domain/inventory"
	"sitebook/internal/domain/ledger"
	"sitebook/internal/infrastructure/numerator"
	"sitebook/internal/infrastructure/storage/postgres"
	"sitebook/internal/infrastructure/storage/postgres/report_repo"
	"sitebook/internal/infrastructure/storage/postgres/repo"
)

// NewPostgresRepos returns the PostgreSQL repositories behind txm.
func NewPostgresRepos(txm *postgres.TxManager) Repos {
	set := repo.NewSet(txm)
	return Repos{
		Users:       set.Users,
		Projects:    set.Projects,
		Vendors:     set.Vendors,
		Contractors: set.Contractors,
		Accounts:    set.AccountRepos(),
		Ledger: ledger.Repositories{
			Transactions:       set.Transactions,
			Expenses:           set.Expenses,
			VendorPayments:     set.VendorPayments,
			ContractorPayments: set.ContractorPayments,
			CreditorPayments:   set.CreditorPayments,
		},
		Stock: inventory.Repositories{
			Stocks:       set.Stocks,
			StockOuts:    set.StockOuts,
			Consumables:  set.Consumables,
			LabEquipment: set.LabEquipment,
			Equipment:    set.Equipment,
		},
		Labour:         set.Labour,
		LabourPayments: set.LabourPayments,
		Machines:       set.Machines,
		Transfers:      set.Transfers,
		Notifications:  set.Notifications,
		Reports:        report_repo.NewReportRepo(txm),
		Vouchers:       numerator.New(txm),
	}
}
