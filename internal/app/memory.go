package app

import (
	"sitebook/internal/core/numerator"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/inventory"
	"sitebook/internal/domain/labour"
	"sitebook/internal/domain/ledger"
	"sitebook/internal/domain/notification"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/rental"
	"sitebook/internal/domain/transfer"
	"sitebook/internal/domain/user"
	"sitebook/internal/infrastructure/storage/memory"
)

// NewMemoryRepos returns repositories backed by the in-memory store, all
// tracked by one transaction manager. Reports are not available.
func NewMemoryRepos() (Repos, *memory.TxManager) {
	users := memory.NewStore[*user.User]("users")
	projects := memory.NewStore[*project.Project]("projects")
	vendors := memory.NewStore[*party.Vendor]("vendors")
	contractors := memory.NewStore[*party.Contractor]("contractors")
	banks := memory.NewStore[*accounts.BankAccount]("bank_accounts")
	bankEntries := memory.NewStore[*accounts.BankEntry]("bank_entries")
	creditors := memory.NewStore[*accounts.Creditor]("creditors")
	creditorEntries := memory.NewStore[*accounts.CreditorEntry]("creditor_entries")
	transactions := memory.NewStore[*ledger.Transaction]("transactions")
	expenses := memory.NewStore[*ledger.Expense]("expenses")
	vendorPayments := memory.NewStore[*ledger.VendorPayment]("vendor_payments")
	contractorPayments := memory.NewStore[*ledger.ContractorPayment]("contractor_payments")
	creditorPayments := memory.NewStore[*ledger.CreditorPayment]("creditor_payments")
	stocks := memory.NewStore[*inventory.Stock]("stocks")
	stockOuts := memory.NewStore[*inventory.StockOut]("stock_outs")
	consumables := memory.NewStore[*inventory.Consumable]("consumable_goods")
	labEquipment := memory.NewStore[*inventory.Asset]("lab_equipment")
	equipment := memory.NewStore[*inventory.Asset]("equipment")
	labours := memory.NewStore[*labour.Labour]("labours")
	labourPayments := memory.NewStore[*labour.Payment]("labour_payments")
	machines := memory.NewStore[*rental.Machine]("machines")
	transfers := memory.NewStore[*transfer.Transfer]("transfers")
	notifications := memory.NewStore[*notification.Notification]("notifications")

	txm := memory.NewTxManager()
	txm.Track(users, projects, vendors, contractors, banks, bankEntries, creditors, creditorEntries,
		transactions, expenses, vendorPayments, contractorPayments, creditorPayments,
		stocks, stockOuts, consumables, labEquipment, equipment, labours, labourPayments,
		machines, transfers, notifications)

	return Repos{
		Users:       users,
		Projects:    projects,
		Vendors:     vendors,
		Contractors: contractors,
		Accounts: accounts.Repositories{
			Banks:           banks,
			BankEntries:     bankEntries,
			Creditors:       creditors,
			CreditorEntries: creditorEntries,
		},
		Ledger: ledger.Repositories{
			Transactions:       transactions,
			Expenses:           expenses,
			VendorPayments:     vendorPayments,
			ContractorPayments: contractorPayments,
			CreditorPayments:   creditorPayments,
		},
		Stock: inventory.Repositories{
			Stocks:       stocks,
			StockOuts:    stockOuts,
			Consumables:  consumables,
			LabEquipment: labEquipment,
			Equipment:    equipment,
		},
		Labour:         labours,
		LabourPayments: labourPayments,
		Machines:       machines,
		Transfers:      transfers,
		Notifications:  notifications,
		Vouchers:       numerator.NewMemoryGenerator(),
	}, txm
}
