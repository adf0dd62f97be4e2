package repo

import (
	"reflect"

	"sitebook/internal/core/entity"
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
	"sitebook/internal/infrastructure/storage/postgres"
)

// Set holds one repository per table.
type Set struct {
	Users       *BaseRepo[*user.User]
	Projects    *BaseRepo[*project.Project]
	Vendors     *BaseRepo[*party.Vendor]
	Contractors *BaseRepo[*party.Contractor]

	Banks           *BaseRepo[*accounts.BankAccount]
	BankEntries     *BaseRepo[*accounts.BankEntry]
	Creditors       *BaseRepo[*accounts.Creditor]
	CreditorEntries *BaseRepo[*accounts.CreditorEntry]

	Transactions       *BaseRepo[*ledger.Transaction]
	Expenses           *BaseRepo[*ledger.Expense]
	VendorPayments     *BaseRepo[*ledger.VendorPayment]
	ContractorPayments *BaseRepo[*ledger.ContractorPayment]
	CreditorPayments   *BaseRepo[*ledger.CreditorPayment]

	Stocks       *BaseRepo[*inventory.Stock]
	StockOuts    *BaseRepo[*inventory.StockOut]
	Consumables  *BaseRepo[*inventory.Consumable]
	LabEquipment *BaseRepo[*inventory.Asset]
	Equipment    *BaseRepo[*inventory.Asset]

	Labour         *BaseRepo[*labour.Labour]
	LabourPayments *BaseRepo[*labour.Payment]

	Machines      *BaseRepo[*rental.Machine]
	Transfers     *BaseRepo[*transfer.Transfer]
	Notifications *BaseRepo[*notification.Notification]
}

// newRepo derives the column list from T's db tags.
func newRepo[T entity.Identifiable](txm *postgres.TxManager, table string, search ...string) *BaseRepo[T] {
	return NewBaseRepo[T](txm, table, postgres.ExtractDBColumns[T](), search, newOf[T]())
}

// newOf returns a constructor for the struct T points to.
func newOf[T any]() func() T {
	elem := reflect.TypeOf((*T)(nil)).Elem().Elem()
	return func() T { return reflect.New(elem).Interface().(T) }
}

// NewSet creates every repository on top of txm.
func NewSet(txm *postgres.TxManager) *Set {
	return &Set{
		Users:       newRepo[*user.User](txm, "users", "name", "email"),
		Projects:    newRepo[*project.Project](txm, "projects", "name", "location"),
		Vendors:     newRepo[*party.Vendor](txm, "vendors", "name", "contact"),
		Contractors: newRepo[*party.Contractor](txm, "contractors", "name", "mobile"),

		Banks:           newRepo[*accounts.BankAccount](txm, "bank_accounts", "bank_name", "holder_name", "account_number"),
		BankEntries:     newRepo[*accounts.BankEntry](txm, "bank_entries", "description"),
		Creditors:       newRepo[*accounts.Creditor](txm, "creditors", "name", "mobile"),
		CreditorEntries: newRepo[*accounts.CreditorEntry](txm, "creditor_entries", "description"),

		Transactions:       newRepo[*ledger.Transaction](txm, "transactions", "description", "category"),
		Expenses:           newRepo[*ledger.Expense](txm, "expenses", "name", "voucher_number", "remarks"),
		VendorPayments:     newRepo[*ledger.VendorPayment](txm, "vendor_payments", "remarks"),
		ContractorPayments: newRepo[*ledger.ContractorPayment](txm, "contractor_payments", "contractor_name", "remarks"),
		CreditorPayments:   newRepo[*ledger.CreditorPayment](txm, "creditor_payments", "remarks"),

		Stocks:       newRepo[*inventory.Stock](txm, "stocks", "material_name"),
		StockOuts:    newRepo[*inventory.StockOut](txm, "stock_outs", "material_name", "used_for"),
		Consumables:  newRepo[*inventory.Consumable](txm, "consumable_goods", "name", "category"),
		LabEquipment: newRepo[*inventory.Asset](txm, "lab_equipment", "name", "serial_number"),
		Equipment:    newRepo[*inventory.Asset](txm, "equipment", "name", "serial_number"),

		Labour:         newRepo[*labour.Labour](txm, "labours", "name", "phone", "designation"),
		LabourPayments: newRepo[*labour.Payment](txm, "labour_payments", "remarks"),

		Machines:      newRepo[*rental.Machine](txm, "machines", "name", "plate_number", "vendor_name"),
		Transfers:     newRepo[*transfer.Transfer](txm, "transfers", "material_name", "remarks"),
		Notifications: newRepo[*notification.Notification](txm, "notifications", "title", "message"),
	}
}

// AccountRepos returns the repositories the bank and creditor books write to.
func (s *Set) AccountRepos() accounts.Repositories {
	return accounts.Repositories{
		Banks:           s.Banks,
		BankEntries:     s.BankEntries,
		Creditors:       s.Creditors,
		CreditorEntries: s.CreditorEntries,
	}
}
