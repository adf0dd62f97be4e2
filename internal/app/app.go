// Package app wires the domain services on top of a set of repositories.
package app

import (
	"time"

	"sitebook/internal/core/numerator"
	"sitebook/internal/core/tx"
	"sitebook/internal/domain"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/audit"
	"sitebook/internal/domain/auth"
	"sitebook/internal/domain/inventory"
	"sitebook/internal/domain/labour"
	"sitebook/internal/domain/ledger"
	"sitebook/internal/domain/notification"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/rental"
	"sitebook/internal/domain/reports"
	"sitebook/internal/domain/transfer"
	"sitebook/internal/domain/user"
)

// Repos lists every repository the services need.
type Repos struct {
	Users       domain.Repository[*user.User]
	Projects    domain.Repository[*project.Project]
	Vendors     domain.Repository[*party.Vendor]
	Contractors domain.Repository[*party.Contractor]

	Accounts accounts.Repositories
	Ledger   ledger.Repositories
	Stock    inventory.Repositories

	Labour         domain.Repository[*labour.Labour]
	LabourPayments domain.Repository[*labour.Payment]

	Machines      domain.Repository[*rental.Machine]
	Transfers     domain.Repository[*transfer.Transfer]
	Notifications domain.Repository[*notification.Notification]

	Reports reports.Repository

	// Vouchers numbers expenses recorded without a voucher.
	Vouchers numerator.Generator
}

// Options tunes the services.
type Options struct {
	JWT   auth.JWTConfig
	Audit audit.Recorder
	Clock func() time.Time

	// DisableOverdraft rejects bank debits that would take a balance below zero.
	DisableOverdraft bool
}

// Services is the assembled application.
type Services struct {
	JWT           *auth.JWTService
	Auth          *auth.Service
	Users         *user.Service
	Projects      *project.Service
	Vendors       *party.VendorService
	Contractors   *party.ContractorService
	Banks         *accounts.BankService
	Creditors     *accounts.CreditorService
	Reconciler    *accounts.Reconciler
	Ledger        *ledger.Service
	Inventory     *inventory.Service
	Labour        *labour.Service
	Machines      *rental.Service
	Transfers     *transfer.Service
	Notifications *notification.Service
	Reports       *reports.Service
}

// New builds every service.
func New(r Repos, txm tx.Manager, opts Options) *Services {
	rec := opts.Audit
	if rec == nil {
		rec = audit.Nop{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	s := &Services{
		JWT:         auth.NewJWTService(opts.JWT),
		Users:       user.NewService(r.Users, txm),
		Projects:    project.NewService(r.Projects, txm),
		Vendors:     party.NewVendorService(r.Vendors, txm),
		Contractors: party.NewContractorService(r.Contractors, txm),
		Banks:       accounts.NewBankService(r.Accounts, txm),
		Creditors:   accounts.NewCreditorService(r.Accounts, txm),
		Reconciler:  accounts.NewReconciler(r.Accounts, txm),
	}
	s.Auth = auth.NewService(s.Users, s.JWT, auth.DefaultServiceConfig())

	s.Ledger = ledger.NewService(ledger.Deps{
		TxManager:   txm,
		Repos:       r.Ledger,
		Book:        accounts.NewBook(r.Accounts, txm, accounts.WithOverdraft(!opts.DisableOverdraft)),
		Projects:    s.Projects,
		Vendors:     s.Vendors,
		Contractors: s.Contractors,
		Users:       s.Users,
		Audit:       rec,
		Clock:       clock,
		Vouchers:    r.Vouchers,
	})
	s.Inventory = inventory.NewService(inventory.Deps{
		TxManager: txm,
		Repos:     r.Stock,
		Projects:  s.Projects,
		Vendors:   s.Vendors,
		Users:     s.Users,
		Audit:     rec,
		Clock:     clock,
	})
	s.Labour = labour.NewService(r.Labour, r.LabourPayments, s.Users, txm, rec)
	s.Machines = rental.NewService(r.Machines, txm, s.Contractors, s.Ledger, rec, clock)
	s.Notifications = notification.NewService(r.Notifications, s.Users, txm)
	s.Transfers = transfer.NewService(r.Transfers, transfer.Movers{
		Labour:    s.Labour,
		Machines:  s.Machines,
		Inventory: s.Inventory,
	}, s.Projects, s.Notifications, txm, rec)
	if r.Reports != nil {
		s.Reports = reports.NewService(r.Reports)
	}
	return s
}
