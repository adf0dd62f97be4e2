package accounts

import (
	"context"
	"fmt"
	"slices"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
)

// Posting describes one entry to append to a bank or creditor log.
type Posting struct {
	Type        EntryType
	Amount      types.Money
	Date        time.Time
	Description string
	RefID       id.ID
	RefModel    string
}

func (p Posting) validate() error {
	if !p.Type.Valid() {
		return apperror.NewValidation("entry type must be credit or debit").WithDetail("type", string(p.Type))
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").WithDetail("amount", p.Amount.String())
	}
	return nil
}

func (p Posting) date() time.Time {
	if p.Date.IsZero() {
		return time.Now().UTC()
	}
	return p.Date
}

// Repositories groups the stores Book writes to.
type Repositories struct {
	Banks           domain.Repository[*BankAccount]
	BankEntries     domain.Repository[*BankEntry]
	Creditors       domain.Repository[*Creditor]
	CreditorEntries domain.Repository[*CreditorEntry]
}

// Book is the only writer of bank and creditor balances. Each posting locks the
// owning row, moves its balance and appends the entry in one transaction.
type Book struct {
	repos          Repositories
	txManager      tx.Manager
	allowOverdraft bool
}

// BookOption configures a Book.
type BookOption func(*Book)

// WithOverdraft controls whether bank debits may take a balance below zero.
func WithOverdraft(allow bool) BookOption {
	return func(b *Book) { b.allowOverdraft = allow }
}

// NewBook creates a Book. Overdrafts are allowed unless disabled.
func NewBook(repos Repositories, txManager tx.Manager, opts ...BookOption) *Book {
	b := &Book{repos: repos, txManager: txManager, allowOverdraft: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PostBank appends an entry to a bank account and moves its balance.
func (b *Book) PostBank(ctx context.Context, bankID id.ID, p Posting) (*BankEntry, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var entry *BankEntry
	err := b.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bank, err := b.repos.Banks.GetForUpdate(ctx, bankID)
		if err != nil {
			return notFoundAs(err, "bank account", bankID)
		}
		if p.Type == Debit && !b.allowOverdraft && bank.CurrentBalance.LessThan(p.Amount) {
			return apperror.NewInsufficientBalance("bank "+bank.Label(), p.Amount.String(), bank.CurrentBalance.String())
		}

		bank.CurrentBalance = bank.CurrentBalance.Add(p.Type.Signed(p.Amount))
		bank.Touch()
		if err := b.repos.Banks.Update(ctx, bank); err != nil {
			return fmt.Errorf("update bank balance: %w", err)
		}

		entry = &BankEntry{
			Base:        entity.NewBase(),
			BankID:      bankID,
			Type:        p.Type,
			Amount:      p.Amount,
			EntryDate:   p.date(),
			Description: p.Description,
			RefID:       id.Ptr(p.RefID),
			RefModel:    p.RefModel,
		}
		if err := b.repos.BankEntries.Create(ctx, entry); err != nil {
			return fmt.Errorf("append bank entry: %w", err)
		}
		return nil
	})
	return entry, err
}

// PostCreditor appends an entry to a creditor and moves what we owe them.
func (b *Book) PostCreditor(ctx context.Context, creditorID id.ID, p Posting) (*CreditorEntry, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var entry *CreditorEntry
	err := b.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		creditor, err := b.repos.Creditors.GetForUpdate(ctx, creditorID)
		if err != nil {
			return notFoundAs(err, "creditor", creditorID)
		}

		creditor.CurrentBalance = creditor.CurrentBalance.Add(p.Type.Signed(p.Amount))
		creditor.Touch()
		if err := b.repos.Creditors.Update(ctx, creditor); err != nil {
			return fmt.Errorf("update creditor balance: %w", err)
		}

		entry = &CreditorEntry{
			Base:        entity.NewBase(),
			CreditorID:  creditorID,
			Type:        p.Type,
			Amount:      p.Amount,
			EntryDate:   p.date(),
			Description: p.Description,
			RefID:       id.Ptr(p.RefID),
			RefModel:    p.RefModel,
		}
		if err := b.repos.CreditorEntries.Create(ctx, entry); err != nil {
			return fmt.Errorf("append creditor entry: %w", err)
		}
		return nil
	})
	return entry, err
}

// ReverseCreditor removes every creditor entry pointing at the referenced record
// and undoes its effect on the creditor balance. It returns the number of entries removed.
func (b *Book) ReverseCreditor(ctx context.Context, refID id.ID, refModel string) (int, error) {
	var removed int
	err := b.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entries, err := b.repos.CreditorEntries.FindAll(ctx, map[string]any{"ref_id": refID, "ref_model": refModel})
		if err != nil {
			return fmt.Errorf("find creditor entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		delta := make(map[id.ID]types.Money)
		for _, e := range entries {
			delta[e.CreditorID] = delta[e.CreditorID].Sub(e.Type.Signed(e.Amount))
		}
		for _, creditorID := range sortedIDs(delta) {
			creditor, err := b.repos.Creditors.GetForUpdate(ctx, creditorID)
			if err != nil {
				return notFoundAs(err, "creditor", creditorID)
			}
			creditor.CurrentBalance = creditor.CurrentBalance.Add(delta[creditorID])
			creditor.Touch()
			if err := b.repos.Creditors.Update(ctx, creditor); err != nil {
				return fmt.Errorf("restore creditor balance: %w", err)
			}
		}

		n, err := b.repos.CreditorEntries.DeleteWhere(ctx, map[string]any{"ref_id": refID, "ref_model": refModel})
		if err != nil {
			return fmt.Errorf("delete creditor entries: %w", err)
		}
		removed = int(n)
		return nil
	})
	return removed, err
}

// LockBanks locks the given accounts in id order so that concurrent
// transfers between the same pair cannot deadlock.
func (b *Book) LockBanks(ctx context.Context, bankIDs ...id.ID) (map[id.ID]*BankAccount, error) {
	ordered := slices.Clone(bankIDs)
	slices.SortFunc(ordered, compareIDs)

	out := make(map[id.ID]*BankAccount, len(ordered))
	for _, bankID := range ordered {
		bank, err := b.repos.Banks.GetForUpdate(ctx, bankID)
		if err != nil {
			return nil, notFoundAs(err, "bank account", bankID)
		}
		out[bankID] = bank
	}
	return out, nil
}

// RequireCreditor checks that a creditor exists.
func (b *Book) RequireCreditor(ctx context.Context, creditorID id.ID) (*Creditor, error) {
	c, err := b.repos.Creditors.GetByID(ctx, creditorID)
	if err != nil {
		return nil, notFoundAs(err, "creditor", creditorID)
	}
	return c, nil
}

// RequireBank checks that a bank account exists.
func (b *Book) RequireBank(ctx context.Context, bankID id.ID) (*BankAccount, error) {
	bank, err := b.repos.Banks.GetByID(ctx, bankID)
	if err != nil {
		return nil, notFoundAs(err, "bank account", bankID)
	}
	return bank, nil
}

func notFoundAs(err error, name string, entityID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(name, entityID.String())
	}
	return err
}

func compareIDs(a, b id.ID) int {
	return slices.Compare(a[:], b[:])
}

func sortedIDs[V any](m map[id.ID]V) []id.ID {
	out := make([]id.ID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.SortFunc(out, compareIDs)
	return out
}
