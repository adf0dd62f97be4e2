package accounts

import (
	"context"
	"fmt"

	"sitebook/internal/core/id"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/pkg/logger"
)

// Drift is a stored balance that disagrees with its entry log.
type Drift struct {
	Kind     string      `json:"kind"`
	ID       id.ID       `json:"id"`
	Name     string      `json:"name"`
	Stored   types.Money `json:"stored"`
	Computed types.Money `json:"computed"`
}

// Difference is Stored minus Computed.
func (d Drift) Difference() types.Money {
	return d.Stored.Sub(d.Computed)
}

// Reconciler recomputes balances from the entry tables.
type Reconciler struct {
	repos     Repositories
	txManager tx.Manager
}

// NewReconciler creates a Reconciler.
func NewReconciler(repos Repositories, txManager tx.Manager) *Reconciler {
	return &Reconciler{repos: repos, txManager: txManager}
}

// Run compares every bank (opening + credits - debits) and creditor
// (credits - debits) with its stored balance. With fix set, drifted balances
// are overwritten with the computed value.
func (r *Reconciler) Run(ctx context.Context, fix bool) ([]Drift, error) {
	var drifts []Drift
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bankDrifts, err := r.banks(ctx, fix)
		if err != nil {
			return err
		}
		creditorDrifts, err := r.creditors(ctx, fix)
		if err != nil {
			return err
		}
		drifts = append(bankDrifts, creditorDrifts...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, d := range drifts {
		logger.Warn(ctx, "balance drift",
			"kind", d.Kind, "id", d.ID, "name", d.Name,
			"stored", d.Stored.String(), "computed", d.Computed.String(), "fixed", fix)
	}
	return drifts, nil
}

func (r *Reconciler) banks(ctx context.Context, fix bool) ([]Drift, error) {
	banks, err := r.repos.Banks.FindAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load banks: %w", err)
	}
	var drifts []Drift
	for _, b := range banks {
		entries, err := r.repos.BankEntries.FindAll(ctx, map[string]any{"bank_id": b.ID})
		if err != nil {
			return nil, fmt.Errorf("load bank entries: %w", err)
		}
		computed := b.OpeningBalance
		for _, e := range entries {
			computed = computed.Add(e.Type.Signed(e.Amount))
		}
		if computed.Equal(b.CurrentBalance) {
			continue
		}
		drifts = append(drifts, Drift{Kind: "bank", ID: b.ID, Name: b.Label(), Stored: b.CurrentBalance, Computed: computed})
		if fix {
			locked, err := r.repos.Banks.GetForUpdate(ctx, b.ID)
			if err != nil {
				return nil, err
			}
			locked.CurrentBalance = computed
			locked.Touch()
			if err := r.repos.Banks.Update(ctx, locked); err != nil {
				return nil, fmt.Errorf("fix bank balance: %w", err)
			}
		}
	}
	return drifts, nil
}

func (r *Reconciler) creditors(ctx context.Context, fix bool) ([]Drift, error) {
	creditors, err := r.repos.Creditors.FindAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load creditors: %w", err)
	}
	var drifts []Drift
	for _, c := range creditors {
		entries, err := r.repos.CreditorEntries.FindAll(ctx, map[string]any{"creditor_id": c.ID})
		if err != nil {
			return nil, fmt.Errorf("load creditor entries: %w", err)
		}
		computed := types.Zero()
		for _, e := range entries {
			computed = computed.Add(e.Type.Signed(e.Amount))
		}
		if computed.Equal(c.CurrentBalance) {
			continue
		}
		drifts = append(drifts, Drift{Kind: "creditor", ID: c.ID, Name: c.Name, Stored: c.CurrentBalance, Computed: computed})
		if fix {
			locked, err := r.repos.Creditors.GetForUpdate(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			locked.CurrentBalance = computed
			locked.Touch()
			if err := r.repos.Creditors.Update(ctx, locked); err != nil {
				return nil, fmt.Errorf("fix creditor balance: %w", err)
			}
		}
	}
	return drifts, nil
}
