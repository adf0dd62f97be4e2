package rental

import (
	"context"
	"fmt"
	"slices"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/id"
	"sitebook/internal/core/security"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/audit"
	"sitebook/internal/domain/ledger"
	"sitebook/internal/domain/party"
	"sitebook/pkg/logger"
)

// ExpenseBooker books the expense of a returned rental.
type ExpenseBooker interface {
	RecordExpense(ctx context.Context, in ledger.ExpenseInput) (*ledger.Expense, error)
}

// Service manages machines and their rental billing.
type Service struct {
	*domain.CatalogService[*Machine]
	repo        domain.Repository[*Machine]
	txManager   tx.Manager
	contractors *party.ContractorService
	expenses    ExpenseBooker
	audit       audit.Recorder
	now         func() time.Time
}

// NewService creates the rental service. A nil clock means time.Now.
func NewService(repo domain.Repository[*Machine], txManager tx.Manager, contractors *party.ContractorService, expenses ExpenseBooker, rec audit.Recorder, clock func() time.Time) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		CatalogService: domain.NewCatalogService[*Machine](repo, txManager, "machine"),
		repo:           repo,
		txManager:      txManager,
		contractors:    contractors,
		expenses:       expenses,
		audit:          rec,
		now:            clock,
	}
}

// UpdateMachine applies mutate to a machine. Moving it from available to
// in-use starts an assignment and appends it to the assignment history.
func (s *Service) UpdateMachine(ctx context.Context, machineID id.ID, mutate func(*Machine) error) (*Machine, error) {
	return s.Update(ctx, machineID, func(m *Machine) error {
		wasAvailable := m.Status == StatusAvailable
		if err := mutate(m); err != nil {
			return err
		}
		if wasAvailable && m.Status == StatusInUse {
			m.beginAssignment(s.now())
		}
		m.Touch()
		return nil
	})
}

// AssignInput puts a machine to work.
type AssignInput struct {
	ProjectID    *id.ID
	ContractorID *id.ID
	RentalType   RentalType
	Rate         types.Money
	AssignedAt   *time.Time
}

// Assign moves an available machine to in-use on a project or with a contractor.
func (s *Service) Assign(ctx context.Context, machineID id.ID, in AssignInput) (*Machine, error) {
	if in.ProjectID == nil && in.ContractorID == nil {
		return nil, apperror.NewValidation("a project or a contractor is required")
	}
	return s.UpdateMachine(ctx, machineID, func(m *Machine) error {
		if m.Status != StatusAvailable {
			return apperror.NewInvalidState("Machine is not available")
		}
		m.Status = StatusInUse
		m.ProjectID = in.ProjectID
		m.AssignedToContractor = in.ContractorID
		if in.RentalType != "" {
			m.RentalType = in.RentalType
		}
		if in.Rate.IsPositive() {
			m.AssignedAsRental = true
			m.AssignedRentalPerDay = in.Rate
		}
		m.AssignedAt = in.AssignedAt
		m.ReturnedAt = nil
		return nil
	})
}

// TogglePause pauses or resumes the rent of an in-use machine.
func (s *Service) TogglePause(ctx context.Context, machineID id.ID) (*Machine, error) {
	var out *Machine
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.GetForUpdate(ctx, machineID)
		if err != nil {
			return err
		}
		if err := s.requireScope(ctx, m); err != nil {
			return err
		}
		paused, err := m.togglePause(s.now())
		if err != nil {
			return err
		}
		m.Touch()
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("toggle pause: %w", err)
		}
		out = m

		action := audit.ActionResume
		if paused {
			action = audit.ActionPause
		}
		return s.audit.Record(ctx, "machine", m.ID, action, map[string]any{"paused": paused, "at": s.now()})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "machine rent toggled", "machine_id", out.ID, "paused", out.IsRentPaused)
	return out, nil
}

// Details is a machine with its live rent estimate.
type Details struct {
	Machine  *Machine `json:"machine"`
	Estimate Estimate `json:"rentCalculation"`
}

// Details returns the machine and its rent so far.
func (s *Service) Details(ctx context.Context, machineID id.ID) (*Details, error) {
	m, err := s.GetByID(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if err := s.requireScope(ctx, m); err != nil {
		return nil, err
	}
	return &Details{Machine: m, Estimate: m.Estimate(s.now())}, nil
}

// ReturnResult is the outcome of returning a rented machine.
type ReturnResult struct {
	Machine  *Machine        `json:"machine"`
	Expense  *ledger.Expense `json:"expense,omitempty"`
	Estimate Estimate        `json:"rentalDetails"`
}

// Return ends the rental of an in-use rented machine: the rent for the billable
// time is charged to the project as a machine_rental expense.
func (s *Service) Return(ctx context.Context, machineID id.ID) (*ReturnResult, error) {
	var res *ReturnResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.GetForUpdate(ctx, machineID)
		if err != nil {
			return err
		}
		if m.Ownership != OwnershipRented {
			return apperror.NewInvalidState("Only rented equipment can be returned")
		}
		if m.Status != StatusInUse {
			return apperror.NewInvalidState("Machine is not currently in use")
		}

		now := s.now()
		m.closePause(now)
		m.ReturnedAt = &now
		est := m.Estimate(now)

		m.Status = StatusReturned
		m.TotalRentPaid = est.EstimatedRent
		if n := len(m.AssignmentHistory); n > 0 {
			last := &m.AssignmentHistory[n-1]
			last.ReturnedAt = &now
			last.ReturnStatus = StatusReturned
			last.TotalRent = &est.EstimatedRent
			last.DurationMinutes = est.BillableMinutes()
		}
		m.Touch()
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("return machine: %w", err)
		}

		res = &ReturnResult{Machine: m, Estimate: est}
		res.Expense, err = s.bookRent(ctx, m, est)
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, "machine", m.ID, audit.ActionReturn, res)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "machine returned", "machine_id", res.Machine.ID, "rent", res.Estimate.EstimatedRent.String())
	return res, nil
}

// bookRent charges the rent to the machine's project, or to the first project
// of its contractor. Without a project or rent nothing is booked.
func (s *Service) bookRent(ctx context.Context, m *Machine, est Estimate) (*ledger.Expense, error) {
	projectID, err := s.billedProject(ctx, m)
	if err != nil {
		return nil, err
	}
	if projectID == nil {
		logger.Warn(ctx, "returned machine has no project, rent not booked", "machine_id", m.ID)
		return nil, nil
	}
	if !est.EstimatedRent.IsPositive() {
		return nil, nil
	}

	unit := "day"
	if m.RentalType == PerHour {
		unit = "hr"
	}
	remarks := fmt.Sprintf("%d %s @ %s/%s. Assigned: %s, Returned: %s",
		est.Units, unitLabel(m.RentalType), est.Rate.String(), unit,
		est.StartDate.Format(time.DateTime), est.EndDate.Format(time.DateTime))

	return s.expenses.RecordExpense(ctx, ledger.ExpenseInput{
		ProjectID: *projectID,
		Name:      "Rental return: " + m.Label(),
		Amount:    est.EstimatedRent,
		Category:  ledger.ExpenseMachineRental,
		MachineID: id.Ptr(m.ID),
		Date:      est.EndDate,
		Remarks:   remarks,
	})
}

func (s *Service) billedProject(ctx context.Context, m *Machine) (*id.ID, error) {
	if m.ProjectID != nil {
		return m.ProjectID, nil
	}
	if m.AssignedToContractor == nil {
		return nil, nil
	}
	c, err := s.contractors.GetByID(ctx, *m.AssignedToContractor)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if p, ok := c.PrimaryProject(); ok {
		return &p, nil
	}
	return nil, nil
}

func unitLabel(t RentalType) string {
	if t == PerHour {
		return "mins"
	}
	return "days"
}

// Relocate moves a machine to another project, frees it and drops any
// contractor assignment.
func (s *Service) Relocate(ctx context.Context, machineID, to id.ID) (*Machine, error) {
	return s.UpdateMachine(ctx, machineID, func(m *Machine) error {
		m.closePause(s.now())
		m.ProjectID = id.Ptr(to)
		m.Status = StatusAvailable
		m.AssignedToContractor = nil
		return nil
	})
}

// SiteMachines lists in-use and available machines on the caller's projects,
// including machines held by contractors working there. projectID narrows the
// result to one project.
func (s *Service) SiteMachines(ctx context.Context, projectID *id.ID) ([]*Machine, error) {
	scope := security.GetScope(ctx)
	var requested []id.ID
	if projectID != nil {
		requested = []id.ID{*projectID}
	}
	targets := scope.FilterProjects(requested)

	where := map[string]any{"status": []Status{StatusInUse, StatusAvailable}}
	all, err := s.repo.FindAll(ctx, where)
	if err != nil {
		return nil, fmt.Errorf("find machines: %w", err)
	}
	if !scope.Restricted() && len(targets) == 0 {
		return all, nil
	}

	contractors, err := s.contractors.OnProjects(ctx, targets)
	if err != nil {
		return nil, err
	}
	held := make([]id.ID, 0, len(contractors))
	for _, c := range contractors {
		held = append(held, c.ID)
	}

	out := make([]*Machine, 0, len(all))
	for _, m := range all {
		onSite := m.ProjectID != nil && slices.Contains(targets, *m.ProjectID)
		withContractor := m.AssignedToContractor != nil && slices.Contains(held, *m.AssignedToContractor)
		if onSite || withContractor {
			out = append(out, m)
		}
	}
	slices.Reverse(out)
	return out, nil
}

// requireScope lets a site manager act on machines of their projects or of
// contractors working there.
func (s *Service) requireScope(ctx context.Context, m *Machine) error {
	scope := security.GetScope(ctx)
	if !scope.Restricted() {
		return nil
	}
	if m.ProjectID != nil && scope.CanAccessProject(*m.ProjectID) {
		return nil
	}
	if m.AssignedToContractor != nil {
		c, err := s.contractors.GetByID(ctx, *m.AssignedToContractor)
		if err == nil {
			for _, p := range c.AssignedProjects {
				if scope.CanAccessProject(p) {
					return nil
				}
			}
		}
	}
	return apperror.NewForbidden("machine is not on your sites").WithDetail("machine_id", m.ID.String())
}
