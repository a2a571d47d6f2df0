package availabilities

import (
	"context"
	"time"

	"easyshifthq-backend/internal/application/policies"
	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/observability/metrics"
	"easyshifthq-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service manages weekly availability slots and time-off requests. Time-off
// submissions and decisions enqueue notifications in the same transaction.
type Service struct {
	Store domain.UnitOfWork
	Now   func() time.Time
}

type WeeklyInput struct {
	DayOfWeek   domain.DayOfWeek `json:"day_of_week"`
	StartTime   domain.ClockTime `json:"start_time"`
	EndTime     domain.ClockTime `json:"end_time"`
	IsAvailable bool             `json:"is_available"`
}

type TimeOffInput struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    *string
}

type ListResult struct {
	TotalCount int64                 `json:"total_count"`
	Items      []domain.Availability `json:"items"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func requireActor(actor domain.Actor) error {
	if actor.UserID == uuid.Nil {
		return domain.ErrNotAuthenticated
	}
	return nil
}

// SubmitWeeklyAvailability records a weekly slot for the caller.
func (s *Service) SubmitWeeklyAvailability(ctx context.Context, actor domain.Actor, in WeeklyInput) (*domain.Availability, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	a, err := domain.NewWeeklyAvailability(actor.TenantID, actor.UserID, in.DayOfWeek, in.StartTime, in.EndTime, in.IsAvailable)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Availabilities().Insert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// SubmitTimeOffRequest records a pending time-off request for the caller and
// queues the approver notification.
func (s *Service) SubmitTimeOffRequest(ctx context.Context, actor domain.Actor, in TimeOffInput) (*domain.Availability, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	a, err := domain.NewTimeOffRequest(actor.TenantID, actor.UserID, in.StartDate, in.EndDate, in.Reason)
	if err != nil {
		return nil, err
	}
	now := s.now()
	err = s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		if err := tx.Availabilities().Insert(ctx, a); err != nil {
			return err
		}
		return enqueue(ctx, tx, actor.TenantID, domain.KindTimeOffRequested, domain.TimeOffRequested{
			AvailabilityID: a.ID,
			EmployeeID:     a.EmployeeID,
			EmployeeName:   employeeName(ctx, tx, actor),
			StartDate:      *a.TimeOffStartDate,
			EndDate:        *a.TimeOffEndDate,
			Reason:         a.Reason,
			CreationTime:   now,
		}, now)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("availability_id", a.ID.String()).Str("employee_id", a.EmployeeID.String()).Msg("time-off requested")
	return a, nil
}

// UpdateWeeklyAvailability rewrites a record as a weekly slot. Owners may
// edit their own records; others need availability.edit.
func (s *Service) UpdateWeeklyAvailability(ctx context.Context, actor domain.Actor, id uuid.UUID, in WeeklyInput) (*domain.Availability, error) {
	return s.update(ctx, actor, id, func(a *domain.Availability) error {
		return a.SetAvailability(in.DayOfWeek, in.StartTime, in.EndTime, in.IsAvailable)
	})
}

// UpdateTimeOffRequest changes a request's dates and reason. The owner may
// only edit a pending request; an approver's edit keeps the decision.
func (s *Service) UpdateTimeOffRequest(ctx context.Context, actor domain.Actor, id uuid.UUID, in TimeOffInput) (*domain.Availability, error) {
	return s.update(ctx, actor, id, func(a *domain.Availability) error {
		if a.IsTimeOffRequest() && a.ApprovalStatus != domain.ApprovalPending &&
			!actor.Has(constants.AvailabilityEdit) && !actor.Has(constants.AvailabilityApprove) {
			return domain.ErrTimeOffAlreadyDecided
		}
		return a.SetTimeOff(in.StartDate, in.EndDate, in.Reason)
	})
}

func (s *Service) update(ctx context.Context, actor domain.Actor, id uuid.UUID, apply func(*domain.Availability) error) (*domain.Availability, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var a *domain.Availability
	err := s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		var err error
		a, err = tx.Availabilities().Get(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := policies.SelfOrPermission(actor, a.EmployeeID, constants.AvailabilityEdit); err != nil {
			return err
		}
		if err := apply(a); err != nil {
			return err
		}
		return tx.Availabilities().Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ApproveTimeOffRequest approves a time-off request and notifies the employee.
func (s *Service) ApproveTimeOffRequest(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Availability, error) {
	a, err := s.decide(ctx, actor, id, func(tx domain.Repositories, a *domain.Availability, now time.Time) error {
		if err := a.ApproveTimeOff(actor.UserID, now); err != nil {
			return err
		}
		return enqueue(ctx, tx, a.TenantID, domain.KindTimeOffApproved, domain.TimeOffApproved{
			AvailabilityID: a.ID,
			EmployeeID:     a.EmployeeID,
			ApproverID:     actor.UserID,
			StartDate:      *a.TimeOffStartDate,
			EndDate:        *a.TimeOffEndDate,
			ApprovalDate:   now,
		}, now)
	})
	if err == nil {
		metrics.ObserveTimeOffDecision("approved")
	}
	return a, err
}

// DenyTimeOffRequest denies a time-off request with a reason and notifies the employee.
func (s *Service) DenyTimeOffRequest(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Availability, error) {
	a, err := s.decide(ctx, actor, id, func(tx domain.Repositories, a *domain.Availability, now time.Time) error {
		if err := a.DenyTimeOff(actor.UserID, reason, now); err != nil {
			return err
		}
		return enqueue(ctx, tx, a.TenantID, domain.KindTimeOffDenied, domain.TimeOffDenied{
			AvailabilityID: a.ID,
			EmployeeID:     a.EmployeeID,
			ApproverID:     actor.UserID,
			StartDate:      *a.TimeOffStartDate,
			EndDate:        *a.TimeOffEndDate,
			DenialReason:   *a.DenialReason,
			DenialDate:     now,
		}, now)
	})
	if err == nil {
		metrics.ObserveTimeOffDecision("denied")
	}
	return a, err
}

func (s *Service) decide(ctx context.Context, actor domain.Actor, id uuid.UUID, apply func(domain.Repositories, *domain.Availability, time.Time) error) (*domain.Availability, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := policies.RequireAnyPermission(actor, constants.AvailabilityApprove, constants.AvailabilityEdit); err != nil {
		return nil, err
	}
	now := s.now()
	var a *domain.Availability
	err := s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		var err error
		a, err = tx.Availabilities().Get(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := apply(tx, a, now); err != nil {
			return err
		}
		return tx.Availabilities().Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("availability_id", a.ID.String()).Str("approval_status", string(a.ApprovalStatus)).
		Str("approver_id", actor.UserID.String()).Msg("time-off decided")
	return a, nil
}

// Delete soft-deletes a record. Owners may delete their own records; others
// need availability.delete.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		a, err := tx.Availabilities().Get(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := policies.SelfOrPermission(actor, a.EmployeeID, constants.AvailabilityDelete); err != nil {
			return err
		}
		return tx.Availabilities().Delete(ctx, actor.TenantID, id)
	})
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Availability, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	a, err := s.Store.Availabilities().Get(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := policies.SelfOrPermission(actor, a.EmployeeID, constants.AvailabilityView); err != nil {
		return nil, err
	}
	return a, nil
}

// List pages through the tenant's records ordered by day, start time and
// time-off start date.
func (s *Service) List(ctx context.Context, actor domain.Actor, f domain.AvailabilityFilter) (*ListResult, error) {
	if err := policies.RequirePermission(actor, constants.AvailabilityView); err != nil {
		return nil, err
	}
	items, total, err := s.Store.Availabilities().List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Availability{}
	}
	return &ListResult{TotalCount: total, Items: items}, nil
}

func (s *Service) GetEmployeeWeeklyAvailability(ctx context.Context, actor domain.Actor, employeeID uuid.UUID) ([]domain.Availability, error) {
	if err := policies.SelfOrPermission(actor, employeeID, constants.AvailabilityView); err != nil {
		return nil, err
	}
	return s.Store.Availabilities().ListWeekly(ctx, actor.TenantID, employeeID)
}

func (s *Service) GetEmployeeTimeOffRequests(ctx context.Context, actor domain.Actor, employeeID uuid.UUID) ([]domain.Availability, error) {
	if err := policies.SelfOrPermission(actor, employeeID, constants.AvailabilityView); err != nil {
		return nil, err
	}
	return s.Store.Availabilities().ListTimeOff(ctx, actor.TenantID, employeeID)
}

func (s *Service) GetCurrentUserWeeklyAvailability(ctx context.Context, actor domain.Actor) ([]domain.Availability, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.Store.Availabilities().ListWeekly(ctx, actor.TenantID, actor.UserID)
}

func enqueue(ctx context.Context, tx domain.Repositories, tenantID *uuid.UUID, kind domain.NotificationKind, payload any, now time.Time) error {
	m, err := domain.NewOutboxMessage(tenantID, kind, payload, now)
	if err != nil {
		return err
	}
	return tx.Outbox().Enqueue(ctx, m)
}

func employeeName(ctx context.Context, tx domain.Repositories, actor domain.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	if u, err := tx.Users().Get(ctx, actor.TenantID, actor.UserID); err == nil && u.FullName() != "" {
		return u.FullName()
	}
	return actor.Email
}
