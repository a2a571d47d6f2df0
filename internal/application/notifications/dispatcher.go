package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"easyshifthq-backend/internal/application/emails"
	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrUndeliverable marks messages that will never succeed on retry, such as
// unknown kinds or payloads that fail to decode.
var ErrUndeliverable = errors.New("undeliverable notification")

// Handler delivers one outbox message.
type Handler interface {
	Handle(ctx context.Context, m *domain.OutboxMessage) error
}

// Dispatcher turns time-off events into emails. It only reads state.
type Dispatcher struct {
	Users     domain.UserRepository
	Sender    emails.Sender
	PortalURL string
}

func (d *Dispatcher) Handle(ctx context.Context, m *domain.OutboxMessage) error {
	switch m.Kind {
	case domain.KindTimeOffRequested:
		var ev domain.TimeOffRequested
		if err := m.Decode(&ev); err != nil {
			return fmt.Errorf("%w: %v", ErrUndeliverable, err)
		}
		return d.timeOffRequested(ctx, m.TenantID, ev)
	case domain.KindTimeOffApproved:
		var ev domain.TimeOffApproved
		if err := m.Decode(&ev); err != nil {
			return fmt.Errorf("%w: %v", ErrUndeliverable, err)
		}
		return d.decided(ctx, m.TenantID, ev.EmployeeID, ev.ApproverID, func(employee, approver string) (string, string) {
			return emails.TimeOffApprovedEmail(emails.TimeOffDecisionData{
				EmployeeName: employee,
				ApproverName: approver,
				StartDate:    ev.StartDate,
				EndDate:      ev.EndDate,
				PortalURL:    d.PortalURL,
			})
		})
	case domain.KindTimeOffDenied:
		var ev domain.TimeOffDenied
		if err := m.Decode(&ev); err != nil {
			return fmt.Errorf("%w: %v", ErrUndeliverable, err)
		}
		return d.decided(ctx, m.TenantID, ev.EmployeeID, ev.ApproverID, func(employee, approver string) (string, string) {
			return emails.TimeOffDeniedEmail(emails.TimeOffDecisionData{
				EmployeeName: employee,
				ApproverName: approver,
				StartDate:    ev.StartDate,
				EndDate:      ev.EndDate,
				DenialReason: ev.DenialReason,
				PortalURL:    d.PortalURL,
			})
		})
	default:
		return fmt.Errorf("%w: kind %q", ErrUndeliverable, m.Kind)
	}
}

// timeOffRequested mails every manager and admin of the tenant. It fails only
// when no recipient could be reached.
func (d *Dispatcher) timeOffRequested(ctx context.Context, tenantID *uuid.UUID, ev domain.TimeOffRequested) error {
	approvers, err := d.Users.ListByRoles(ctx, tenantID, constants.ApproverRoles...)
	if err != nil {
		return fmt.Errorf("list approvers: %w", err)
	}
	subject, html := emails.TimeOffRequestedEmail(emails.TimeOffRequestData{
		EmployeeName: ev.EmployeeName,
		StartDate:    ev.StartDate,
		EndDate:      ev.EndDate,
		Reason:       ev.Reason,
		PortalURL:    d.PortalURL,
	})

	var sent, failed int
	var lastErr error
	for _, u := range approvers {
		if strings.TrimSpace(u.Email) == "" {
			continue
		}
		if err := d.Sender.Send(ctx, u.Email, subject, html); err != nil {
			failed++
			lastErr = err
			log.Error().Err(err).Str("availability_id", ev.AvailabilityID.String()).Str("to", u.Email).
				Msg("failed to send time-off request notification")
			continue
		}
		sent++
	}
	if sent == 0 && failed > 0 {
		return fmt.Errorf("notify approvers: %w", lastErr)
	}
	if sent == 0 {
		log.Warn().Str("availability_id", ev.AvailabilityID.String()).Msg("no approvers to notify")
	}
	return nil
}

func (d *Dispatcher) decided(ctx context.Context, tenantID *uuid.UUID, employeeID, approverID uuid.UUID, render func(employee, approver string) (string, string)) error {
	employee, err := d.Users.Get(ctx, tenantID, employeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("employee_id", employeeID.String()).Msg("time-off decision for unknown employee")
			return nil
		}
		return fmt.Errorf("load employee: %w", err)
	}
	if strings.TrimSpace(employee.Email) == "" {
		return nil
	}
	approverName := "your manager"
	if approver, err := d.Users.Get(ctx, tenantID, approverID); err == nil && approver.FullName() != "" {
		approverName = approver.FullName()
	}
	name := employee.FullName()
	if name == "" {
		name = employee.Email
	}
	subject, html := render(name, approverName)
	return d.Sender.Send(ctx, employee.Email, subject, html)
}
