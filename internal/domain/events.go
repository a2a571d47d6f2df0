package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	KindTimeOffRequested NotificationKind = "time_off.requested"
	KindTimeOffApproved  NotificationKind = "time_off.approved"
	KindTimeOffDenied    NotificationKind = "time_off.denied"
)

type TimeOffRequested struct {
	AvailabilityID uuid.UUID `json:"availability_id"`
	EmployeeID     uuid.UUID `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Reason         *string   `json:"reason,omitempty"`
	CreationTime   time.Time `json:"creation_time"`
}

type TimeOffApproved struct {
	AvailabilityID uuid.UUID `json:"availability_id"`
	EmployeeID     uuid.UUID `json:"employee_id"`
	ApproverID     uuid.UUID `json:"approver_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	ApprovalDate   time.Time `json:"approval_date"`
}

type TimeOffDenied struct {
	AvailabilityID uuid.UUID `json:"availability_id"`
	EmployeeID     uuid.UUID `json:"employee_id"`
	ApproverID     uuid.UUID `json:"approver_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	DenialReason   string    `json:"denial_reason"`
	DenialDate     time.Time `json:"denial_date"`
}
